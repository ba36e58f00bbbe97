package editor

// Event kinds emitted after store mutations.
const (
	EventComponentAdded      = "component.added"
	EventComponentRemoved    = "component.removed"
	EventComponentUpdated    = "component.updated"
	EventComponentsReordered = "components.reordered"
	EventComponentDuplicated = "component.duplicated"
	EventSelectionChanged    = "selection.changed"
	EventTitleChanged        = "title.changed"
	EventPreviewToggled      = "preview.toggled"
	EventEmailSaved          = "email.saved"
	EventEmailLoaded         = "email.loaded"
	EventDocumentReset       = "document.reset"
)

// Event describes a completed mutation. ComponentID is set for component
// events and holds the saved-email id for save and load.
type Event struct {
	Kind        string `json:"kind"`
	ComponentID string `json:"id,omitempty"`
}
