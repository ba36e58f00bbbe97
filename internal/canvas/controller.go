// Package canvas translates drag gestures over the palette and the document
// canvas into editor commands.
package canvas

import (
	"fmt"
	"math"
	"sync"

	"github.com/starford/mailcraft/internal/apperr"
	"github.com/starford/mailcraft/internal/models"
)

// DefaultActivationDistance is how far, in pixels, the pointer must travel
// before a press becomes a drag.
const DefaultActivationDistance = 8

// DropZoneID is the target id of the canvas itself, as opposed to one of
// its components.
const DropZoneID = "canvas"

// Phase is the gesture state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePending  Phase = "pending"
	PhaseDragging Phase = "dragging"
)

// SourceKind says where a drag started.
type SourceKind string

const (
	SourcePalette SourceKind = "palette"
	SourceCanvas  SourceKind = "canvas"
)

// Source identifies the dragged item: a palette entry id or a component id.
type Source struct {
	Kind SourceKind `json:"kind"`
	ID   string     `json:"id"`
}

// Point is a pointer position in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OutcomeKind is what a finished gesture did to the document.
type OutcomeKind string

const (
	OutcomeNone      OutcomeKind = "none"
	OutcomeAdded     OutcomeKind = "added"
	OutcomeReordered OutcomeKind = "reordered"
	OutcomeSelected  OutcomeKind = "selected"
)

// Outcome reports the effect of DragEnd.
type Outcome struct {
	Kind        OutcomeKind       `json:"kind"`
	ComponentID string            `json:"componentId,omitempty"`
	TargetID    string            `json:"targetId,omitempty"`
	Component   *models.Component `json:"component,omitempty"`
}

// State describes the gesture in progress, for drawing the drag overlay.
type State struct {
	Phase       Phase                `json:"phase"`
	ActiveID    string               `json:"activeId,omitempty"`
	PaletteType models.ComponentType `json:"paletteType,omitempty"`
	OverID      string               `json:"overId,omitempty"`
}

// Editor is the subset of the document store the controller drives.
type Editor interface {
	Component(id string) (models.Component, bool)
	AddComponent(t models.ComponentType, props models.Props) models.Component
	ReorderComponents(movedID, targetID string) bool
	SelectComponent(id string) bool
	RemoveComponent(id string) bool
	DuplicateComponent(id string) (models.Component, bool)
}

// Option configures a Controller.
type Option func(*Controller)

// WithActivationDistance overrides DefaultActivationDistance. Zero makes
// every press a drag immediately.
func WithActivationDistance(px float64) Option {
	return func(c *Controller) { c.activation = px }
}

// Controller is the drag state machine. One gesture is tracked at a time.
type Controller struct {
	editor     Editor
	activation float64

	mu          sync.Mutex
	phase       Phase
	source      Source
	paletteType models.ComponentType
	start       Point
	over        string
}

// New creates an idle controller driving ed.
func New(ed Editor, opts ...Option) *Controller {
	c := &Controller{editor: ed, activation: DefaultActivationDistance, phase: PhaseIdle}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DragStart begins a gesture on src at pointer position at. Header and
// footer components cannot be dragged. A gesture already in progress is
// abandoned.
func (c *Controller) DragStart(src Source, at Point) (State, error) {
	var pt models.ComponentType
	switch src.Kind {
	case SourcePalette:
		t, ok := PaletteType(src.ID)
		if !ok {
			return c.State(), fmt.Errorf("%w: %q", apperr.ErrInvalidComponentType, src.ID)
		}
		pt = t
	case SourceCanvas:
		if err := c.checkMovable(src.ID); err != nil {
			return c.State(), err
		}
	default:
		return c.State(), fmt.Errorf("unknown drag source %q", src.Kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhasePending
	c.source = src
	c.paletteType = pt
	c.start = at
	c.over = ""
	if c.activation <= 0 {
		c.phase = PhaseDragging
	}
	return c.stateLocked(), nil
}

// DragMove reports pointer movement. The gesture becomes a drag once the
// pointer is at least the activation distance from where it started.
func (c *Controller) DragMove(at Point) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhasePending && math.Hypot(at.X-c.start.X, at.Y-c.start.Y) >= c.activation {
		c.phase = PhaseDragging
	}
	return c.stateLocked()
}

// DragOver records the id currently under the pointer. An empty id means
// the pointer left every drop target.
func (c *Controller) DragOver(targetID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		c.over = targetID
	}
	return c.stateLocked()
}

// DragEnd finishes the gesture over targetID, or over the last DragOver
// target when targetID is empty, and applies its effect:
//
//   - a palette entry dropped on the canvas or any component is added
//   - a component dropped on a different, movable component is reordered
//   - a press that never became a drag selects the component, or adds the
//     palette entry
//
// Anything else leaves the document unchanged.
func (c *Controller) DragEnd(targetID string) Outcome {
	c.mu.Lock()
	phase, src, pt := c.phase, c.source, c.paletteType
	if targetID == "" {
		targetID = c.over
	}
	c.resetLocked()
	c.mu.Unlock()

	switch {
	case phase == PhaseIdle:
		return Outcome{Kind: OutcomeNone}
	case phase == PhasePending && src.Kind == SourceCanvas:
		if !c.editor.SelectComponent(src.ID) {
			return Outcome{Kind: OutcomeNone}
		}
		return Outcome{Kind: OutcomeSelected, ComponentID: src.ID}
	case phase == PhasePending && src.Kind == SourcePalette:
		return c.add(pt, "")
	case src.Kind == SourcePalette:
		if !c.isDropTarget(targetID) {
			return Outcome{Kind: OutcomeNone}
		}
		return c.add(pt, targetID)
	}

	if targetID == "" || targetID == src.ID || targetID == DropZoneID {
		return Outcome{Kind: OutcomeNone}
	}
	if err := c.checkMovable(targetID); err != nil {
		return Outcome{Kind: OutcomeNone}
	}
	if !c.editor.ReorderComponents(src.ID, targetID) {
		return Outcome{Kind: OutcomeNone}
	}
	return Outcome{Kind: OutcomeReordered, ComponentID: src.ID, TargetID: targetID}
}

// Cancel abandons the gesture without touching the document.
func (c *Controller) Cancel() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return c.stateLocked()
}

// State returns the gesture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Delete removes a component unless it is a header or footer.
func (c *Controller) Delete(id string) error {
	if err := c.checkMovable(id); err != nil {
		return err
	}
	if !c.editor.RemoveComponent(id) {
		return apperr.ErrNotFound
	}
	return nil
}

// Duplicate copies a component unless it is a header or footer.
func (c *Controller) Duplicate(id string) (models.Component, error) {
	if err := c.checkMovable(id); err != nil {
		return models.Component{}, err
	}
	dup, ok := c.editor.DuplicateComponent(id)
	if !ok {
		return models.Component{}, apperr.ErrNotFound
	}
	return dup, nil
}

// Reorder moves movedID to targetID's position. Neither may be a header or
// footer.
func (c *Controller) Reorder(movedID, targetID string) error {
	if err := c.checkMovable(movedID); err != nil {
		return err
	}
	if err := c.checkMovable(targetID); err != nil {
		return err
	}
	c.editor.ReorderComponents(movedID, targetID)
	return nil
}

func (c *Controller) add(t models.ComponentType, targetID string) Outcome {
	comp := c.editor.AddComponent(t, nil)
	return Outcome{Kind: OutcomeAdded, ComponentID: comp.ID, TargetID: targetID, Component: &comp}
}

func (c *Controller) isDropTarget(id string) bool {
	if id == DropZoneID {
		return true
	}
	if id == "" {
		return false
	}
	_, ok := c.editor.Component(id)
	return ok
}

func (c *Controller) checkMovable(id string) error {
	comp, ok := c.editor.Component(id)
	if !ok {
		return fmt.Errorf("component %q: %w", id, apperr.ErrNotFound)
	}
	if comp.Type.IsFixed() {
		return apperr.ErrFixedComponent
	}
	return nil
}

func (c *Controller) resetLocked() {
	c.phase = PhaseIdle
	c.source = Source{}
	c.paletteType = ""
	c.over = ""
}

func (c *Controller) stateLocked() State {
	if c.phase == PhaseIdle {
		return State{Phase: PhaseIdle}
	}
	return State{
		Phase:       c.phase,
		ActiveID:    c.source.ID,
		PaletteType: c.paletteType,
		OverID:      c.over,
	}
}
