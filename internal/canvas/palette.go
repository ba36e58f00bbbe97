package canvas

import "github.com/starford/mailcraft/internal/models"

// PaletteEntry is one draggable component type offered to the user.
type PaletteEntry struct {
	Type  models.ComponentType `json:"id"`
	Label string               `json:"label"`
	Icon  string               `json:"icon"`
}

var palette = []PaletteEntry{
	{Type: models.TypeText, Label: "Texto", Icon: "📝"},
	{Type: models.TypeImage, Label: "Imagem", Icon: "🖼️"},
	{Type: models.TypeButton, Label: "Botão", Icon: "🔳"},
	{Type: models.TypeDivider, Label: "Divisor", Icon: "➖"},
	{Type: models.TypeSpacer, Label: "Espaçador", Icon: "↕️"},
	{Type: models.TypeColumns, Label: "Colunas", Icon: "▣"},
}

// Palette returns the palette entries in display order.
func Palette() []PaletteEntry {
	return append([]PaletteEntry(nil), palette...)
}

// PaletteType resolves a palette entry id to its component type.
func PaletteType(id string) (models.ComponentType, bool) {
	for _, e := range palette {
		if string(e.Type) == id {
			return e.Type, true
		}
	}
	return "", false
}
