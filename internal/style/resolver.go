// Package style turns a component's property bag into a concrete inline
// style declaration.
//
// Resolution runs in a fixed order, each step overriding the previous one
// where both touch the same property:
//
//  1. built-in defaults for the component type
//  2. generic backgroundColor and padding (or the four discrete paddings)
//  3. border (hasBorder) and shadow (hasShadow) feature blocks
//  4. the free-form customStyle string
//
// customClasses and customId are passed through untouched.
package style

import (
	"fmt"
	"log/slog"

	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/parser"
)

// Resolved is the outcome of resolving one component.
type Resolved struct {
	Style   Declaration
	Classes string
	ID      string
}

// Resolve computes the style of c. It never fails: malformed input degrades
// to the defaults.
func Resolve(c models.Component) Resolved {
	p := c.Props
	if p == nil {
		p = models.Props{}
	}

	var d Declaration
	applyTypeDefaults(&d, c.Type, p)
	applyGeneric(&d, c.Type, p)
	applyBorder(&d, p)
	applyShadow(&d, p)
	applyCustom(&d, c.ID, p)

	return Resolved{
		Style:   d,
		Classes: parser.Classes(p.StringOr("customClasses", "")),
		ID:      p.StringOr("customId", ""),
	}
}

func applyTypeDefaults(d *Declaration, t models.ComponentType, p models.Props) {
	padding, background := DefaultPadding, DefaultBackground
	switch t {
	case models.TypeDivider:
		padding = DefaultDividerPadding
	case models.TypeSpacer:
		padding = "0"
	case models.TypeFooter:
		background = DefaultFooterBackground
	}
	d.Set("padding", padding)
	d.Set("background-color", background)

	switch t {
	case models.TypeHeader:
		d.Set("text-align", p.StringOr("alignment", "center"))
	case models.TypeFooter:
		d.Set("color", p.StringOr("textColor", DefaultFooterTextColor))
		d.Set("text-align", "center")
		d.Set("font-size", DefaultFooterFontSize)
	case models.TypeText:
		d.Set("color", p.StringOr("textColor", DefaultTextColor))
		d.Set("font-size", FontSize(p))
		d.Set("text-align", p.StringOr("alignment", "left"))
	case models.TypeImage, models.TypeButton:
		d.Set("text-align", p.StringOr("alignment", "center"))
	case models.TypeSpacer:
		d.Set("height", SpacerHeight(p))
	}
}

func applyGeneric(d *Declaration, t models.ComponentType, p models.Props) {
	if bg, ok := p.String("backgroundColor"); ok {
		d.Set("background-color", bg)
	}
	// Spacers are sized by height alone.
	if t == models.TypeSpacer {
		return
	}
	if p.Bool("paddingTop") || p.Bool("paddingRight") || p.Bool("paddingBottom") || p.Bool("paddingLeft") {
		d.Set("padding", Length(p, "paddingTop", DefaultPadding)+" "+
			Length(p, "paddingRight", DefaultPadding)+" "+
			Length(p, "paddingBottom", DefaultPadding)+" "+
			Length(p, "paddingLeft", DefaultPadding))
		return
	}
	if _, ok := p.String("padding"); ok {
		d.Set("padding", Length(p, "padding", DefaultPadding))
	}
}

func applyBorder(d *Declaration, p models.Props) {
	if !p.Bool("hasBorder") {
		return
	}
	d.Set("border", Length(p, "borderWidth", DefaultBorderWidth)+" "+
		p.StringOr("borderStyle", DefaultBorderStyle)+" "+
		p.StringOr("borderColor", DefaultBorderColor))
	d.Set("border-radius", Length(p, "borderRadius", DefaultBorderRadius))
}

func applyShadow(d *Declaration, p models.Props) {
	if !p.Bool("hasShadow") {
		return
	}
	intensity, ok := p.Number("shadowIntensity")
	if !ok {
		intensity = DefaultShadowIntensity
	}
	d.Set("box-shadow", "0 "+Pixels(intensity/2)+" "+Pixels(intensity)+" "+
		p.StringOr("shadowColor", DefaultShadowColor))
}

func applyCustom(d *Declaration, id string, p models.Props) {
	raw, ok := p["customStyle"]
	if !ok || raw == nil {
		return
	}
	s, ok := raw.(string)
	if !ok {
		slog.Warn("custom style ignored: not a string",
			slog.String("component_id", id),
			slog.String("type", fmt.Sprintf("%T", raw)))
		return
	}
	for _, decl := range parser.ParseDeclarations(s) {
		d.Set(decl.Property, decl.Value)
	}
}
