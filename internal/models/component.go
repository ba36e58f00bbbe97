// Package models defines the domain types for Mailcraft.
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ComponentType identifies the kind of visual block a Component renders.
type ComponentType string

// Component types. The set is closed.
const (
	TypeHeader  ComponentType = "header"
	TypeFooter  ComponentType = "footer"
	TypeText    ComponentType = "text"
	TypeImage   ComponentType = "image"
	TypeButton  ComponentType = "button"
	TypeDivider ComponentType = "divider"
	TypeSpacer  ComponentType = "spacer"
	TypeColumns ComponentType = "columns"
)

// ComponentTypes lists every valid component type in palette order.
var ComponentTypes = []ComponentType{
	TypeHeader, TypeFooter, TypeText, TypeImage, TypeButton, TypeDivider, TypeSpacer, TypeColumns,
}

// ParseComponentType validates s against the closed set of component types.
func ParseComponentType(s string) (ComponentType, error) {
	t := ComponentType(strings.TrimSpace(s))
	for _, known := range ComponentTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown component type %q", s)
}

// IsFixed reports whether components of this type are pinned to the top or
// bottom of the document and exempt from drag, reorder and delete.
func (t ComponentType) IsFixed() bool {
	return t == TypeHeader || t == TypeFooter
}

// Props is the open, schema-less property bag attached to a component.
// Values follow JSON shapes: string, float64, bool, []any, map[string]any.
type Props map[string]any

// Clone returns a deep copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a new bag holding p overlaid with partial. Keys in partial
// replace keys in p; untouched keys are kept. Nested values are not merged.
func (p Props) Merge(partial Props) Props {
	out := p.Clone()
	for k, v := range partial {
		out[k] = cloneValue(v)
	}
	return out
}

// String returns the prop as display text. Missing, nil, empty, false and
// zero values are reported as absent, matching how defaults are applied.
func (p Props) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || !Truthy(v) {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

// StringOr returns the prop as text or def when absent.
func (p Props) StringOr(key, def string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return def
}

// Number returns the prop as a float. Numeric strings are accepted.
func (p Props) Number(key string) (float64, bool) {
	v, ok := p[key]
	if !ok || !Truthy(v) {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(x), "px"), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Bool reports whether the flag at key is set.
func (p Props) Bool(key string) bool {
	v, ok := p[key]
	return ok && Truthy(v)
}

// Truthy mirrors the loose truthiness the builder has always used for props:
// nil, false, "", 0 and NaN count as unset.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}

// Component is one node of an email document.
type Component struct {
	ID       string        `json:"id"`
	Type     ComponentType `json:"type"`
	Props    Props         `json:"props"`
	Children []Component   `json:"children,omitempty"`
}

// Clone returns a deep copy of c, keeping its id.
func (c Component) Clone() Component {
	out := Component{ID: c.ID, Type: c.Type, Props: c.Props.Clone()}
	if c.Children != nil {
		out.Children = CloneComponents(c.Children)
	}
	return out
}

// CloneComponents deep-copies a component list.
func CloneComponents(in []Component) []Component {
	if in == nil {
		return nil
	}
	out := make([]Component, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// SocialLink is one entry of a footer's socialLinks prop.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon,omitempty"`
}

// SocialLinks decodes props.socialLinks. Entries that are not objects are skipped.
func (p Props) SocialLinks() []SocialLink {
	var raw []any
	switch v := p["socialLinks"].(type) {
	case []any:
		raw = v
	case []map[string]any:
		for _, m := range v {
			raw = append(raw, m)
		}
	case []SocialLink:
		return append([]SocialLink(nil), v...)
	default:
		return nil
	}
	out := make([]SocialLink, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		link := Props(m)
		out = append(out, SocialLink{
			Platform: link.StringOr("platform", ""),
			URL:      link.StringOr("url", ""),
			Icon:     link.StringOr("icon", ""),
		})
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return map[string]any(Props(x).Clone())
	case Props:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []SocialLink:
		return append([]SocialLink(nil), x...)
	default:
		return v
	}
}
