package style

import "strings"

// Property is one resolved CSS property.
type Property struct {
	Name  string
	Value string
}

// Declaration is an ordered set of CSS properties. Setting a property that
// already exists replaces its value in place, so later rules override earlier
// ones without disturbing output order.
type Declaration struct {
	props []Property
}

// Set assigns value to the property name.
func (d *Declaration) Set(name, value string) {
	for i := range d.props {
		if d.props[i].Name == name {
			d.props[i].Value = value
			return
		}
	}
	d.props = append(d.props, Property{Name: name, Value: value})
}

// Get returns the value of the property name.
func (d Declaration) Get(name string) (string, bool) {
	for _, p := range d.props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Properties returns a copy of the properties in order.
func (d Declaration) Properties() []Property {
	return append([]Property(nil), d.props...)
}

// Len returns the number of properties.
func (d Declaration) Len() int {
	return len(d.props)
}

// String renders the declaration as an inline style attribute value,
// e.g. "padding:20px;color:#333333;".
func (d Declaration) String() string {
	var b strings.Builder
	for _, p := range d.props {
		b.WriteString(p.Name)
		b.WriteByte(':')
		b.WriteString(p.Value)
		b.WriteByte(';')
	}
	return b.String()
}
