package frontmatter

import "strings"

// Value is a frontmatter value: either a scalar string or an ordered list.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// Scalar returns a scalar value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// List returns a list value.
func List(items ...string) Value {
	return Value{list: items, isList: true}
}

// IsList reports whether the value was written as a list.
func (v Value) IsList() bool { return v.isList }

// IsEmpty treats empty scalars and empty lists alike.
func (v Value) IsEmpty() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return v.scalar == ""
}

// String returns the scalar, or the list items joined with ", ".
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}
	return v.scalar
}

// Strings returns the list items. A non-empty scalar becomes a one-element list.
func (v Value) Strings() []string {
	if v.isList {
		return append([]string(nil), v.list...)
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

// Metadata maps frontmatter keys to values.
type Metadata map[string]Value

// Has reports whether key is present with a non-empty value.
func (m Metadata) Has(key string) bool {
	v, ok := m[key]
	return ok && !v.IsEmpty()
}

// String returns the value of key as a string, or "" when absent.
func (m Metadata) String(key string) string {
	return m[key].String()
}

// Strings returns the value of key as a list, or nil when absent.
func (m Metadata) Strings(key string) []string {
	return m[key].Strings()
}

// First returns the first non-empty value among keys.
func (m Metadata) First(keys ...string) string {
	for _, k := range keys {
		if m.Has(k) {
			return m.String(k)
		}
	}
	return ""
}

// Plain converts the metadata to plain Go values for encoding.
func (m Metadata) Plain() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v.isList {
			out[k] = v.Strings()
		} else {
			out[k] = v.scalar
		}
	}
	return out
}
