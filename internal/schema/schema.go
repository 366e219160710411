// Package schema maps raw source columns onto typed records. Column lookup
// happens once per load; nothing downstream looks fields up by header text.
package schema

import (
	"fmt"
	"strings"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
)

// SchemaError reports required columns that are entirely absent from a
// source. It blocks the load; no partial processing happens.
type SchemaError struct {
	Source  string
	Profile string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source %s: missing required columns for profile %q: %s",
		e.Source, e.Profile, strings.Join(e.Missing, ", "))
}

// Mapping holds the resolved column index of each canonical field.
type Mapping struct {
	index map[string]int
}

// Resolve matches headers against each field's aliases. Configured aliases
// are tried before the built-in ones; the first matching header wins.
func Resolve(headers []string, extra map[string][]string) *Mapping {
	byKey := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalize.NormalizeName(h)
		if _, dup := byKey[key]; !dup && key != "" {
			byKey[key] = i
		}
	}

	m := &Mapping{index: make(map[string]int)}
	for _, f := range model.AllFields {
		candidates := append(append([]string{}, extra[f.Name]...), f.Aliases...)
		for _, alias := range candidates {
			if idx, ok := byKey[normalize.NormalizeName(alias)]; ok {
				m.index[f.Name] = idx
				break
			}
		}
	}
	return m
}

// Index returns the column index for field, or -1.
func (m *Mapping) Index(field string) int {
	if idx, ok := m.index[field]; ok {
		return idx
	}
	return -1
}

// Has reports whether field resolved to a column.
func (m *Mapping) Has(field string) bool {
	_, ok := m.index[field]
	return ok
}

// Missing returns the required fields that did not resolve, in order.
func (m *Mapping) Missing(required []string) []string {
	var out []string
	for _, f := range required {
		if !m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Fields returns the resolved canonical fields in export order.
func (m *Mapping) Fields() []string {
	var out []string
	for _, f := range model.AllFields {
		if m.Has(f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}
