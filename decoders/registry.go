// Package decoders turns decoded integer columns into meaningful values:
// weights in pounds, coded categories, birth dates.
//
// A Registry maps column names to decoder functions. Apply runs every
// registered decoder whose column exists in a table and ignores the rest.
package decoders

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sco1/anthro-tables/fixfmt"
)

// Func converts one raw field value.
type Func func(int64) (interface{}, error)

// Registry maps column names to decoders.
//
// Names are normalised before every comparison: upper-cased with runs of
// whitespace collapsed to one space. Alternate spellings found in source
// files are registered with Alias, never as duplicate entries.
type Registry struct {
	funcs   map[string]Func
	aliases map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:   make(map[string]Func),
		aliases: make(map[string]string),
	}
}

// NormalizeName returns the canonical comparison form of a column name.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// Register sets the decoder for name, replacing any previous one.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[NormalizeName(name)] = fn
}

// Alias makes alias resolve to the decoder of canonical.
func (r *Registry) Alias(alias, canonical string) {
	r.aliases[NormalizeName(alias)] = NormalizeName(canonical)
}

// Lookup returns the decoder for name, following aliases.
func (r *Registry) Lookup(name string) (Func, bool) {
	key := NormalizeName(name)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	fn, ok := r.funcs[key]
	return fn, ok
}

// Merge copies the decoders and aliases of other into r, replacing
// entries with the same name.
func (r *Registry) Merge(other *Registry) {
	for name, fn := range other.funcs {
		r.funcs[name] = fn
	}
	for alias, canonical := range other.aliases {
		r.aliases[alias] = canonical
	}
}

// Names returns the canonical names with a decoder, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of canonical decoders.
func (r *Registry) Len() int {
	return len(r.funcs)
}

// Apply runs the matching decoder over every column of t. Columns without a
// decoder, and decoders without a column, are skipped. The subject
// identifier column is never decoded. The first decoder error stops Apply
// and is returned wrapped with the column and subject.
//
// Apply only reads int64 cells, so applying a registry twice leaves already
// decoded cells alone.
func (r *Registry) Apply(t *fixfmt.Table) error {
	for _, column := range t.Columns {
		if column == fixfmt.SubjectIDColumn {
			continue
		}
		fn, ok := r.Lookup(column)
		if !ok {
			continue
		}
		err := t.Rows(func(id int64, row []interface{}) error {
			raw, ok := row[t.ColumnIndex(column)].(int64)
			if !ok {
				return nil
			}
			v, err := fn(raw)
			if err != nil {
				return &Error{Column: column, Subject: id, Value: raw, Err: err}
			}
			t.Set(id, column, v)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Error is returned by Apply when a decoder fails.
type Error struct {
	Column  string
	Subject int64
	Value   int64
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decoders: column %q subject %d value %d: %v", e.Column, e.Subject, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
