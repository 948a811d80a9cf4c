package fixfmt

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldDescriptor describes one or more consecutive same-shaped fields of a
// record, as written in a format specifier token such as "2F4.0".
type FieldDescriptor struct {
	// Repeat is the number of consecutive fields described. Defaults to 1.
	Repeat int

	// Type is the single letter type code (I, F, A, ...). It is kept for
	// display only; every field decodes to an integer.
	Type byte

	// Width is the number of characters consumed per repetition.
	Width int

	// Decimals is the optional decimal width after the '.', or -1 when the
	// token had none. It does not affect decoding.
	Decimals int
}

// String renders the descriptor back to its token form.
func (f FieldDescriptor) String() string {
	var b strings.Builder
	if f.Repeat != 1 {
		b.WriteString(strconv.Itoa(f.Repeat))
	}
	b.WriteByte(f.Type)
	b.WriteString(strconv.Itoa(f.Width))
	if f.Decimals >= 0 {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(f.Decimals))
	}
	return b.String()
}

// Layout is the parsed form of a format specifier.
type Layout struct {
	// Fields is the ordered list of field descriptors.
	Fields []FieldDescriptor

	// LineWrap is the number of physical lines that make up one logical
	// record: the number of '/' separators plus one.
	LineWrap int

	// breaks[i] is true when a '/' follows Fields[i].
	breaks []bool
}

// FieldCount returns the number of field occurrences in a record after
// repeat expansion.
func (l *Layout) FieldCount() int {
	n := 0
	for _, f := range l.Fields {
		n += f.Repeat
	}
	return n
}

// RecordWidth returns the number of characters consumed by one record.
func (l *Layout) RecordWidth() int {
	n := 0
	for _, f := range l.Fields {
		n += f.Repeat * f.Width
	}
	return n
}

// LineBreakAfter reports whether a physical line boundary follows the
// descriptor at index i.
func (l *Layout) LineBreakAfter(i int) bool {
	return i >= 0 && i < len(l.breaks) && l.breaks[i]
}

// String renders the layout as a format specifier without the enclosing
// parentheses. ParseFormatSpec(l.String()) yields an equal layout.
func (l *Layout) String() string {
	var b strings.Builder
	for i, f := range l.Fields {
		if i > 0 {
			if l.LineBreakAfter(i - 1) {
				b.WriteByte('/')
			} else {
				b.WriteByte(',')
			}
		}
		b.WriteString(f.String())
	}
	return b.String()
}

// MaxRecordWidth bounds the number of characters one logical record may
// span. Layouts past it are rejected before any record is decoded.
const MaxRecordWidth = 1 << 20

// check verifies that every descriptor has a positive repeat and width and
// that the expanded record stays within MaxRecordWidth. Since every width
// is at least one, FieldCount is bounded too.
func (l *Layout) check() error {
	total := 0
	for _, f := range l.Fields {
		if f.Repeat < 1 || f.Width < 1 {
			return newFormatError("bad field descriptor %s", f)
		}
		if f.Repeat > (MaxRecordWidth-total)/f.Width {
			return newFormatError("format describes records wider than %d characters", MaxRecordWidth)
		}
		total += f.Repeat * f.Width
	}
	return nil
}

var tokenPattern = regexp.MustCompile(`^(\d*)([A-Za-z])(\d+)(?:\.(\d+))?$`)

// ParseFormatSpec parses a format specifier such as "I4,2F4.0/3I5" into a
// Layout. Tokens are separated by ',' or '/'; each '/' also starts a new
// physical line in the data block. Surrounding parentheses are tolerated.
//
// A token that does not match <repeat><type><width>[.<decimals>] is a
// *FormatError naming the token, as is a layout whose records would be
// wider than MaxRecordWidth.
func ParseFormatSpec(spec string) (*Layout, error) {
	raw := strings.Trim(strings.TrimSpace(spec), "()")
	if strings.TrimSpace(raw) == "" {
		return nil, newFormatError("empty format specifier")
	}

	layout := &Layout{LineWrap: strings.Count(raw, "/") + 1}
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i] != ',' && raw[i] != '/' {
			continue
		}
		field, err := parseToken(raw[start:i])
		if err != nil {
			return nil, err
		}
		layout.Fields = append(layout.Fields, field)
		layout.breaks = append(layout.breaks, i < len(raw) && raw[i] == '/')
		start = i + 1
	}
	if err := layout.check(); err != nil {
		return nil, err
	}
	return layout, nil
}

func parseToken(token string) (FieldDescriptor, error) {
	trimmed := strings.TrimSpace(token)
	m := tokenPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return FieldDescriptor{}, newFormatError("bad format token %q", token)
	}

	field := FieldDescriptor{Repeat: 1, Type: m[2][0], Decimals: -1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return FieldDescriptor{}, newFormatError("bad repeat count in format token %q", token)
		}
		field.Repeat = n
	}
	width, err := strconv.Atoi(m[3])
	if err != nil || width < 1 {
		return FieldDescriptor{}, newFormatError("bad width in format token %q", token)
	}
	field.Width = width
	if m[4] != "" {
		d, err := strconv.Atoi(m[4])
		if err != nil {
			return FieldDescriptor{}, newFormatError("bad decimal width in format token %q", token)
		}
		field.Decimals = d
	}
	return field, nil
}
