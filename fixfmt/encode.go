package fixfmt

import (
	"strconv"
	"strings"
)

// DefaultLineLength is the card width the legacy files are padded to.
const DefaultLineLength = 80

// EncodeRecord writes rec back to fixed-width text using layout. Values are
// zero-padded to their field width and a new physical line is started at
// each '/' boundary. The last line of the record is right-padded with spaces
// to lineLen; a lineLen of zero disables padding. Earlier lines are never
// padded since decoding only strips padding from the end of a record.
func EncodeRecord(rec Record, layout *Layout, lineLen int) ([]string, error) {
	if len(rec) != layout.FieldCount() {
		return nil, newFormatError("record has %d values, layout has %d fields", len(rec), layout.FieldCount())
	}

	lines := make([]string, 0, layout.LineWrap)
	var b strings.Builder
	k := 0
	for i, f := range layout.Fields {
		for n := 0; n < f.Repeat; n++ {
			v := rec[k]
			if v < 0 {
				return nil, newFormatError("field %d: negative value %d cannot be encoded", k, v)
			}
			s := strconv.FormatInt(v, 10)
			if len(s) > f.Width {
				return nil, newFormatError("field %d: value %d does not fit width %d", k, v, f.Width)
			}
			b.WriteString(strings.Repeat("0", f.Width-len(s)))
			b.WriteString(s)
			k++
		}
		if layout.LineBreakAfter(i) {
			lines = append(lines, b.String())
			b.Reset()
		}
	}

	last := b.String()
	if pad := lineLen - len(last); lineLen > 0 && pad > 0 {
		last += strings.Repeat(" ", pad)
	}
	return append(lines, last), nil
}

// EncodeHeader writes the variable definition lines and the format line
// for names (SubjectIDColumn excluded) and layout. Sample values are not
// written.
func EncodeHeader(names []string, layout *Layout) []string {
	lines := make([]string, 0, len(names)+1)
	for i, name := range names {
		lines = append(lines, "  "+strconv.Itoa(i+1)+"  "+name)
	}
	return append(lines, " ("+layout.String()+")")
}
