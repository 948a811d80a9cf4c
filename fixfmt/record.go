package fixfmt

import (
	"strconv"
	"strings"
	"unicode"
)

// Record is one decoded logical record: one integer per field occurrence,
// in layout order. Record[0] is the subject identifier.
type Record []int64

// DecodeRecords slices the data block of a document into records according
// to layout. Every layout.LineWrap consecutive lines form one record; they
// are concatenated and stripped of trailing padding before the fields are
// consumed left to right.
//
// Any mismatch between the block and the layout is an error: a layout
// that fails the width bound of ParseFormatSpec, a line count that is not a
// multiple of LineWrap or characters left over after the last field is a
// *FormatError; a non-digit inside a field or a record that ends in the
// middle of a field is a *DecodeError.
func DecodeRecords(lines []string, layout *Layout) ([]Record, error) {
	if layout == nil || len(layout.Fields) == 0 {
		return nil, newFormatError("empty layout")
	}
	wrap := layout.LineWrap
	if wrap < 1 {
		return nil, newFormatError("invalid line wrap count %d", wrap)
	}
	if err := layout.check(); err != nil {
		return nil, err
	}

	if len(lines)%wrap != 0 {
		return nil, newFormatError("data block has %d lines, not a multiple of the %d lines per record", len(lines), wrap)
	}

	records := make([]Record, 0, len(lines)/wrap)
	for group := 0; group*wrap < len(lines); group++ {
		chunk := strings.Join(lines[group*wrap:(group+1)*wrap], "")
		chunk = strings.TrimRightFunc(chunk, unicode.IsSpace)
		rec, err := decodeRecord(group, []rune(chunk), layout)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// fieldReader walks a record stream with an explicit cursor.
type fieldReader struct {
	group  int
	stream []rune
	pos    int
}

func (r *fieldReader) next(field, width int) (int64, error) {
	if r.pos+width > len(r.stream) {
		return 0, &DecodeError{
			Group:   r.group,
			Field:   field,
			Window:  string(r.stream[r.pos:]),
			Message: "record ended inside field of width " + strconv.Itoa(width),
		}
	}
	window := string(r.stream[r.pos : r.pos+width])
	r.pos += width

	for _, c := range window {
		if c < '0' || c > '9' {
			return 0, &DecodeError{Group: r.group, Field: field, Window: window, Message: "non-digit in field"}
		}
	}
	v, err := strconv.ParseInt(window, 10, 64)
	if err != nil {
		return 0, &DecodeError{Group: r.group, Field: field, Window: window, Message: err.Error()}
	}
	return v, nil
}

func (r *fieldReader) remaining() int {
	return len(r.stream) - r.pos
}

func decodeRecord(group int, stream []rune, layout *Layout) (Record, error) {
	r := &fieldReader{group: group, stream: stream}
	rec := make(Record, 0, min(layout.FieldCount(), len(stream)))
	for _, f := range layout.Fields {
		for n := 0; n < f.Repeat; n++ {
			v, err := r.next(len(rec), f.Width)
			if err != nil {
				return nil, err
			}
			rec = append(rec, v)
		}
	}
	if left := r.remaining(); left > 0 {
		return nil, newFormatError("record %d: %d characters left after the last field (layout consumes %d, record has %d)",
			group, left, layout.RecordWidth(), len(stream))
	}
	return rec, nil
}
