package fixfmt

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Column describes where one variable sits in the physical lines of a
// record.
type Column struct {
	Name  string
	Type  byte
	Width int

	// Line is the zero-based physical line of the record holding the field.
	Line int

	// Start and End are the 1-based first and last character positions of
	// the field within its physical line.
	Start int
	End   int
}

// Columns maps names onto layout, one entry per field occurrence. Names
// beyond the field count are ignored; missing names are left empty.
func Columns(names []string, layout *Layout) []Column {
	cols := make([]Column, 0, layout.FieldCount())
	line, pos := 0, 1
	for i, f := range layout.Fields {
		for n := 0; n < f.Repeat; n++ {
			c := Column{Type: f.Type, Width: f.Width, Line: line, Start: pos, End: pos + f.Width - 1}
			if k := len(cols); k < len(names) {
				c.Name = names[k]
			}
			cols = append(cols, c)
			pos += f.Width
		}
		if layout.LineBreakAfter(i) {
			line++
			pos = 1
		}
	}
	return cols
}

// Dump writes a summary of doc and its column map to w for debugging.
func Dump(w io.Writer, doc *Document) error {
	fmt.Fprintf(w, "document: %s\n", doc.Name)
	fmt.Fprintf(w, "format: (%s)\n", doc.Layout)
	fmt.Fprintf(w, "lines per record: %d\n", doc.Layout.LineWrap)
	fmt.Fprintf(w, "record width: %d\n", doc.Layout.RecordWidth())
	if doc.Table != nil {
		fmt.Fprintf(w, "subjects: %d\n", doc.Table.Len())
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tTYPE\tWIDTH\tLINE\tCOLUMNS")
	for i, c := range Columns(doc.Header.Names, doc.Layout) {
		fmt.Fprintf(tw, "%d\t%s\t%c\t%d\t%d\t%d-%d\n", i, c.Name, c.Type, c.Width, c.Line+1, c.Start, c.End)
	}
	return tw.Flush()
}
