package fixfmt

import (
	"regexp"
	"strings"
)

// SubjectIDColumn is the name given to the leading identifier field of every
// record. It is not listed in the document header.
const SubjectIDColumn = "SUBJECT ID"

// Header is what ExtractHeader recovers from the top of a document.
type Header struct {
	// Names holds SubjectIDColumn followed by the variable names in the
	// order they were defined.
	Names []string

	// FormatSpec is the format specifier with whitespace and parentheses
	// trimmed.
	FormatSpec string

	// FormatLine is the zero-based index of the format specifier line.
	FormatLine int

	// DataStart is the index of the first data line, one past FormatLine.
	DataStart int
}

// Variable definition columns are separated by two or more spaces; single
// spaces occur inside names ("BIRTH DATE").
var columnSeparator = regexp.MustCompile(`\s{2,}`)

type scanState int

const (
	scanHeader scanState = iota
	foundFormat
)

// ExtractHeader scans the leading lines of a document for variable
// definitions, stopping at the first line whose trimmed content starts with
// '('. Each definition line looks like
//
//	  12  BIRTH DATE      510623
//
// where the first column is a running index and anything after the name is
// sample data; only the name is kept. A blank line is not a definition and
// fails like any other line with fewer than two segments.
func ExtractHeader(lines []string) (*Header, error) {
	h := &Header{Names: []string{SubjectIDColumn}}
	state := scanHeader

	i := 0
	for ; state == scanHeader && i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, "("):
			h.FormatSpec = strings.Trim(trimmed, " \t()")
			h.FormatLine = i
			h.DataStart = i + 1
			state = foundFormat
		default:
			parts := columnSeparator.Split(trimmed, 3)
			if len(parts) < 2 {
				return nil, newFormatError("unparsable header line %d: %q", i+1, lines[i])
			}
			h.Names = append(h.Names, parts[1])
		}
	}

	if state != foundFormat {
		return nil, newFormatError("unterminated header: no format specifier line found in %d lines", len(lines))
	}
	return h, nil
}
