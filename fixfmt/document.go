package fixfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Document is a fully decoded positional data file.
//
// You don't build a Document yourself. Use OpenDocument or ParseDocument.
type Document struct {
	// Name identifies the document, normally the file name without its
	// extension.
	Name string

	Header *Header
	Layout *Layout
	Table  *Table
}

// Options controls how a document is read and assembled.
type Options struct {
	// Encoding names the character set of the file. The default is utf-8.
	// See Encodings for the accepted names.
	Encoding string

	// Duplicates decides how repeated subject identifiers are handled.
	Duplicates DuplicatePolicy

	// FileContents is the raw file content. When set, the path given to
	// OpenDocument is only used to name the document.
	FileContents []byte

	// Logger receives debug traces. A nil Logger disables logging.
	Logger *zap.Logger
}

var encodings = map[string]encoding.Encoding{
	"latin1":     charmap.ISO8859_1,
	"iso-8859-1": charmap.ISO8859_1,
	"cp437":      charmap.CodePage437,
	"cp850":      charmap.CodePage850,
	"cp1252":     charmap.Windows1252,
	"mac_roman":  charmap.Macintosh,
}

// Encodings returns the accepted Options.Encoding names besides utf-8.
func Encodings() []string {
	names := make([]string, 0, len(encodings))
	for name := range encodings {
		names = append(names, name)
	}
	return names
}

func decodeText(data []byte, name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return string(data), nil
	}
	enc, ok := encodings[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unsupported encoding: %s", name)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}

// SplitLines splits text into lines with the terminators removed. Both
// "\n" and "\r\n" are accepted. A final terminator does not produce an
// empty trailing line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// OpenDocument reads and decodes the positional data file at path.
func OpenDocument(path string, options *Options) (*Document, error) {
	if options == nil {
		options = &Options{}
	}

	data := options.FileContents
	if data == nil {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	text, err := decodeText(data, options.Encoding)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(SplitLines(text), options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Name = DocumentName(path)
	return doc, nil
}

// DocumentName derives a document name from a file path.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseDocument decodes the lines of a document: header, format
// specifier, data block and table.
func ParseDocument(lines []string, options *Options) (*Document, error) {
	if options == nil {
		options = &Options{}
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}

	header, err := ExtractHeader(lines)
	if err != nil {
		return nil, err
	}
	layout, err := ParseFormatSpec(header.FormatSpec)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed header",
		zap.Int("variables", len(header.Names)),
		zap.String("format", header.FormatSpec),
		zap.Int("line_wrap", layout.LineWrap),
		zap.Int("data_start", header.DataStart))

	if n := layout.FieldCount(); n != len(header.Names) {
		return nil, newFormatError("header names %d variables (including %s) but the format describes %d fields",
			len(header.Names), SubjectIDColumn, n)
	}

	records, err := DecodeRecords(lines[header.DataStart:], layout)
	if err != nil {
		return nil, err
	}
	table, err := Assemble(header.Names, records, options.Duplicates)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded records", zap.Int("records", len(records)), zap.Int("subjects", table.Len()))

	return &Document{Header: header, Layout: layout, Table: table}, nil
}
