package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/sco1/anthro-tables/fixfmt"
)

type quotingMode int

const (
	quotingNone quotingMode = iota
	quotingMinimal
	quotingNonNumeric
	quotingAll
)

type csvWriter struct {
	w              io.Writer
	delimiter      rune
	lineTerminator string
	quoting        quotingMode
}

type field struct {
	text      string
	isNumeric bool
}

func (a *app) csvCmd() *cobra.Command {
	var (
		delimiter      string
		quoting        string
		lineTerminator string
		raw            bool
	)
	cmd := &cobra.Command{
		Use:   "csv <file|-> [outfile]",
		Short: "Write one data file as CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delim, err := parseDelimiter(delimiter)
			if err != nil {
				return &usageError{err: fmt.Errorf("invalid delimiter: %w", err)}
			}
			q, err := parseQuoting(quoting)
			if err != nil {
				return &usageError{err: err}
			}
			term, err := parseEscapedString(lineTerminator)
			if err != nil {
				return &usageError{err: fmt.Errorf("invalid line terminator: %w", err)}
			}
			if raw {
				a.cfg.Raw = true
			}

			doc, err := a.openOne(args[0])
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return fmt.Errorf("load decoders: %w", err)
			}
			if reg != nil {
				if err := reg.Apply(doc.Table); err != nil {
					return err
				}
			}

			render := func(w io.Writer) error {
				cw := &csvWriter{w: w, delimiter: delim, lineTerminator: term, quoting: q}
				return writeTable(cw, doc.Table)
			}
			if len(args) == 1 || args[1] == "-" {
				return render(a.stdout)
			}
			return writeFile(args[1], render)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&delimiter, "delimiter", "d", ",", "field delimiter, 'tab' or 'x09' style hex allowed")
	f.StringVarP(&quoting, "quoting", "q", "minimal", "field quoting, 'none' 'minimal' 'nonnumeric' or 'all'")
	f.StringVarP(&lineTerminator, "lineterminator", "l", `\n`, "line terminator")
	f.BoolVar(&raw, "raw", false, "keep raw integers, apply no decoders")
	return cmd
}

func writeTable(cw *csvWriter, t *fixfmt.Table) error {
	header := make([]field, len(t.Columns))
	for i, name := range t.Columns {
		header[i] = field{text: name}
	}
	if err := cw.writeRow(header); err != nil {
		return err
	}
	return t.Rows(func(id int64, row []interface{}) error {
		fields := make([]field, len(row))
		for i, v := range row {
			fields[i] = formatValue(v)
		}
		return cw.writeRow(fields)
	})
}

func formatValue(v interface{}) field {
	switch v := v.(type) {
	case nil:
		return field{}
	case int64:
		return field{text: strconv.FormatInt(v, 10), isNumeric: true}
	case float64:
		return field{text: strconv.FormatFloat(v, 'f', -1, 64), isNumeric: true}
	case time.Time:
		return field{text: v.Format("2006-01-02")}
	case string:
		return field{text: v}
	default:
		return field{text: fmt.Sprint(v)}
	}
}

func parseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", "x09":
		return '\t', nil
	}
	if value == "" {
		return 0, fmt.Errorf("delimiter cannot be empty")
	}
	if strings.HasPrefix(value, "x") && len(value) == 3 {
		decoded, err := strconv.ParseUint(value[1:], 16, 8)
		if err != nil {
			return 0, err
		}
		return rune(decoded), nil
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

func parseEscapedString(value string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] != '\\' {
			b.WriteByte(value[i])
			continue
		}
		if i+1 >= len(value) {
			return "", fmt.Errorf("dangling escape")
		}
		i++
		switch value[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", fmt.Errorf("unknown escape \\%c", value[i])
		}
	}
	return b.String(), nil
}

func parseQuoting(value string) (quotingMode, error) {
	switch strings.ToLower(value) {
	case "none":
		return quotingNone, nil
	case "minimal":
		return quotingMinimal, nil
	case "nonnumeric":
		return quotingNonNumeric, nil
	case "all":
		return quotingAll, nil
	default:
		return quotingMinimal, fmt.Errorf("unsupported quoting: %s", value)
	}
}

func (cw *csvWriter) writeRow(fields []field) error {
	var buf bytes.Buffer
	for i, f := range fields {
		if i > 0 {
			buf.WriteRune(cw.delimiter)
		}
		buf.WriteString(cw.formatField(f))
	}
	buf.WriteString(cw.lineTerminator)
	_, err := cw.w.Write(buf.Bytes())
	return err
}

func (cw *csvWriter) formatField(f field) string {
	if !cw.needsQuote(f) {
		return f.text
	}
	return `"` + strings.ReplaceAll(f.text, `"`, `""`) + `"`
}

func (cw *csvWriter) needsQuote(f field) bool {
	switch cw.quoting {
	case quotingAll:
		return true
	case quotingNonNumeric:
		return !f.isNumeric
	case quotingMinimal:
		return strings.ContainsRune(f.text, cw.delimiter) || strings.ContainsAny(f.text, "\"\r\n")
	default:
		return false
	}
}
