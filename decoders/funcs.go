package decoders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity returns the raw value unchanged.
func Identity() Func {
	return func(v int64) (interface{}, error) {
		return v, nil
	}
}

// Scale divides by divisor, for values recorded with implied decimals
// (weight in tenths of a pound).
func Scale(divisor float64) Func {
	return func(v int64) (interface{}, error) {
		if divisor == 0 {
			return nil, fmt.Errorf("scale: zero divisor")
		}
		return float64(v) / divisor, nil
	}
}

// Months converts a month count to years.
func Months() Func {
	return func(v int64) (interface{}, error) {
		return float64(v) / 12, nil
	}
}

// Text renders the value as a zero-padded code of the given width, for
// identifiers such as occupational specialty codes where leading zeros
// matter.
func Text(width int) Func {
	return func(v int64) (interface{}, error) {
		if v < 0 {
			return nil, fmt.Errorf("text: negative value")
		}
		s := strconv.FormatInt(v, 10)
		if pad := width - len(s); pad > 0 {
			s = strings.Repeat("0", pad) + s
		}
		return s, nil
	}
}

// Lookup maps codes to labels. Unknown codes are an error when strict is
// set; otherwise the raw value is kept.
func Lookup(codes map[int64]string, strict bool) Func {
	return func(v int64) (interface{}, error) {
		if label, ok := codes[v]; ok {
			return label, nil
		}
		if strict {
			return nil, fmt.Errorf("lookup: unknown code %d", v)
		}
		return v, nil
	}
}

// Date parses packed date digits. layout is built from YYYY or YY, MM and
// DD, e.g. "YYMMDD" or "MMDDYYYY". Two-digit years are added to century.
// A zero value means the date was not recorded and decodes to nil.
func Date(layout string, century int) (Func, error) {
	layout = strings.ToUpper(layout)
	yearLen := 2
	yi := strings.Index(layout, "YYYY")
	if yi >= 0 {
		yearLen = 4
	} else {
		yi = strings.Index(layout, "YY")
	}
	mi := strings.Index(layout, "MM")
	di := strings.Index(layout, "DD")
	if yi < 0 || mi < 0 || di < 0 || len(layout) != yearLen+4 {
		return nil, fmt.Errorf("date: bad layout %q", layout)
	}

	return func(v int64) (interface{}, error) {
		if v == 0 {
			return nil, nil
		}
		s := strconv.FormatInt(v, 10)
		if len(s) > len(layout) || v < 0 {
			return nil, fmt.Errorf("date: %d does not fit %s", v, layout)
		}
		s = strings.Repeat("0", len(layout)-len(s)) + s

		year, _ := strconv.Atoi(s[yi : yi+yearLen])
		month, _ := strconv.Atoi(s[mi : mi+2])
		day, _ := strconv.Atoi(s[di : di+2])
		if yearLen == 2 {
			year += century
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return nil, fmt.Errorf("date: %s is not a valid %s date", s, layout)
		}
		return t, nil
	}, nil
}
