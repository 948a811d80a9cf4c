package fixfmt

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

// PeekSize is the maximum number of bytes InspectDocument reads.
const PeekSize = 64 * 1024

// InspectDocument inspects the content at the supplied path, or the content
// provided, and returns the format specifier if it looks like a positional
// data file, or an empty string otherwise.
//
// A file qualifies when, within the first PeekSize bytes, every line
// before the first '(' line is a variable definition and the format line
// parses.
func InspectDocument(path string, content []byte) (string, error) {
	var r io.Reader
	if content != nil {
		r = bytes.NewReader(content)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	sc := bufio.NewScanner(io.LimitReader(r, PeekSize))
	sc.Buffer(make([]byte, 0, 4096), PeekSize)
	for sc.Scan() {
		trimmed := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(trimmed, "(") {
			spec := strings.Trim(trimmed, " \t()")
			if _, err := ParseFormatSpec(spec); err != nil {
				return "", nil
			}
			return spec, nil
		}
		if len(columnSeparator.Split(trimmed, 3)) < 2 {
			return "", nil
		}
	}
	if err := sc.Err(); err != nil && err != bufio.ErrTooLong {
		return "", err
	}
	return "", nil
}
