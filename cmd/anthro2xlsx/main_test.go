package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestRunCSV(t *testing.T) {
	out, errOut, code := runCLI(t, "csv", samplePath(t, "basic.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	want := "SUBJECT ID,WEIGHT,AGE\n1,186.7,35\n2,182,41\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRunCSVRaw(t *testing.T) {
	out, errOut, code := runCLI(t, "csv", "--raw", samplePath(t, "basic.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	record := csvRecordAt(t, out, ',', 1)
	if strings.Join(record, ",") != "1,1867,35" {
		t.Fatalf("first row = %v", record)
	}
}

func TestRunCSVWrapped(t *testing.T) {
	out, errOut, code := runCLI(t, "csv", "-d", "tab", samplePath(t, "wrapped.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	header := csvRecordAt(t, out, '\t', 0)
	wantHeader := []string{"SUBJECT ID", "STATURE", "WEIGHT", "AGE", "BIRTH DATE", "HANDEDNESS"}
	if strings.Join(header, "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("header = %v, want %v", header, wantHeader)
	}
	row := csvRecordAt(t, out, '\t', 1)
	want := []string{"7", "1702", "65", "23", "1951-06-23", "RIGHT"}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("row = %v, want %v", row, want)
	}
}

func TestRunCSVQuoting(t *testing.T) {
	out, errOut, code := runCLI(t, "csv", "-q", "nonnumeric", samplePath(t, "basic.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if first := firstLine(out); first != `"SUBJECT ID","WEIGHT","AGE"` {
		t.Fatalf("header line = %q", first)
	}
	if !strings.Contains(out, "\n1,186.7,35\n") {
		t.Fatalf("numeric fields were quoted: %q", out)
	}
}

func TestRunCSVStdin(t *testing.T) {
	input := "  1  AGE  30\n(I2,I2)\n0130\n0241\n"
	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", noConfig(t), "csv", "-"}, strings.NewReader(input), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if stdout.String() != "SUBJECT ID,AGE\n1,30\n2,41\n" {
		t.Fatalf("output = %q", stdout.String())
	}
}

func TestRunCSVOutfile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "basic.csv")
	_, errOut, code := runCLI(t, "csv", "-l", `\r\n`, samplePath(t, "basic.dat"), outPath)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "SUBJECT ID,WEIGHT,AGE\r\n") {
		t.Fatalf("unexpected output: %q", data)
	}
}

func TestRunXLSX(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, errOut, code := runCLI(t, "xlsx", "-o", outPath, samplePath(t, "wrapped.dat"), samplePath(t, "basic.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}

	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != "wrapped,basic" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("basic")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if strings.Join(rows[0], ",") != "SUBJECT ID,WEIGHT,AGE" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][1] != "186.7" {
		t.Fatalf("WEIGHT = %q, want 186.7", rows[1][1])
	}
}

func TestRunXLSXDirectory(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, errOut, code := runCLI(t, "xlsx", "--workers", "2", "-o", outPath, filepath.Join("..", "..", "testdata", "samples"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if got := strings.Join(f.GetSheetList(), ","); got != "basic,latin1,wrapped" {
		t.Fatalf("sheets = %s", got)
	}
}

func TestRunXLSXAbort(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, errOut, code := runCLI(t, "xlsx", "-o", outPath, samplePath(t, "basic.dat"), samplePath(t, "unterminated.dat"))
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(errOut, "unterminated") {
		t.Fatalf("stderr = %q", errOut)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Fatalf("workbook written despite error: %v", err)
	}
}

func TestRunXLSXSkipErrors(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, errOut, code := runCLI(t, "xlsx", "--skip-errors", "-o", outPath, samplePath(t, "basic.dat"), samplePath(t, "unterminated.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(errOut, "skipping document") {
		t.Fatalf("expected skip warning, stderr: %q", errOut)
	}
	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if got := strings.Join(f.GetSheetList(), ","); got != "basic" {
		t.Fatalf("sheets = %s", got)
	}
}

func TestRunXLSXLatin1(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, errOut, code := runCLI(t, "-e", "latin1", "xlsx", "-o", outPath, samplePath(t, "latin1.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	header, err := f.GetCellValue("latin1", "B1")
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if header != "TAILLE ASSISéE" {
		t.Fatalf("B1 = %q", header)
	}
}

func TestRunInspect(t *testing.T) {
	out, errOut, code := runCLI(t, "inspect", samplePath(t, "wrapped.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	for _, want := range []string{"document: wrapped", "lines per record: 2", "subjects: 2", "BIRTH DATE"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "anthro.yaml")
	if err := os.WriteFile(cfgPath, []byte("raw: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", cfgPath, "csv", samplePath(t, "basic.dat")}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "\n1,1867,35\n") {
		t.Fatalf("decoders applied despite raw config: %q", stdout.String())
	}
}

func TestRunXLSXDecodersFile(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "decoders.yaml")
	body := "columns:\n  - name: age\n    kind: lookup\n    codes:\n      35: THIRTY-FIVE\n"
	if err := os.WriteFile(defs, []byte(body), 0o644); err != nil {
		t.Fatalf("write decoders: %v", err)
	}
	outPath := filepath.Join(dir, "out.xlsx")
	_, errOut, code := runCLI(t, "xlsx", "--decoders", defs, "-o", outPath, samplePath(t, "basic.dat"))
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	for cell, want := range map[string]string{"B2": "186.7", "C2": "THIRTY-FIVE"} {
		got, err := f.GetCellValue("basic", cell)
		if err != nil {
			t.Fatalf("cell %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"csv", "--bogus", "x"}},
		{"bad quoting", []string{"csv", "-q", "sometimes", "x"}},
		{"bad workers", []string{"xlsx", "--workers", "0", "x"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, code := runCLI(t, test.args...)
			if code != 2 {
				t.Fatalf("exit code %d, want 2", code)
			}
		})
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "anthro.yaml")
	if err := os.WriteFile(cfgPath, []byte("encoding: ebcdic\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	for _, sub := range []string{"csv", "inspect", "xlsx"} {
		t.Run(sub, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run([]string{"--config", cfgPath, sub, samplePath(t, "basic.dat")}, strings.NewReader(""), &stdout, &stderr)
			if code != 2 {
				t.Fatalf("exit code %d, want 2, stderr: %s", code, stderr.String())
			}
			if !strings.Contains(stderr.String(), "unsupported encoding") {
				t.Fatalf("stderr = %q", stderr.String())
			}
		})
	}
}

func TestRunBadEncodingFlag(t *testing.T) {
	_, _, code := runCLI(t, "-e", "ebcdic", "inspect", samplePath(t, "basic.dat"))
	if code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
}

func TestRunMissingFile(t *testing.T) {
	_, errOut, code := runCLI(t, "csv", samplePath(t, "nope.dat"))
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.HasPrefix(errOut, "error:") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestRunVersion(t *testing.T) {
	out, _, code := runCLI(t, "version")
	if code != 0 || strings.TrimSpace(out) != version {
		t.Fatalf("version output %q, code %d", out, code)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input string
		want  rune
	}{
		{",", ','},
		{"tab", '\t'},
		{"x3b", ';'},
		{"|", '|'},
	}
	for _, test := range tests {
		got, err := parseDelimiter(test.input)
		if err != nil {
			t.Errorf("parseDelimiter(%q): %v", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("parseDelimiter(%q) = %q, want %q", test.input, got, test.want)
		}
	}
	if _, err := parseDelimiter(""); err == nil {
		t.Errorf("parseDelimiter(\"\") succeeded")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		input   interface{}
		text    string
		numeric bool
	}{
		{nil, "", false},
		{int64(42), "42", true},
		{186.7, "186.7", true},
		{"LEFT", "LEFT", false},
	}
	for _, test := range tests {
		got := formatValue(test.input)
		if got.text != test.text || got.isNumeric != test.numeric {
			t.Errorf("formatValue(%v) = %+v", test.input, got)
		}
	}
}

// runCLI runs the command with a config path that does not exist, so a
// stray anthro.yaml in the working directory cannot leak into tests.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--config", noConfig(t)}, args...)
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func noConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "anthro.yaml")
}

func samplePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("..", "..", "testdata", "samples", name)
}

func csvRecordAt(t *testing.T, output string, delimiter rune, rowx int) []string {
	t.Helper()
	reader := csv.NewReader(strings.NewReader(output))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if rowx >= len(records) {
		t.Fatalf("row %d out of range (%d rows)", rowx, len(records))
	}
	return records[rowx]
}

func firstLine(output string) string {
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		return output[:idx]
	}
	return output
}
