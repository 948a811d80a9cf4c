package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sco1/anthro-tables/internal/batch"
	"github.com/sco1/anthro-tables/internal/xlsx"
)

type xlsxFlags struct {
	output           string
	workers          int
	skipErrors       bool
	rejectDuplicates bool
	decoders         string
	raw              bool
}

func (a *app) xlsxCmd() *cobra.Command {
	var fl xlsxFlags
	cmd := &cobra.Command{
		Use:   "xlsx <file|dir|->...",
		Short: "Write data files to a workbook, one sheet per file",
		Long: `Decode every named file, and every data file found directly inside each
named directory, then write one xlsx workbook with a sheet per file. Sheets
are named after the file and keep argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runXLSX(cmd, args, fl)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.output, "output", "o", "anthro.xlsx", "workbook to write, - for stdout")
	f.IntVar(&fl.workers, "workers", 0, "documents decoded at once (default from config)")
	f.BoolVar(&fl.skipErrors, "skip-errors", false, "log bad documents and carry on")
	f.BoolVar(&fl.rejectDuplicates, "reject-duplicates", false, "fail on a repeated subject id")
	f.StringVar(&fl.decoders, "decoders", "", "YAML file of extra column decoders")
	f.BoolVar(&fl.raw, "raw", false, "keep raw integers, apply no decoders")
	return cmd
}

func (a *app) runXLSX(cmd *cobra.Command, args []string, fl xlsxFlags) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		a.cfg.Workers = fl.workers
	}
	if fl.skipErrors {
		a.cfg.OnError = "skip"
	}
	if fl.rejectDuplicates {
		a.cfg.Duplicates = "reject"
	}
	if fl.decoders != "" {
		a.cfg.Decoders = fl.decoders
	}
	if fl.raw {
		a.cfg.Raw = true
	}
	if err := a.cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	policy, _ := a.cfg.DuplicatePolicy()

	reg, err := a.registry()
	if err != nil {
		return fmt.Errorf("load decoders: %w", err)
	}

	inputs, err := a.collectInputs(args)
	if err != nil {
		return err
	}

	results, err := batch.Run(cmd.Context(), inputs, batch.Options{
		Workers:    a.cfg.Workers,
		SkipErrors: a.cfg.SkipErrors(),
		Encoding:   a.cfg.Encoding,
		Duplicates: policy,
		Decoders:   reg,
		Logger:     a.log,
	})
	if err != nil {
		return err
	}

	var sheets []xlsx.Sheet
	for _, r := range results {
		if r.Document == nil {
			continue
		}
		sheets = append(sheets, xlsx.Sheet{Name: r.Key, Table: r.Document.Table})
	}
	if len(sheets) == 0 {
		return fmt.Errorf("no documents decoded")
	}

	if fl.output == "-" {
		return xlsx.Write(a.stdout, sheets)
	}
	if err := writeFile(fl.output, func(w io.Writer) error {
		return xlsx.Write(w, sheets)
	}); err != nil {
		return err
	}
	a.log.Info("wrote workbook", zap.String("path", fl.output), zap.Int("sheets", len(sheets)))
	return nil
}

// collectInputs expands args into batch inputs. Directories contribute the
// data files directly inside them, "-" reads stdin once.
func (a *app) collectInputs(args []string) ([]batch.Input, error) {
	var inputs []batch.Input
	readStdin := false
	for _, arg := range args {
		if arg == "-" {
			if readStdin {
				return nil, &usageError{err: fmt.Errorf("stdin given more than once")}
			}
			readStdin = true
			content, err := io.ReadAll(a.stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			inputs = append(inputs, batch.Input{Key: "stdin", Content: content})
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := batch.Discover(arg)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, found...)
			continue
		}
		inputs = append(inputs, batch.Files(arg)...)
	}
	return inputs, nil
}

// writeFile renders into memory first so a failed write never leaves a
// truncated file behind.
func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
