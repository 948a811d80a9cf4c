// anthro2xlsx decodes positional anthropometric data files and writes them
// to a spreadsheet, one sheet per file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sco1/anthro-tables/decoders"
	"github.com/sco1/anthro-tables/fixfmt"
	"github.com/sco1/anthro-tables/internal/config"
	"github.com/sco1/anthro-tables/internal/logging"
)

var version = "dev"

// app carries the state shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	encoding   string

	cfg *config.Config
	log *zap.Logger
}

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, "error:", err)
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "anthro2xlsx",
		Short: "Decode positional anthropometric data files",
		Long: `anthro2xlsx reads fixed-width survey data files that carry their own
header: one line per variable followed by a format line such as
(I4,2F4.0/3I5). Each file becomes a table keyed by subject id.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringVarP(&a.encoding, "encoding", "e", "", "input encoding (utf-8, latin1, cp437, cp850, cp1252, mac_roman)")

	root.AddCommand(a.xlsxCmd(), a.csvCmd(), a.inspectCmd(), a.versionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Encoding = a.encoding
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Logging, a.verbose, a.stderr)
	if err != nil {
		return &usageError{err: err}
	}
	a.log = log
	return nil
}

// registry returns the decoders to apply, or nil when raw output is
// wanted.
func (a *app) registry() (*decoders.Registry, error) {
	if a.cfg.Raw {
		return nil, nil
	}
	reg := decoders.Default()
	if a.cfg.Decoders == "" {
		return reg, nil
	}
	f, err := os.Open(a.cfg.Decoders)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	extra, err := decoders.LoadYAML(f)
	if err != nil {
		return nil, err
	}
	reg.Merge(extra)
	return reg, nil
}

// openOne decodes a single document named by path, "-" meaning stdin.
func (a *app) openOne(path string) (*fixfmt.Document, error) {
	policy, err := a.cfg.DuplicatePolicy()
	if err != nil {
		return nil, &usageError{err: err}
	}
	opts := &fixfmt.Options{Encoding: a.cfg.Encoding, Duplicates: policy, Logger: a.log}
	if path == "-" {
		content, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		opts.FileContents = content
		path = "stdin"
	}
	return fixfmt.OpenDocument(path, opts)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, version)
			return nil
		},
	}
}
