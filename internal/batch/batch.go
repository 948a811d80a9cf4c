// Package batch decodes a set of documents concurrently.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sco1/anthro-tables/decoders"
	"github.com/sco1/anthro-tables/fixfmt"
)

// Input is one document to decode.
type Input struct {
	// Key names the document in results and output sheets.
	Key string

	// Path is the file to read. Content, when set, is used instead.
	Path    string
	Content []byte
}

// Result pairs an input with its decoded document, or the error that
// stopped it when errors are skipped.
type Result struct {
	Key      string
	Path     string
	Document *fixfmt.Document
	Err      error
}

// Options controls a batch run.
type Options struct {
	// Workers bounds concurrent documents. Values below 1 mean 1.
	Workers int

	// SkipErrors records a failed document on its Result and carries on
	// instead of cancelling the batch.
	SkipErrors bool

	Encoding   string
	Duplicates fixfmt.DuplicatePolicy

	// Decoders is applied to every table. Nil leaves the raw integers.
	Decoders *decoders.Registry

	Logger *zap.Logger
}

// Run decodes inputs and returns one Result per input, in input order.
//
// Without SkipErrors the first failing document cancels the rest and its
// error is returned along with a nil result slice.
func Run(ctx context.Context, inputs []Input, opts Options) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Key: in.Key, Path: in.Path}

			doc, err := decode(in, opts, log.With(zap.String("document", in.Key)))
			if err != nil {
				if opts.SkipErrors {
					log.Warn("skipping document", zap.String("document", in.Key), zap.Error(err))
					results[i].Err = err
					return nil
				}
				return fmt.Errorf("%s: %w", in.Key, err)
			}
			results[i].Document = doc
			log.Info("decoded document",
				zap.String("document", in.Key),
				zap.Int("subjects", doc.Table.Len()),
				zap.Int("columns", len(doc.Table.Columns)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func decode(in Input, opts Options, log *zap.Logger) (*fixfmt.Document, error) {
	doc, err := fixfmt.OpenDocument(in.Path, &fixfmt.Options{
		Encoding:     opts.Encoding,
		Duplicates:   opts.Duplicates,
		FileContents: in.Content,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	if in.Key != "" {
		doc.Name = in.Key
	}
	if opts.Decoders != nil {
		if err := opts.Decoders.Apply(doc.Table); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Files returns an Input for each path, keyed by file name.
func Files(paths ...string) []Input {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		inputs = append(inputs, Input{Key: fixfmt.DocumentName(p), Path: p})
	}
	return inputs
}

// Discover lists the positional data files directly inside dir, in name
// order. Files that do not look like one are left out.
func Discover(dir string) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var inputs []Input
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		spec, err := fixfmt.InspectDocument(path, nil)
		if err != nil {
			return nil, err
		}
		if spec == "" {
			continue
		}
		inputs = append(inputs, Input{Key: fixfmt.DocumentName(path), Path: path})
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no positional data files found in %s", dir)
	}
	return inputs, nil
}
