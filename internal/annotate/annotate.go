// Package annotate splices generated descriptions into source documents and
// drives single-file and batch runs.
package annotate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"psannotate/internal/extract"
)

// Describer produces a description for one function's source text. It must
// not fail: implementations return a fallback description instead.
type Describer interface {
	Describe(ctx context.Context, functionText string) string
}

// Summary counts the files attempted during one run.
// A fallback description is not a file failure; only files that could not be
// read, annotated, or written land in FailedFiles.
type Summary struct {
	Attempted   int
	Succeeded   int
	Failed      int
	FailedFiles []string
}

// Annotator annotates documents one at a time, each function's description
// requested and spliced before the next is touched.
type Annotator struct {
	desc      Describer
	extension string
	logger    *slog.Logger

	// Progress, when set, is called after each file with its path relative
	// to the source root and the error, if any.
	Progress func(rel string, err error)
}

// New creates an Annotator that processes files carrying extension.
func New(d Describer, extension string, logger *slog.Logger) *Annotator {
	return &Annotator{
		desc:      d,
		extension: extension,
		logger:    logger.With("component", "annotator"),
	}
}

// Document annotates raw source text, returning the annotated text and the
// number of functions found. A document with no functions is returned
// unchanged.
func (a *Annotator) Document(ctx context.Context, doc string) (string, int, error) {
	spans := extract.Functions(doc)
	if len(spans) == 0 {
		return doc, 0, nil
	}

	var out strings.Builder
	out.Grow(len(doc) + len(spans)*64)
	last := 0
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		desc := a.desc.Describe(ctx, span.Text)
		a.logger.Debug("annotated function", "name", span.Name, "description_length", len(desc))

		out.WriteString(doc[last:span.Start])
		out.WriteString("<#\n Description: ")
		out.WriteString(desc)
		out.WriteString("\n#>\n")
		out.WriteString(span.Text)
		last = span.End
	}
	out.WriteString(doc[last:])
	return out.String(), len(spans), nil
}

// File reads src, annotates it, and writes the result to dst as UTF-8,
// creating parent directories as needed. The write is a whole-file
// overwrite-or-create.
func (a *Annotator) File(ctx context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	annotated, n, err := a.Document(ctx, string(data))
	if err != nil {
		return err
	}
	a.logger.Info("annotated file", "source", src, "functions", n)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(annotated), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// Single annotates one file and reports it as a one-entry Summary.
func (a *Annotator) Single(ctx context.Context, src, dst string) Summary {
	var s Summary
	s.Attempted = 1
	if err := a.File(ctx, src, dst); err != nil {
		a.logger.Error("file failed", "source", src, "error", err)
		s.Failed = 1
		s.FailedFiles = []string{filepath.Base(src)}
		a.report(filepath.Base(src), err)
		return s
	}
	s.Succeeded = 1
	a.report(filepath.Base(src), nil)
	return s
}

// Tree annotates every file under srcDir whose extension matches, writing
// each result to the mirrored path under dstDir. A failing file is recorded
// and the walk continues; only context cancellation stops the run early.
func (a *Annotator) Tree(ctx context.Context, srcDir, dstDir string) (Summary, error) {
	var s Summary
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), a.extension) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		s.Attempted++
		if ferr := a.File(ctx, path, filepath.Join(dstDir, rel)); ferr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("file failed", "source", path, "error", ferr)
			s.Failed++
			s.FailedFiles = append(s.FailedFiles, rel)
			a.report(rel, ferr)
			return nil
		}
		s.Succeeded++
		a.report(rel, nil)
		return nil
	})
	return s, err
}

func (a *Annotator) report(rel string, err error) {
	if a.Progress != nil {
		a.Progress(rel, err)
	}
}
