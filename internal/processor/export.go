// Package processor converts survey point files into export documents.
package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/survey"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
)

// Exporter writes every input file to OutDir once per format. Files are
// handled one after another.
type Exporter struct {
	Codec      *survey.Codec
	Projection geodesy.ProjectionConfig
	Formats    []survey.Format
	OutDir     string
	Minify     bool
	Force      bool

	minifier *minify.M
}

// Summary counts the work done by Run.
type Summary struct {
	Files   int
	Failed  int
	Points  int
	Skipped int
	Written int
}

// NewExporter builds an Exporter from the export and projection sections of
// cfg.
func NewExporter(cfg *config.Config, codec *survey.Codec) (*Exporter, error) {
	proj, err := cfg.Projection.Resolve()
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}

	names := cfg.Export.Formats
	if len(names) == 0 {
		names = []string{string(survey.FormatText)}
	}
	formats := make([]survey.Format, 0, len(names))
	for _, name := range names {
		f, err := survey.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}

	return &Exporter{
		Codec:      codec,
		Projection: proj,
		Formats:    formats,
		OutDir:     cfg.Export.OutDir,
		Minify:     cfg.Export.Minify,
		minifier:   NewMinifier(),
	}, nil
}

// Run exports every input. A failing file is logged and counted; the
// returned error joins all failures.
func (e *Exporter) Run(inputs []string) (Summary, error) {
	var sum Summary
	var errs []error

	for _, input := range inputs {
		sum.Files++

		res, written, err := e.ExportFile(input)
		sum.Points += len(res.Points)
		sum.Skipped += res.Skipped
		sum.Written += written

		if err != nil {
			sum.Failed++
			errs = append(errs, err)
			log.Error().Err(err).Str("input", input).Msg("Failed to export file")
			continue
		}

		log.Info().
			Str("input", input).
			Int("points", len(res.Points)).
			Int("skipped", res.Skipped).
			Int("written", written).
			Msg("File exported")
	}

	return sum, errors.Join(errs...)
}

// ExportFile parses one point file and writes one document per format next
// to its base name in OutDir. Existing documents are kept unless Force is set.
func (e *Exporter) ExportFile(input string) (survey.ParseResult, int, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return survey.ParseResult{}, 0, fmt.Errorf("read %s: %w", input, err)
	}

	res := e.Codec.Parse(string(data), e.Projection)
	if len(res.Points) == 0 {
		return res, 0, fmt.Errorf("%s: no valid records found", input)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	written := 0

	for _, f := range e.Formats {
		dest := filepath.Join(e.OutDir, base+f.Ext())

		if _, err := os.Stat(dest); err == nil && !e.Force {
			log.Debug().Str("path", dest).Msg("Export exists, skipping")
			continue
		}

		doc, err := e.encode(f, res.Points)
		if err != nil {
			return res, written, fmt.Errorf("%s: encode %s: %w", input, f, err)
		}

		if err := saveDocument(e.OutDir, dest, doc); err != nil {
			return res, written, fmt.Errorf("%s: write %s: %w", input, dest, err)
		}
		written++
	}

	return res, written, nil
}

func (e *Exporter) encode(f survey.Format, points []survey.Point) ([]byte, error) {
	doc, err := e.Codec.Encode(f, points, e.Projection)
	if err != nil || !e.Minify {
		return doc, err
	}
	if e.minifier == nil {
		e.minifier = NewMinifier()
	}
	return Minify(e.minifier, f, doc)
}

// saveDocument writes data to path, creating dir first.
func saveDocument(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = f.Write(data)
	return err
}
