package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/thep200/github-classnames/cfg"
)

const csvHeader = "class name, occurrences\n"

// CSVSink writes the full ranking and the top list as two files. With
// Compress the full listing is gzipped.
type CSVSink struct {
	Dir          string
	AllFile      string
	MostUsedFile string
	Compress     bool
}

func NewCSVSink(config *cfg.Config) *CSVSink {
	return &CSVSink{
		Dir:          config.Export.Dir,
		AllFile:      config.Export.AllFile,
		MostUsedFile: config.Export.MostUsedFile,
		Compress:     config.Export.Compress,
	}
}

func (s *CSVSink) Name() string {
	return "csv"
}

// AllPath is where the full listing lands.
func (s *CSVSink) AllPath() string {
	path := filepath.Join(s.Dir, s.AllFile)
	if s.Compress {
		path += ".gz"
	}
	return path
}

func (s *CSVSink) MostUsedPath() string {
	return filepath.Join(s.Dir, s.MostUsedFile)
}

func (s *CSVSink) Write(ctx context.Context, all, top []Entry) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.Dir, err)
	}
	if err := writeCSVFile(s.AllPath(), all, s.Compress); err != nil {
		return err
	}
	return writeCSVFile(s.MostUsedPath(), top, false)
}

func writeCSVFile(path string, entries []Entry, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	var zw *gzip.Writer
	if compress {
		zw = gzip.NewWriter(f)
		w = zw
	}

	if err := WriteCSV(w, entries); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress %s: %w", path, err)
		}
	}
	return nil
}

// WriteCSV writes the header row and one "name, count" row per entry.
// Names are written verbatim; a comma or newline in a name is not escaped.
func WriteCSV(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s, %d\n", e.Name, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}
