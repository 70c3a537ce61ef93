package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/github-classnames/internal/classname"
	"github.com/thep200/github-classnames/pkg/log"
)

// Sink receives the finished ranking.
type Sink interface {
	Name() string
	Write(ctx context.Context, all, top []Entry) error
}

// Report is what an export produced.
type Report struct {
	All []Entry
	Top []Entry
}

type Exporter struct {
	Logger log.Logger
	TopN   int
	Sinks  []Sink
}

func NewExporter(logger log.Logger, topN int, sinks ...Sink) *Exporter {
	return &Exporter{
		Logger: logger,
		TopN:   topN,
		Sinks:  sinks,
	}
}

// Export ranks the table and hands it to every sink. A failing sink does
// not stop the others; their errors are joined.
func (e *Exporter) Export(ctx context.Context, table *classname.Table) (*Report, error) {
	all, top := Rank(table.Snapshot(), e.TopN)
	report := &Report{All: all, Top: top}

	var errs []error
	for _, sink := range e.Sinks {
		if err := sink.Write(ctx, all, top); err != nil {
			e.Logger.Error(ctx, "Export to %s failed: %v", sink.Name(), err)
			errs = append(errs, fmt.Errorf("export to %s: %w", sink.Name(), err))
			continue
		}
		e.Logger.Debug(ctx, "Exported %d class names to %s", len(all), sink.Name())
	}
	return report, errors.Join(errs...)
}
