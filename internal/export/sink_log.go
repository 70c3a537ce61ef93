package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/thep200/github-classnames/pkg/log"
)

// LogSink prints the top list.
type LogSink struct {
	Logger log.Logger
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Write(ctx context.Context, all, top []Entry) error {
	parts := make([]string, 0, len(top))
	for _, e := range top {
		parts = append(parts, fmt.Sprintf("(%s, %d)", e.Name, e.Count))
	}
	s.Logger.Info(ctx, "Most used class names out of %d: [%s]", len(all), strings.Join(parts, ", "))
	return nil
}
