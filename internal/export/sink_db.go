package export

import (
	"context"

	"github.com/thep200/github-classnames/internal/model"
)

// RankingSaver stores a full ranking.
type RankingSaver interface {
	SaveRanking(ctx context.Context, rows []model.NameCount) error
}

// DBSink stores the full ranking through a RankingSaver such as
// *model.ClassName.
type DBSink struct {
	Saver RankingSaver
}

func (s *DBSink) Name() string {
	return "mysql"
}

func (s *DBSink) Write(ctx context.Context, all, top []Entry) error {
	rows := make([]model.NameCount, 0, len(all))
	for _, e := range all {
		rows = append(rows, model.NameCount{Name: e.Name, Occurrences: e.Count})
	}
	return s.Saver.SaveRanking(ctx, rows)
}
