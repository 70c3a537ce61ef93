package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-classnames/internal/classname"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/log"
)

func testLogger(t *testing.T) *log.CslLogger {
	t.Helper()
	logger, err := log.NewCslLoggerTo(io.Discard, false)
	require.NoError(t, err)
	return logger
}

func TestRank(t *testing.T) {
	t.Run("top list never drops a higher count", func(tt *testing.T) {
		all, top := Rank(map[string]int{"Foo": 2, "Bar": 2, "Baz": 1}, 2)
		require.Len(tt, all, 3)
		require.Len(tt, top, 2)
		for _, e := range top {
			assert.GreaterOrEqual(tt, e.Count, 1)
		}
		assert.Equal(tt, Entry{Name: "Baz", Count: 1}, all[2])
	})

	t.Run("ties broken by name ascending", func(tt *testing.T) {
		all, _ := Rank(map[string]int{"Zed": 3, "Alpha": 3, "Mid": 5}, 10)
		assert.Equal(tt, []Entry{{"Mid", 5}, {"Alpha", 3}, {"Zed", 3}}, all)
	})

	t.Run("top n larger than list", func(tt *testing.T) {
		all, top := Rank(map[string]int{"Foo": 1}, 20)
		assert.Equal(tt, all, top)
	})

	t.Run("empty table", func(tt *testing.T) {
		all, top := Rank(map[string]int{}, 5)
		assert.Empty(tt, all)
		assert.Empty(tt, top)
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Entry{{"Foo", 2}, {"Bar", 1}}))
	assert.Equal(t, "class name, occurrences\nFoo, 2\nBar, 1\n", buf.String())
}

func TestWriteCSVKeepsNamesVerbatim(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Entry{{Name: "A,b", Count: 1}, {Name: " Lead", Count: 1}}))
	assert.Equal(t, "class name, occurrences\nA,b, 1\n Lead, 1\n", buf.String())
}

func TestCSVSink(t *testing.T) {
	ctx := context.Background()
	all := []Entry{{"Foo", 2}, {"Bar", 2}, {"Baz", 1}}

	t.Run("writes both files", func(tt *testing.T) {
		sink := &CSVSink{Dir: filepath.Join(tt.TempDir(), "results"), AllFile: "all-names.csv", MostUsedFile: "most-used.csv"}
		require.NoError(tt, sink.Write(ctx, all, all[:2]))

		full, err := os.ReadFile(sink.AllPath())
		require.NoError(tt, err)
		assert.Equal(tt, "class name, occurrences\nFoo, 2\nBar, 2\nBaz, 1\n", string(full))

		most, err := os.ReadFile(sink.MostUsedPath())
		require.NoError(tt, err)
		assert.Equal(tt, "class name, occurrences\nFoo, 2\nBar, 2\n", string(most))
	})

	t.Run("gzips the full listing", func(tt *testing.T) {
		sink := &CSVSink{Dir: tt.TempDir(), AllFile: "all-names.csv", MostUsedFile: "most-used.csv", Compress: true}
		require.NoError(tt, sink.Write(ctx, all, all[:1]))
		assert.Equal(tt, "all-names.csv.gz", filepath.Base(sink.AllPath()))

		f, err := os.Open(sink.AllPath())
		require.NoError(tt, err)
		defer f.Close()
		zr, err := gzip.NewReader(f)
		require.NoError(tt, err)
		content, err := io.ReadAll(zr)
		require.NoError(tt, err)
		assert.Equal(tt, "class name, occurrences\nFoo, 2\nBar, 2\nBaz, 1\n", string(content))
	})
}

type failingSink struct{}

func (failingSink) Name() string { return "failing" }

func (failingSink) Write(ctx context.Context, all, top []Entry) error {
	return errors.New("disk full")
}

type recordingSink struct {
	all, top []Entry
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(ctx context.Context, all, top []Entry) error {
	s.all, s.top = all, top
	return nil
}

type fakeSaver struct {
	rows []model.NameCount
}

func (f *fakeSaver) SaveRanking(ctx context.Context, rows []model.NameCount) error {
	f.rows = rows
	return nil
}

func TestExporter(t *testing.T) {
	table := classname.NewTable()
	table.Merge(map[string]int{"Foo": 2, "Bar": 2, "Baz": 1})

	t.Run("failing sink does not stop the others", func(tt *testing.T) {
		rec := &recordingSink{}
		exporter := NewExporter(testLogger(tt), 2, failingSink{}, rec, &LogSink{Logger: testLogger(tt)})

		report, err := exporter.Export(context.Background(), table)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "disk full")
		assert.Len(tt, report.Top, 2)
		assert.Equal(tt, report.All, rec.all)
		assert.Equal(tt, report.Top, rec.top)
	})

	t.Run("db sink receives the full ranking", func(tt *testing.T) {
		saver := &fakeSaver{}
		exporter := NewExporter(testLogger(tt), 1, &DBSink{Saver: saver})

		_, err := exporter.Export(context.Background(), table)
		require.NoError(tt, err)
		assert.Equal(tt, []model.NameCount{
			{Name: "Bar", Occurrences: 2},
			{Name: "Foo", Occurrences: 2},
			{Name: "Baz", Occurrences: 1},
		}, saver.rows)
	})
}
