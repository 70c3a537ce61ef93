package model

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/pkg/db"
	"github.com/thep200/github-classnames/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxNameLength = 255
	batchSize     = 500
)

// NameCount is one class name with its occurrences.
type NameCount struct {
	Name        string `json:"name"`
	Occurrences int    `json:"occurrences"`
}

type ClassName struct {
	Model
	// Binary collation: names that differ only in case or accents are distinct.
	Name        string `json:"name" gorm:"column:name;type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex"`
	Occurrences int    `json:"occurrences" gorm:"column:occurrences;not null;default:0;index"`
}

func NewClassName(config *cfg.Config, logger log.Logger, db *db.Mysql) (*ClassName, error) {
	className := &ClassName{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return className, nil
}

func (c *ClassName) TableName() string {
	return "class_name_counts"
}

// toRecords drops empty rows. Names longer than the column are returned in
// tooLong instead of being cut, so two names never share a key.
func toRecords(rows []NameCount, now time.Time) (records []ClassName, tooLong []string) {
	records = make([]ClassName, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" || row.Occurrences <= 0 {
			continue
		}
		if !FitsColumn(row.Name, maxNameLength) {
			tooLong = append(tooLong, row.Name)
			continue
		}
		records = append(records, ClassName{
			Model:       Model{CreatedAt: now, UpdatedAt: now},
			Name:        row.Name,
			Occurrences: row.Occurrences,
		})
	}
	return records, tooLong
}

// RowsFromCounts turns a count map into rows ordered by name.
func RowsFromCounts(counts map[string]int) []NameCount {
	rows := make([]NameCount, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, NameCount{Name: name, Occurrences: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// SaveRanking stores the final count of every row, replacing earlier values.
func (c *ClassName) SaveRanking(ctx context.Context, rows []NameCount) error {
	return c.upsert(ctx, rows, clause.AssignmentColumns([]string{"occurrences", "updated_at"}))
}

// AddCounts adds counts on top of the stored values.
func (c *ClassName) AddCounts(ctx context.Context, counts map[string]int) error {
	return c.upsert(ctx, RowsFromCounts(counts), clause.Assignments(map[string]interface{}{
		"occurrences": gorm.Expr("occurrences + VALUES(occurrences)"),
		"updated_at":  gorm.Expr("VALUES(updated_at)"),
	}))
}

func (c *ClassName) upsert(ctx context.Context, rows []NameCount, updates clause.Set) error {
	records, tooLong := toRecords(rows, time.Now())
	for _, name := range tooLong {
		c.Logger.Warn(ctx, "Skipping class name of %d characters, longer than %d: %.40s...", utf8.RuneCountInString(name), maxNameLength, name)
	}
	if len(records) == 0 {
		return nil
	}

	db, err := c.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: updates,
		}).CreateInBatches(records, batchSize)

		if result.Error != nil {
			return fmt.Errorf("failed to batch upsert class names: %w", result.Error)
		}

		c.Logger.Debug(ctx, "Upserted %d class names", len(records))
		return nil
	})
}

// List returns one page of the ranking and the number of matching names.
func (c *ClassName) List(ctx context.Context, offset, limit int, search string) ([]NameCount, int64, error) {
	db, err := c.Mysql.Db()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get database connection: %w", err)
	}

	query := db.WithContext(ctx).Model(&ClassName{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count class names: %w", err)
	}

	var records []ClassName
	if err := query.Order("occurrences DESC").Order("name ASC").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list class names: %w", err)
	}

	rows := make([]NameCount, 0, len(records))
	for _, r := range records {
		rows = append(rows, NameCount{Name: r.Name, Occurrences: r.Occurrences})
	}
	return rows, total, nil
}
