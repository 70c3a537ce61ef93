// Package aggregate folds repository scan events into running class name
// totals and flushes them to storage in batches.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/log"
)

// CountAdder adds counts on top of stored totals, like *model.ClassName.
type CountAdder interface {
	AddCounts(ctx context.Context, counts map[string]int) error
}

type Batcher struct {
	Logger       log.Logger
	Store        CountAdder
	BatchSize    int
	BatchTimeout time.Duration
	messages     chan model.RepoScannedMessage
}

func NewBatcher(logger log.Logger, store CountAdder, batchSize int, batchTimeout time.Duration) *Batcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}
	return &Batcher{
		Logger:       logger,
		Store:        store,
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		messages:     make(chan model.RepoScannedMessage, batchSize*2),
	}
}

// Handle decodes one message and queues it. It matches kafka.Handler.
func (b *Batcher) Handle(ctx context.Context, value []byte) error {
	var msg model.RepoScannedMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal repo scan message: %w", err)
	}

	select {
	case b.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run flushes whenever BatchSize messages are queued or BatchTimeout passes,
// and once more when ctx is done.
func (b *Batcher) Run(ctx context.Context) {
	var batch []model.RepoScannedMessage
	timer := time.NewTimer(b.BatchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			b.drain(&batch)
			b.flush(context.WithoutCancel(ctx), batch)
			return

		case msg := <-b.messages:
			batch = append(batch, msg)
			if len(batch) >= b.BatchSize {
				b.flush(ctx, batch)
				batch = nil
				timer.Reset(b.BatchTimeout)
			}

		case <-timer.C:
			b.flush(ctx, batch)
			batch = nil
			timer.Reset(b.BatchTimeout)
		}
	}
}

func (b *Batcher) drain(batch *[]model.RepoScannedMessage) {
	for {
		select {
		case msg := <-b.messages:
			*batch = append(*batch, msg)
		default:
			return
		}
	}
}

// Merge sums the class name counts of a batch.
func Merge(batch []model.RepoScannedMessage) map[string]int {
	total := make(map[string]int)
	for _, msg := range batch {
		for name, n := range msg.ClassNames {
			if n > 0 {
				total[name] += n
			}
		}
	}
	return total
}

func (b *Batcher) flush(ctx context.Context, batch []model.RepoScannedMessage) {
	if len(batch) == 0 {
		return
	}

	counts := Merge(batch)
	b.Logger.Info(ctx, "Processing batch of %d repositories, %d class names", len(batch), len(counts))
	err := b.Store.AddCounts(ctx, counts)
	if err != nil {
		b.Logger.Warn(ctx, "Failed to save batch of %d repositories, retrying once: %v", len(batch), err)
		err = b.Store.AddCounts(ctx, counts)
	}
	if err != nil {
		// Offsets are already committed, so these counts cannot be re-read.
		b.Logger.Error(ctx, "Dropped batch of %d repositories (%d class names) after retry: %v", len(batch), len(counts), err)
		return
	}
	b.Logger.Debug(ctx, "Successfully saved batch of %d repositories", len(batch))
}
