package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/aggregate"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/db"
	"github.com/thep200/github-classnames/pkg/kafka"
	"github.com/thep200/github-classnames/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "config file (default cfg/yaml/mode.yaml)")
	batchSize := flag.Int("batch", 100, "messages per database write")
	batchTimeout := flag.Duration("flush", 5*time.Second, "longest wait before a partial batch is written")
	flag.Parse()

	// Load configuration
	loader, err := cfg.NewViperLoader(*configFile, false)
	if err != nil {
		fmt.Printf("Failed to create config loader: %v\n", err)
		os.Exit(1)
	}
	config, err := loader.WithoutToken().Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := log.NewCslLogger()
	logger.SetVerbose(config.Crawl.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger, *batchSize, *batchTimeout); err != nil {
		logger.Error(ctx, "Consumer failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Consumer shut down gracefully")
}

func run(ctx context.Context, config *cfg.Config, logger *log.CslLogger, batchSize int, batchTimeout time.Duration) error {
	mysql, err := db.NewMysql(config)
	if err != nil {
		return err
	}
	defer mysql.Close()

	classNameMd, _ := model.NewClassName(config, logger, mysql)
	if err := mysql.Migrate(classNameMd); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	consumer, err := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicRepo, config.Kafka.GroupID)
	if err != nil {
		return err
	}
	defer consumer.Close()

	batcher := aggregate.NewBatcher(logger, classNameMd, batchSize, batchTimeout)
	consumer.RegisterHandler(model.RepoScannedKey, batcher.Handle)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		batcher.Run(ctx)
	}()

	logger.Info(ctx, "Repository scan consumer started")
	err = consumer.Start(ctx)
	wg.Wait()
	return err
}
