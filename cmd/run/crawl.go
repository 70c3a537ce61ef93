package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/crawler"
	"github.com/thep200/github-classnames/internal/export"
	githubapi "github.com/thep200/github-classnames/internal/github_api"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/pkg/db"
	"github.com/thep200/github-classnames/pkg/kafka"
	"github.com/thep200/github-classnames/pkg/log"
)

type crawlOptions struct {
	configFile string
	watch      bool
}

func newCrawlCmd() *cobra.Command {
	opts := &crawlOptions{}

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Walk GitHub users and export the most used Java class names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := cfg.NewViperLoader(opts.configFile, opts.watch)
			if err != nil {
				return err
			}
			if err := loader.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			config, err := loader.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runCrawl(ctx, loader, config)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default cfg/yaml/mode.yaml)")
	flags.BoolVar(&opts.watch, "watch", false, "reload the config file when it changes")
	flags.String("token", "", "GitHub API token")
	flags.String("branch", cfg.DefaultBranch, "branch whose tree is read")
	flags.BoolP("verbose", "v", false, "log every API call")
	flags.Int64("start-id", 0, "user id to start after")
	flags.Int64("end-id", cfg.DefaultEndID, "user id to stop at")
	flags.Int("most-used", cfg.DefaultMostUsed, "length of the most used list")
	flags.StringP("out", "o", cfg.DefaultExportDir, "directory the CSV files are written to")
	return cmd
}

func runCrawl(ctx context.Context, loader *cfg.ViperLoader, config *cfg.Config) (err error) {
	logger, err := log.NewCslLogger()
	if err != nil {
		return err
	}
	logger.SetVerbose(config.Crawl.Verbose)

	caller, err := githubapi.NewCaller(logger, config)
	if err != nil {
		return err
	}
	loader.RegisterConfigChangeCallback(func(c *cfg.Config) {
		logger.SetVerbose(c.Crawl.Verbose)
		caller.SetVerbose(c.Crawl.Verbose)
	})
	resolver := githubapi.NewResolver(logger, config, caller)

	sinks := []export.Sink{export.NewCSVSink(config), &export.LogSink{Logger: logger}}
	if config.Mysql.Enabled {
		mysql, err := db.NewMysql(config)
		if err != nil {
			return err
		}
		defer mysql.Close()

		classNameMd, _ := model.NewClassName(config, logger, mysql)
		if err := mysql.Migrate(classNameMd); err != nil {
			return err
		}
		sinks = append(sinks, &export.DBSink{Saver: classNameMd})
	}
	exporter := export.NewExporter(logger, config.Crawl.MostUsed, sinks...)

	orchestrator, err := crawler.NewOrchestrator(logger, config, caller, resolver, exporter)
	if err != nil {
		return err
	}
	if config.Kafka.Enabled {
		producer, perr := kafka.NewProducer(config, logger, config.Kafka.Producer.TopicRepo)
		if perr != nil {
			return perr
		}
		defer func() {
			err = errors.Join(err, producer.Close())
		}()
		orchestrator.WithPublisher(producer)
	}

	logger.Info(ctx, "Starting GitHub class name crawler with %s", config)
	var c crawler.Crawler = orchestrator
	result, err := c.Crawl(ctx)
	logger.Info(ctx, "Used %d API calls", caller.Calls())
	if err != nil {
		logger.Error(ctx, "Failed after %v: %v", result.Duration, err)
		return err
	}
	logger.Info(ctx, "Successfully!")
	return nil
}
