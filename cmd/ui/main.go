package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/internal/model"
	"github.com/thep200/github-classnames/internal/ui"
	"github.com/thep200/github-classnames/pkg/db"
	applog "github.com/thep200/github-classnames/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "config file (default cfg/yaml/mode.yaml)")
	port := flag.Int("port", 0, "port for the UI server to listen on (default ui.port)")
	flag.Parse()

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
	if *port == 0 {
		*port = config.Ui.Port
	}

	ctx := context.Background()
	logger, _ := applog.NewCslLogger()
	mysql, _ := db.NewMysql(config)
	defer mysql.Close()
	classNameMd, _ := model.NewClassName(config, logger, mysql)

	server, err := ui.NewServer(logger, config, classNameMd, *port)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	// Run server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}
	logger.Info(ctx, "Server shut down gracefully")
}
