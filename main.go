package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leadpilot/filter-engine/pkg/common"
	"github.com/leadpilot/filter-engine/pkg/config"
	"github.com/leadpilot/filter-engine/pkg/executor"
	"github.com/leadpilot/filter-engine/pkg/logger"
	"github.com/leadpilot/filter-engine/pkg/persistance"
	"github.com/leadpilot/filter-engine/pkg/server"
	"github.com/leadpilot/filter-engine/pkg/suggest"
	"github.com/leadpilot/filter-engine/pkg/tracking"
)

var configPath = flag.String("config", "", "path to a yaml config file")

func main() {
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zapLog, err := logger.New(conf.Env, conf.Logging.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zapLog.Sync()

	var storage persistance.Storage
	if conf.Redis.Addr != "" {
		storage = persistance.NewRedisStorage(conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB, conf.Redis.TTL)
		zapLog.Info("using redis snapshot storage", zap.String("addr", conf.Redis.Addr))
	} else {
		storage = persistance.NewMemoryStorage()
		zapLog.Warn("no redis configured, filter snapshots are process-local")
	}

	var track tracking.Tracking
	var rabbit *tracking.RabbitTracking
	if conf.Rabbit.Url != "" {
		rabbit, err = tracking.NewRabbitTracking(conf.Rabbit.Url, zapLog)
		if err != nil {
			zapLog.Warn("rabbit tracking disabled", zap.Error(err))
		} else {
			track = rabbit
		}
	}

	httpClient := &http.Client{Timeout: conf.Backend.Timeout}
	ws := &server.WebServer{
		Persist:  persistance.NewAdapter(storage, zapLog),
		Executor: executor.NewClient(conf.Backend.BaseURL, httpClient, conf.Backend.Timeout),
		Tracking: track,
		Log:      zapLog,
		SourceFor: func(field, entity string) suggest.Source {
			if field == "contact" {
				return suggest.NewContactSource(httpClient, conf.Backend.BaseURL, entity)
			}
			return suggest.NewLocationSource(httpClient, conf.Backend.BaseURL, entity)
		},
		Suggest: server.SuggestOptions{
			Debounce:  conf.Suggest.Debounce,
			MinPrefix: conf.Suggest.MinPrefix,
			CacheSize: conf.Suggest.CacheSize,
		},
	}

	stopEviction := ws.StartEviction(10*time.Minute, time.Hour)

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: ws.MakeRouter(),
	}
	common.RunServerWithShutdown(srv, zapLog, 15*time.Second, 5*time.Second, func(_ context.Context) error {
		stopEviction()
		if rabbit != nil {
			return rabbit.Close()
		}
		return nil
	})
}
