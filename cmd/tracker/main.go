package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog/log"

	tracker "github.com/calvingit/performance-tracker"
	"github.com/calvingit/performance-tracker/internal/frames"
	"github.com/calvingit/performance-tracker/internal/httpserver"
	"github.com/calvingit/performance-tracker/internal/logutil"
)

var release string

func main() {
	var config ServiceConfig
	if err := cleanenv.ReadEnv(&config); err != nil {
		log.Fatal().Err(err).Msg("error reading config")
	}
	logutil.ConfigureLogger(config.PrettyLog)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:     config.SentryDSN,
		Release: release,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}
	defer sentry.Flush(5 * time.Second)

	// A synthetic frame source stands in for a real host scheduler: frames
	// at the configured rate, with an occasional slow one to exercise the
	// jank pipeline.
	sched := &frames.TickerScheduler{
		Rate:   config.FrameRate,
		Sample: syntheticFrame,
	}

	t := tracker.New(sched, tracker.Config{
		MaxRecords:      config.MaxRecords,
		FrameBufferSize: config.FrameBufferSize,
		ReportInterval:  config.ReportInterval,
	})
	t.StartMonitoring("main")
	defer t.StopMonitoring()

	srv := httpserver.New(t.Store(), t.Collector())
	router, err := srv.NewRouter()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the router")
	}

	server := http.Server{
		Addr:    ":" + config.Port,
		Handler: sentryhttp.New(sentryhttp.Options{}).Handle(router),
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(cctx); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	log.Info().Str("port", config.Port).Msg("serving telemetry queries")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sentry.CaptureException(err)
		log.Err(err).Msg("server failed")
	}

	<-waitForShutdown
}

func syntheticFrame() frames.Timing {
	build := time.Duration(3+rand.Intn(6)) * time.Millisecond
	raster := time.Duration(3+rand.Intn(6)) * time.Millisecond
	if rand.Intn(100) == 0 {
		build += 30 * time.Millisecond
	}
	return frames.Timing{
		BuildDuration:  build,
		RasterDuration: raster,
		TotalSpan:      build + raster,
	}
}
