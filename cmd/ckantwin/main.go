// ckantwin is a stand-in CKAN site serving the tweet snippet, the tweet
// endpoint and the popup suppression endpoint. Point confirmtweet at it with
// --base-url http://localhost:5050.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikequentel/confirmtweet/internal/twin"
)

var (
	port    = flag.Int("port", 5050, "HTTP listen port")
	mode    = flag.String("mode", "debug", "tweet endpoint behaviour: debug, accept, empty, null or reject:<reason>")
	latency = flag.Duration("latency", 0, "delay added to every response")
	verbose = flag.Bool("verbose", false, "log every request")
)

type datasetFlags []twin.Dataset

func (d *datasetFlags) String() string { return fmt.Sprint(len(*d)) }

func (d *datasetFlags) Set(s string) error {
	ds, err := twin.ParseDataset(s)
	if err != nil {
		return err
	}
	*d = append(*d, ds)
	return nil
}

func main() {
	log.SetFlags(0)

	var datasets datasetFlags
	flag.Var(&datasets, "dataset", "seed dataset id=title|author|resources (repeatable)")
	flag.Parse()

	m, err := twin.ParseMode(*mode)
	if err != nil {
		log.Fatalf("mode: %v", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	srv := twin.New(m, logger)
	if len(datasets) == 0 {
		datasets = append(datasets, twin.Dataset{ID: "sample-dataset", Title: "Sample dataset", Author: "CKAN Admin", Resources: 2})
	}
	for _, d := range datasets {
		srv.AddDataset(d)
	}

	if err := serve(srv.Handler(), logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func serve(h http.Handler, logger *slog.Logger) error {
	if *latency > 0 {
		h = delay(h, *latency)
	}
	addr := fmt.Sprintf(":%d", *port)
	hs := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second + *latency,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("ckantwin ready", "addr", addr, "mode", *mode)
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down ckantwin")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(ctx)
}

// delay holds every response back by d, or until the client gives up.
func delay(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(d):
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
		}
	})
}
