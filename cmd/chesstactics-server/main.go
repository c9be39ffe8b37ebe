// Command chesstactics-server runs the HTTP ingest/query API alongside the
// indexing worker, sharing one feature store connection pool between them
// (spec §5's shared-resource policy).
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"

	"github.com/atinm/chesstactics/internal/config"
	"github.com/atinm/chesstactics/internal/fetcher"
	"github.com/atinm/chesstactics/internal/httpapi"
	"github.com/atinm/chesstactics/internal/replayer"
	"github.com/atinm/chesstactics/internal/store"
	"github.com/atinm/chesstactics/internal/worker"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatalf("opening store: %s", err.Error())
	}
	defer db.Close()

	if err := store.Bootstrap(db); err != nil {
		log.Fatalf("bootstrapping schema: %s", err.Error())
	}

	fs := store.NewFeatureStore(db)
	queue := worker.NewQueue(cfg.QueueCapacity)
	w := worker.New(queue, fs, fetcher.NewChessComFetcher(), replayer.NewSimpleReplayer(), cfg.WorkerFlushEveryNGames)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go w.Run(ctx)

	srv := httpapi.NewServer(fs, queue)
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Routes()}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Println("chesstactics-server listening on", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
