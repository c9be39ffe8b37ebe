// Command chesstactics-indexer runs one indexing request to completion and
// exits, for scripted/cron use without standing up the HTTP API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/atinm/chesstactics/internal/config"
	"github.com/atinm/chesstactics/internal/fetcher"
	"github.com/atinm/chesstactics/internal/replayer"
	"github.com/atinm/chesstactics/internal/store"
	"github.com/atinm/chesstactics/internal/worker"
)

func main() {
	player := flag.String("player", "", "chess.com username to index")
	platform := flag.String("platform", "chess.com", "platform to fetch from")
	startMonth := flag.String("start", "", "first month to index, YYYY-MM")
	endMonth := flag.String("end", "", "last month to index, YYYY-MM")

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if *player == "" || *startMonth == "" || *endMonth == "" {
		log.Fatal("indexer: -player, -start, and -end are required")
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
	queue := worker.NewQueue(1)
	w := worker.New(queue, fs, fetcher.NewChessComFetcher(), replayer.NewSimpleReplayer(), cfg.WorkerFlushEveryNGames)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	id := uuid.NewString()
	req := store.IndexingRequest{
		ID: id, Player: *player, Platform: *platform,
		StartMonth: *startMonth, EndMonth: *endMonth, Status: store.StatusPending,
	}
	if err := fs.CreateIndexingRequest(ctx, req); err != nil {
		log.Fatalf("creating request: %s", err.Error())
	}
	queue.Enqueue(worker.IndexMessage{
		RequestID: id, Player: *player, Platform: *platform,
		StartMonth: *startMonth, EndMonth: *endMonth,
	})

	for {
		current, err := fs.GetIndexingRequest(ctx, id)
		if err != nil {
			log.Fatalf("polling request: %s", err.Error())
		}
		if current.Status == store.StatusCompleted {
			log.Printf("indexer: completed, %d games indexed", current.GamesIndexed)
			break
		}
		if current.Status == store.StatusFailed {
			log.Fatalf("indexer: failed: %s", current.ErrorMessage)
		}
		time.Sleep(time.Second)
	}
	cancel()
}
