package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/atinm/chesstactics/internal/chesserr"
	"github.com/atinm/chesstactics/internal/fetcher"
	"github.com/atinm/chesstactics/internal/motif"
	"github.com/atinm/chesstactics/internal/replayer"
	"github.com/atinm/chesstactics/internal/store"
)

// Worker is the single long-lived consumer of a Queue. It drives
// fetch -> replay -> extract -> upsert for every game in every month of an
// IndexingRequest's range, mutating the request's lifecycle row in
// FeatureStore as it goes (spec §4.9).
type Worker struct {
	queue    *Queue
	store    *store.FeatureStore
	fetcher  fetcher.Fetcher
	replayer replayer.Replayer

	// flushEvery is how often, in successfully-stored games, gamesIndexed
	// is persisted (spec §6 WORKER_FLUSH_EVERY_N_GAMES).
	flushEvery int
}

// New returns a Worker reading from queue and writing through fs.
func New(queue *Queue, fs *store.FeatureStore, f fetcher.Fetcher, r replayer.Replayer, flushEvery int) *Worker {
	if flushEvery <= 0 {
		flushEvery = 10
	}
	return &Worker{queue: queue, store: fs, fetcher: f, replayer: r, flushEvery: flushEvery}
}

// Run drains the queue until ctx is cancelled. Intended to run on its own
// goroutine, detached from any API request (spec §5's scheduling model).
func (w *Worker) Run(ctx context.Context) {
	for {
		msg, ok := w.queue.Dequeue(ctx)
		if !ok {
			return
		}
		w.process(ctx, msg)
	}
}

// process runs one IndexingRequest end to end. A request whose row has
// already been withdrawn (deleted) or is no longer PENDING is skipped
// rather than failed, per spec §5's cancellation-by-delete contract.
func (w *Worker) process(ctx context.Context, msg IndexMessage) {
	claimed, err := w.store.ClaimPending(ctx, msg.RequestID)
	if err != nil {
		log.Printf("worker: claim %s: %v", msg.RequestID, err)
		return
	}
	if !claimed {
		log.Printf("worker: skipping %s, not pending (withdrawn or already claimed)", msg.RequestID)
		return
	}

	months, err := monthRange(msg.StartMonth, msg.EndMonth)
	if err != nil {
		w.fail(ctx, msg.RequestID, &chesserr.IngestError{Kind: chesserr.FetchFailed, Cause: err})
		return
	}

	gamesIndexed := 0
	sinceFlush := 0
	for _, month := range months {
		games, err := w.fetcher.FetchMonth(ctx, msg.Player, msg.Platform, month)
		if err != nil {
			w.fail(ctx, msg.RequestID, &chesserr.IngestError{Kind: chesserr.FetchFailed, Cause: err})
			return
		}

		for _, g := range games {
			if err := w.indexGame(ctx, g); err != nil {
				// Per-game error: log and move on to the next game.
				log.Printf("worker: index game %s for request %s: %v", g.GameURL, msg.RequestID, err)
				continue
			}
			gamesIndexed++
			sinceFlush++
			if sinceFlush >= w.flushEvery {
				if err := w.store.UpdateGamesIndexed(ctx, msg.RequestID, gamesIndexed); err != nil {
					log.Printf("worker: flush games_indexed for %s: %v", msg.RequestID, err)
				}
				sinceFlush = 0
			}
		}
	}

	if err := w.store.UpdateGamesIndexed(ctx, msg.RequestID, gamesIndexed); err != nil {
		log.Printf("worker: final flush games_indexed for %s: %v", msg.RequestID, err)
	}
	if err := w.store.TransitionStatus(ctx, msg.RequestID, store.StatusCompleted, ""); err != nil {
		log.Printf("worker: transition %s to COMPLETED: %v", msg.RequestID, err)
	}
}

func (w *Worker) indexGame(ctx context.Context, g fetcher.PlatformGame) error {
	_, positions, err := w.replayer.ParseGame(g.PGN)
	if err != nil {
		return &chesserr.IngestError{Kind: chesserr.PgnParseFailed, GameURL: g.GameURL, Cause: err}
	}

	features, err := motif.Extract(g.GameURL, positions)
	if err != nil {
		return &chesserr.IngestError{Kind: chesserr.PgnParseFailed, GameURL: g.GameURL, Cause: err}
	}

	meta := store.GameMetadata{
		GameURL:       g.GameURL,
		Platform:      "chess.com",
		WhiteUsername: g.White,
		BlackUsername: g.Black,
		WhiteElo:      g.WhiteElo,
		BlackElo:      g.BlackElo,
		TimeClass:     g.TimeClass,
		ECO:           g.ECO,
		Result:        g.Result,
		PlayedAt:      g.PlayedAt,
	}
	if _, err := w.store.UpsertGameFeatures(ctx, meta, features); err != nil {
		return &chesserr.IngestError{Kind: chesserr.StoreFailed, GameURL: g.GameURL, Cause: err}
	}
	return nil
}

func (w *Worker) fail(ctx context.Context, requestID string, cause error) {
	if err := w.store.TransitionStatus(ctx, requestID, store.StatusFailed, cause.Error()); err != nil {
		log.Printf("worker: transition %s to FAILED: %v", requestID, err)
	}
}

// monthRange expands [start, end] (each "YYYY-MM") into the chronological
// sequence of months to fetch, inclusive of both ends (spec §5's ordering
// guarantee: "grouped by month in chronological month order").
func monthRange(start, end string) ([]string, error) {
	startT, err := time.Parse("2006-01", start)
	if err != nil {
		return nil, fmt.Errorf("worker: malformed startMonth %q: %w", start, err)
	}
	endT, err := time.Parse("2006-01", end)
	if err != nil {
		return nil, fmt.Errorf("worker: malformed endMonth %q: %w", end, err)
	}
	if endT.Before(startT) {
		return nil, fmt.Errorf("worker: endMonth %q precedes startMonth %q", end, start)
	}

	var months []string
	for t := startT; !t.After(endT); t = t.AddDate(0, 1, 0) {
		months = append(months, t.Format("2006-01"))
	}
	return months, nil
}
