// Package app contains the spool watcher that drains queued batches into the store.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/hubstore/internal/ports"
)

const defaultDebounce = 100 * time.Millisecond

// WatcherConfig contains configuration for the spool watcher.
type WatcherConfig struct {
	// Dir is the spool directory watched for new batch files.
	Dir string

	// PollInterval triggers a drain even when no file events arrive.
	// Zero disables polling.
	PollInterval time.Duration

	// Debounce delays a drain after file events so bursts are handled together.
	Debounce time.Duration

	// Once drains the spool a single time and returns.
	Once bool
}

// DrainResult summarizes a single pass over the spool.
type DrainResult struct {
	Delivered int
	Failed    int
}

// SpoolWatcher submits spooled batches through a StoreGateway.
// Every batch gets exactly one submission attempt.
type SpoolWatcher struct {
	config  WatcherConfig
	spool   ports.BatchSpool
	gateway ports.StoreGateway
	logger  ports.Logger

	drainMu sync.Mutex
}

// NewSpoolWatcher creates a new watcher with the given dependencies.
func NewSpoolWatcher(config WatcherConfig, spool ports.BatchSpool, gateway ports.StoreGateway, logger ports.Logger) *SpoolWatcher {
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	return &SpoolWatcher{
		config:  config,
		spool:   spool,
		gateway: gateway,
		logger:  logger,
	}
}

// Run drains the spool and, unless Once is set, keeps draining whenever new
// batch files appear. It returns nil when the context is canceled.
func (w *SpoolWatcher) Run(ctx context.Context) error {
	if w.config.Once {
		_, err := w.Drain(ctx)
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.config.Dir, err)
	}
	w.logger.Info("watching spool", ports.String("dir", w.config.Dir))

	// Batches spooled before the watch was registered.
	if _, err := w.Drain(ctx); err != nil {
		w.logger.Error("drain failed", ports.Err(err))
	}

	var poll <-chan time.Time
	if w.config.PollInterval > 0 {
		ticker := time.NewTicker(w.config.PollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	trigger := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".json") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.config.Debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("spool watcher error", ports.Err(err))

		case <-trigger:
			if _, err := w.Drain(ctx); err != nil {
				w.logger.Error("drain failed", ports.Err(err))
			}

		case <-poll:
			if _, err := w.Drain(ctx); err != nil {
				w.logger.Error("drain failed", ports.Err(err))
			}
		}
	}
}

// Drain submits every pending batch once, oldest first. Batches the store
// accepts are completed and batches it refuses are set aside as failed.
// A batch whose submission is cut short by ctx stays pending.
func (w *SpoolWatcher) Drain(ctx context.Context) (DrainResult, error) {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()

	var res DrainResult

	names, err := w.spool.Pending(ctx)
	if err != nil {
		return res, fmt.Errorf("list spool: %w", err)
	}

	interrupted := false
	for _, name := range names {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		switch w.submit(ctx, name) {
		case outcomeDelivered:
			res.Delivered++
		case outcomeFailed:
			res.Failed++
		case outcomeInterrupted:
			interrupted = true
		}
		if interrupted {
			break
		}
	}

	if len(names) > 0 {
		w.logger.Info("spool drained",
			ports.Int("delivered", res.Delivered),
			ports.Int("failed", res.Failed),
			ports.Bool("interrupted", interrupted),
		)
	}
	return res, nil
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeFailed
	outcomeInterrupted
)

func (w *SpoolWatcher) submit(ctx context.Context, name string) outcome {
	batch, err := w.spool.Load(ctx, name)
	if err != nil {
		w.logger.Error("failed to load batch", ports.String("file", name), ports.Err(err))
		w.fail(ctx, name)
		return outcomeFailed
	}

	start := time.Now()
	if !w.gateway.SaveData(ctx, batch) {
		// Shutdown, not the store, ended the attempt.
		if ctx.Err() != nil {
			w.logger.Info("batch left pending", ports.String("file", name), ports.Err(ctx.Err()))
			return outcomeInterrupted
		}
		w.logger.Warn("batch rejected",
			ports.String("file", name),
			ports.Duration("duration", time.Since(start)),
		)
		w.fail(ctx, name)
		return outcomeFailed
	}

	if err := w.spool.Complete(ctx, name); err != nil {
		w.logger.Error("failed to remove delivered batch", ports.String("file", name), ports.Err(err))
	}
	w.logger.Debug("batch delivered",
		ports.String("file", name),
		ports.Duration("duration", time.Since(start)),
	)
	return outcomeDelivered
}

func (w *SpoolWatcher) fail(ctx context.Context, name string) {
	if err := w.spool.Fail(ctx, name); err != nil {
		w.logger.Error("failed to set aside batch", ports.String("file", name), ports.Err(err))
	}
}
