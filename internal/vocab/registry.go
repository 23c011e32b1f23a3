package vocab

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yourusername/wordguard/internal/match"
	"go.uber.org/zap"
)

// Snapshot is one immutable vocabulary version. It carries both automaton
// variants, built from the same PatternSet version, so a request may pick
// either case mode without a rebuild. Snapshots are never mutated; reloads
// swap the registry's current pointer.
type Snapshot struct {
	Version  int64
	Terms    int
	LoadedAt time.Time

	exact  *match.Automaton
	folded *match.Automaton
}

// Automaton returns the variant for the requested case mode.
func (s *Snapshot) Automaton(caseInsensitive bool) *match.Automaton {
	if caseInsensitive {
		return s.folded
	}
	return s.exact
}

// Registry holds the current vocabulary snapshot and rebuilds it when the
// word-list directory changes. Building happens off to the side; in-flight
// scans keep whichever snapshot they resolved, so they never observe a torn
// structure.
type Registry struct {
	loader  *Loader
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]
	version atomic.Int64

	reloadMu sync.Mutex

	// OnReload, when set, is invoked after every successful swap.
	OnReload func(*Snapshot)
}

// NewRegistry creates a registry and performs the initial load.
func NewRegistry(loader *Loader, logger *zap.Logger) (*Registry, error) {
	r := &Registry{loader: loader, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Current returns the active snapshot.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Reload builds a fresh snapshot from the word-list directory and swaps it
// in atomically. Only one rebuild runs at a time; concurrent readers are
// never blocked.
func (r *Registry) Reload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	start := time.Now()

	exactSet, err := r.loader.Load(false)
	if err != nil {
		return err
	}
	foldedSet, err := r.loader.Load(true)
	if err != nil {
		return err
	}

	exact, err := match.Build(exactSet)
	if err != nil {
		return fmt.Errorf("failed to build automaton: %w", err)
	}
	folded, err := match.Build(foldedSet)
	if err != nil {
		return fmt.Errorf("failed to build case-folded automaton: %w", err)
	}

	snap := &Snapshot{
		Version:  r.version.Add(1),
		Terms:    exactSet.Len(),
		LoadedAt: time.Now(),
		exact:    exact,
		folded:   folded,
	}
	r.current.Store(snap)

	r.logger.Info("Vocabulary snapshot swapped",
		zap.Int64("version", snap.Version),
		zap.Int("terms", snap.Terms),
		zap.Int("states", exact.Size()),
		zap.Duration("build_time", time.Since(start)))

	if r.OnReload != nil {
		r.OnReload(snap)
	}
	return nil
}

// Watch reloads the vocabulary whenever the word-list directory changes,
// debounced so editors that write in bursts trigger a single rebuild. It
// blocks until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create vocabulary watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.loader.dir); err != nil {
		return fmt.Errorf("failed to watch vocabulary directory: %w", err)
	}

	r.logger.Info("Watching vocabulary directory", zap.String("dir", r.loader.dir))

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	fire := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, fire)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("Vocabulary watcher error", zap.Error(err))
		case <-pending:
			if err := r.Reload(); err != nil {
				r.logger.Error("Vocabulary reload failed", zap.Error(err))
			}
		}
	}
}
