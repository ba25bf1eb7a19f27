// Package watch runs the formatter against Python files as they change on
// disk. Each watched save produces a formatted sibling file; the source is
// never touched.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/python-discord/blurple/internal/config"
	"github.com/python-discord/blurple/internal/format"
	"github.com/python-discord/blurple/internal/pyparse"
)

// Watcher watches the configured directories and formats matching files
// once their events settle past the debounce window.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	formatter   *format.Formatter
	log         *zap.Logger
	dirs        []string
	extensions  []string
	suffix      string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging.
type Stats struct {
	FilesCreated   int
	FilesModified  int
	FilesDeleted   int
	FormatsWritten int
	SyntaxFailures int
	Errors         int
	LastEventTime  time.Time
	LastEventPath  string
	LastEventType  string
}

// New creates a Watcher over the directories named in cfg.Watch.
func New(cfg *config.Config, formatter *format.Formatter, log *zap.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Watcher{
		watcher:     watcher,
		formatter:   formatter,
		log:         log,
		dirs:        cfg.Watch.Dirs,
		extensions:  cfg.Watch.Extensions,
		suffix:      cfg.Watch.OutputSuffix,
		debounceMap: make(map[string]time.Time),
		debounceDur: cfg.GetDebounce(),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. This method is non-blocking; the event loop runs
// in a goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if _, err := os.Stat(dir); err != nil {
			w.log.Warn("skipping watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.log.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.log.Info("watching directory", zap.String("dir", dir))
	}

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.log.Error("error closing watcher", zap.Error(err))
	}
	w.log.Info("watcher stopped")
}

// run is the main event loop for the watcher.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Ticker drives the debounce sweep so rapid saves format once.
	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("watcher context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents(ctx)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.wantsFile(event.Name) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return // Ignore chmod, etc.
	}

	w.log.Debug("file event", zap.String("type", eventType), zap.String("path", event.Name))

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
	}

	// Debounce: record the event for later processing. Deleted files fall
	// out naturally when the read fails.
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// wantsFile reports whether path is a source the watcher should format.
// Formatted output keeps a watched extension, so the suffix check stops the
// watcher from feeding on its own writes.
func (w *Watcher) wantsFile(path string) bool {
	if w.suffix != "" && strings.HasSuffix(path, w.suffix) {
		return false
	}
	for _, ext := range w.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// processDebouncedEvents formats files whose events have settled past the
// debounce window.
func (w *Watcher) processDebouncedEvents(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	toProcess := make([]string, 0)

	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			toProcess = append(toProcess, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range toProcess {
		w.formatFile(ctx, path)
	}
}

// formatFile formats a settled file and writes the result beside it.
func (w *Watcher) formatFile(ctx context.Context, path string) {
	runID := uuid.New().String()[:8]

	source, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.log.Debug("file gone before formatting", zap.String("path", path))
			return
		}
		w.log.Error("failed to read file", zap.String("path", path), zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	out, err := w.formatter.Format(ctx, source)
	if err != nil {
		var syntaxErr *pyparse.SyntaxError
		if errors.As(err, &syntaxErr) {
			w.log.Warn("file does not parse",
				zap.String("run", runID),
				zap.String("path", path),
				zap.Int("line", syntaxErr.Line),
				zap.Int("column", syntaxErr.Column))
			w.mu.Lock()
			w.stats.SyntaxFailures++
			w.mu.Unlock()
			return
		}
		w.log.Error("format failed",
			zap.String("run", runID),
			zap.String("path", path),
			zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	dest := w.outputPath(path)
	if err := os.WriteFile(dest, []byte(out+"\n"), 0644); err != nil {
		w.log.Error("failed to write formatted file",
			zap.String("run", runID),
			zap.String("path", dest),
			zap.Error(err))
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.FormatsWritten++
	w.mu.Unlock()

	w.log.Info("formatted file",
		zap.String("run", runID),
		zap.String("source", path),
		zap.String("dest", dest))
}

// outputPath maps foo.py to foo plus the configured output suffix.
func (w *Watcher) outputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + w.suffix
}

// FormatAll formats every matching file already present in the watched
// directories. Useful at startup before any events arrive.
func (w *Watcher) FormatAll(ctx context.Context) error {
	for _, dir := range w.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, entry := range entries {
			if entry.IsDir() || !w.wantsFile(entry.Name()) {
				continue
			}
			w.formatFile(ctx, filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// ResetStats resets the watcher statistics.
func (w *Watcher) ResetStats() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = Stats{}
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetWatchedDirs returns the directories being watched.
func (w *Watcher) GetWatchedDirs() []string {
	return w.watcher.WatchList()
}
