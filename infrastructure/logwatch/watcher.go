package logwatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/pkg/extensions"
)

// defaultDebounce coalesces bursts of write events into one read
const defaultDebounce = 100 * time.Millisecond

// Watcher tails one log file into a Store. The parent directory is watched
// as well as the file, so atomic saves (write to temp, rename over) are
// picked up. Only whole lines are consumed; a partially written trailing
// line waits for the next write event.
type Watcher struct {
	path     string
	store    *Store
	parser   *Parser
	logger   *zap.Logger
	debounce time.Duration

	interceptors *extensions.InterceptorChain
	hooks        *extensions.HookManager

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// offset is the byte position of the next unread line. It is touched
	// only by Start and the watch goroutine, never concurrently.
	offset int64
}

// NewWatcher creates a Watcher for the given log file. The file itself may
// not exist yet; the directory must.
func NewWatcher(path string, store *Store, parser *Parser, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("log watch path is empty")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch log directory %s: %w", dir, err)
	}

	return &Watcher{
		path:     path,
		store:    store,
		parser:   parser,
		logger:   logger,
		debounce: debounce,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
	}, nil
}

// UseInterceptors runs every parsed entry through the chain before it is
// stored. Set before Start.
func (w *Watcher) UseInterceptors(chain *extensions.InterceptorChain) {
	w.interceptors = chain
}

// UseHooks fires the log_entry_parsed hook point after each stored entry.
// Set before Start.
func (w *Watcher) UseHooks(hooks *extensions.HookManager) {
	w.hooks = hooks
}

// Start reads the file's current content and begins watching for appends
func (w *Watcher) Start() {
	w.readNewLines()

	w.wg.Add(1)
	go w.watchLoop()

	w.logger.Info("Log watcher started",
		zap.String("path", w.path),
		zap.Duration("debounce", w.debounce))
}

// Stop ends the watch goroutine. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.wg.Wait()
		w.logger.Info("Log watcher stopped", zap.String("path", w.path))
	})
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	var debounceTimer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			w.readNewLines()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Log watcher error", zap.Error(err))
		}
	}
}

// readNewLines consumes complete lines appended since the last read. A
// shrunken file means truncation or rotation, so the offset resets and the
// whole file is re-read.
func (w *Watcher) readNewLines() {
	file, err := os.Open(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Failed to open log file", zap.String("path", w.path), zap.Error(err))
		}
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		w.logger.Warn("Failed to stat log file", zap.Error(err))
		return
	}

	if info.Size() < w.offset {
		w.logger.Info("Log file shrank, re-reading from start",
			zap.String("path", w.path),
			zap.Int64("size", info.Size()))
		w.offset = 0
	}
	if info.Size() == w.offset {
		return
	}

	if _, err := file.Seek(w.offset, io.SeekStart); err != nil {
		w.logger.Warn("Failed to seek log file", zap.Error(err))
		return
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// An unterminated tail stays unread until more bytes land
			break
		}

		w.offset += int64(len(line))

		entry, ok := w.parser.ParseLine(line)
		if !ok {
			continue
		}
		w.dispatch(entry)
	}
}

// dispatch runs the entry through the interceptor chain, stores it and
// fires the parsed hook
func (w *Watcher) dispatch(entry ports.LogEntry) {
	ctx := context.Background()

	if w.interceptors != nil {
		out, keep, err := w.interceptors.Process(ctx, entry)
		if err != nil {
			w.logger.Warn("Log interceptor failed", zap.Error(err))
			return
		}
		if !keep {
			return
		}
		if replaced, ok := out.(ports.LogEntry); ok {
			entry = replaced
		}
	}

	stored := w.store.Append(entry)

	if w.hooks != nil {
		if err := w.hooks.Execute(ctx, extensions.HookLogEntryParsed, stored); err != nil {
			w.logger.Warn("Log entry hook failed", zap.Error(err))
		}
	}
}
