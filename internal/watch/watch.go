// File path: internal/watch/watch.go

// Package watch rebuilds the library whenever a category CSV changes.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inolabs/partsdb/internal/common"
	"github.com/inolabs/partsdb/internal/compiler"
	"github.com/inolabs/partsdb/internal/config"
)

// debounce is how long the watcher waits for the editor to finish writing
// before rebuilding. Spreadsheet tools save via several quick events.
const debounce = 300 * time.Millisecond

// Run watches the CSV directory and recompiles on every change until the
// context is cancelled. A failing build is logged and the watcher keeps
// going: the previous artifacts stay in place, the user fixes the CSV and
// saves again.
func Run(ctx context.Context, cfg config.Config) error {
	logger := common.Logger()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(cfg.CSVDir); err != nil {
		return err
	}
	logger.Info("watch: watching for changes", "dir", cfg.CSVDir)

	var timer *time.Timer
	var pending <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCSV(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("watch: change detected", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: watcher error", "error", err)
		case <-pending:
			pending = nil
			if result, err := compiler.Compile(ctx, cfg); err != nil {
				logger.Error("watch: rebuild failed", "error", err)
			} else {
				logger.Info("watch: rebuilt", "tables", result.Tables, "parts", result.Parts)
			}
		}
	}
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
