package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/abdul-hamid-achik/softspec/packages/logging"
	"github.com/fsnotify/fsnotify"
)

// watchFiles re-runs rerun whenever a scenario file under args is
// written or created, until ctx is done. Bursts of events within
// WatchDebounceDelay trigger a single run, and runs never overlap.
func watchFiles(ctx context.Context, w io.Writer, args []string, rerun func(), logger logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(args) {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch directory", logging.String("dir", dir), logging.Err(err))
		}
	}

	fmt.Fprintf(w, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
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
			if !shouldRerun(event) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				mu.Lock()
				defer mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				fmt.Fprintf(w, "\n\nFile changed: %s\nRe-running scenarios...\n\n", name)
				rerun()
				fmt.Fprintf(w, "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", logging.Err(err))
		}
	}
}

func shouldRerun(event fsnotify.Event) bool {
	return (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && parser.IsScenarioFile(event.Name)
}

// watchDirs returns every directory to watch for args: the parent of
// each file argument and every directory below each directory argument.
func watchDirs(args []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(filepath.Dir(arg))
			continue
		}
		_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				add(path)
			}
			return nil
		})
	}
	return dirs
}
