package searcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce is how long a burst of file events must settle before the
// distance file is parsed again.
var watchDebounce = 250 * time.Millisecond

// ReadDistanceFile parses the distance file at path. Unlike LoadDistances it
// reports a missing or unreadable file as an error.
func ReadDistanceFile(path string, opts DistanceOptions, logger zerolog.Logger) (*DistanceMap, *DistanceReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open distance file: %w", err)
	}
	defer file.Close()

	return ParseDistances(file, opts, logger)
}

// WatchDistances parses the distance file at path once, then again after
// every change, until ctx is done. Each result is handed to fn on the calling
// goroutine. The parent directory is watched so that files replaced by a
// rename are picked up too.
func WatchDistances(ctx context.Context, path string, opts DistanceOptions, logger zerolog.Logger,
	fn func(*DistanceMap, *DistanceReport, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	logger = logger.With().Str("component", "distance-watcher").Str("path", path).Logger()
	fn(ReadDistanceFile(path, opts, logger))

	reload := make(chan struct{}, 1)
	var reloadTimer *time.Timer
	defer func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
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
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			logger.Debug().Str("op", event.Op.String()).Msg("Distance file changed")

			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			fn(ReadDistanceFile(path, opts, logger))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("Watcher error")
		}
	}
}
