package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hpungsan/tails/internal/log"
)

// reloadDebounce collapses the burst of events editors emit per save.
const reloadDebounce = 100 * time.Millisecond

// Watch reloads configuration whenever one of paths changes and passes the
// result to onChange. It watches the parent directories rather than the files
// so atomic-rename saves and files created after startup are picked up.
// Blocks until ctx is cancelled. Reload errors are logged and the previous
// configuration stays in effect.
func Watch(ctx context.Context, paths []string, reload func() (*Config, error), onChange func(*Config)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			// Directory may not exist yet (no repo config); skip it
			log.Debug("config watch: skip %s: %v", dir, err)
		}
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			cfg, err := reload()
			if err != nil {
				log.Warn("config reload failed: %v", err)
				continue
			}
			log.Info("config reloaded")
			onChange(cfg)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watch error: %v", err)
		}
	}
}
