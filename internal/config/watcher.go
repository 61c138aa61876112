package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"enforcer/internal/logger"
)

// Watch monitors the config file and calls onChange with the freshly
// loaded Config each time the file is written. It runs until ctx is
// cancelled.
//
// A reload that fails to load or validate is logged and dropped;
// onChange is only called with a valid Config, so the previous policy
// snapshot stays active.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Infow("Watching config file for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which surfaces as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Errorw("Config reload failed, keeping previous policies",
					"path", path,
					"error", err,
				)
				continue
			}

			log.Infow("Config reloaded", "path", path, "policies", len(cfg.Policies))
			onChange(cfg)

			// An atomic save may have replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorw("Config watcher error", "error", err)
		}
	}
}
