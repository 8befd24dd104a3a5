package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file at path and calls onChange with each
// successfully reloaded Config until ctx is cancelled. A rewrite that fails
// to parse or validate is logged and discarded; the previous configuration
// stays active and onChange is not called.
//
// Reload scope: log and metrics settings take effect through onChange, but
// player connection settings cannot be re-applied to a live WebSocket
// session — they are only picked up by the next invocation. Watch reports
// which case a reload falls into so an edited player.url is not silently
// ignored.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}

	// Baseline for change reporting. The file loaded when the command
	// started, so a failure here means it is being edited right now; the
	// next write event supplies the baseline instead.
	prev, err := Load(path)
	if err != nil {
		slog.Warn("config: baseline read for watch failed", "path", path, "err", err)
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename (atomic save), which surfaces
			// as Create rather than Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed — keeping previous config",
					"path", path, "err", err)
				continue
			}

			reportReload(prev, cfg)
			prev = cfg
			onChange(cfg)

			// An atomic save replaces the inode; re-add the path so the
			// next save is still seen.
			_ = w.Add(path)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// reportReload logs what a reload changed and whether it takes effect now.
func reportReload(prev, cur *Config) {
	slog.Info("config: reloaded", "log_level", cur.Log.Level, "log_format", cur.Log.Format)
	if prev != nil && prev.Player != cur.Player {
		slog.Warn("config: player settings changed — they apply on the next run, not the live session",
			"url", cur.Player.URL)
	}
}
