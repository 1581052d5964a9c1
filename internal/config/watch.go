package config

import (
	"context"
	"path/filepath"

	"LiveScene/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch calls onChange with the reloaded config each time path is written or replaced, until ctx is
// done. The parent directory is watched so editors that save by rename are seen too. A file that fails
// to parse is logged and skipped; the previous config stays in effect.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Log.Info("Watching config", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				logger.Log.Error("Config reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", abs), zap.Int("controls", len(cfg.Controls)))
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warn("Config watcher error", zap.Error(err))
		}
	}
}
