package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"agentctl/internal/domain"
	"agentctl/internal/infra/telemetry"
)

const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the client config when the file changes on disk.
type Watcher struct {
	logger   *zap.Logger
	loader   *Loader
	path     string
	onReload func(domain.ClientConfig)
}

func NewWatcher(loader *Loader, path string, onReload func(domain.ClientConfig), logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		logger:   logger.Named("config_watch"),
		loader:   loader,
		path:     path,
		onReload: onReload,
	}
}

// Run watches the config file until ctx is cancelled. Reload failures
// are logged and the previous config stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace the file on save, which
	// would drop a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors:
			if err != nil {
				w.logger.Warn("config watcher error", zap.Error(err))
			}
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		case <-timerChan(timer):
			timer = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, err := w.loader.Load(ctx, w.path)
	if err != nil {
		w.logger.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("config reloaded",
		telemetry.EventField(telemetry.EventConfigReload),
		zap.String("path", w.path),
	)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
