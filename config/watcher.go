package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/teranos/typeshape/errors"
	"github.com/teranos/typeshape/logger"
	"go.uber.org/zap"
)

// ReloadCallback is called with the reloaded configuration.
type ReloadCallback func(*Config) error

// Watcher reloads a configuration file, and the annotation file it names,
// when either changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.SugaredLogger

	mu        sync.Mutex
	callbacks []ReloadCallback
	timer     *time.Timer
	watched   map[string]bool
}

// NewWatcher watches the configuration file at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w := &Watcher{
		path:     path,
		watcher:  fw,
		debounce: 200 * time.Millisecond,
		log:      logger.ComponentLogger("config"),
		watched:  make(map[string]bool),
	}
	if err := w.add(path); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// OnReload registers a callback.
func (w *Watcher) OnReload(cb ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// the annotation file named by the initial config is watched too
	if cfg, err := LoadFromFile(w.path); err == nil {
		w.watchAnnotations(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.Debugw("Config watcher detected change",
				logger.FieldFile, event.Name,
				logger.FieldOp, event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Config watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", path)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watched[abs] {
		return nil
	}
	if err := w.watcher.Add(abs); err != nil {
		return errors.Wrapf(err, "failed to watch %s", path)
	}
	w.watched[abs] = true
	return nil
}

func (w *Watcher) watchAnnotations(cfg *Config) {
	if cfg.Nullability.AnnotationFile == "" {
		return
	}
	if err := w.add(cfg.Nullability.AnnotationFile); err != nil {
		w.log.Warnw("Cannot watch annotation file", logger.FieldError, err)
	}
}

// schedule debounces bursts of events into one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.reload(); err != nil {
			w.log.Errorw("Config reload failed", logger.FieldError, err)
		}
	})
}

func (w *Watcher) reload() error {
	cfg, err := LoadFromFile(w.path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	w.watchAnnotations(cfg)

	w.mu.Lock()
	callbacks := append([]ReloadCallback(nil), w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		if err := cb(cfg); err != nil {
			w.log.Warnw("Config reload callback error", logger.FieldError, err)
		}
	}
	return nil
}
