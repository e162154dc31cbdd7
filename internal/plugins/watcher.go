package plugins

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the catalog when manifest files change and calls onChange
// after each reload. Bursts of file events are debounced into one reload.
type Watcher struct {
	dir      string
	catalog  *Catalog
	features []string
	onChange func()
	log      zerolog.Logger
	debounce time.Duration

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	stop     chan struct{}
	reload   chan struct{}
	wg       sync.WaitGroup
}

func NewWatcher(dir string, catalog *Catalog, features []string, onChange func(), log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create manifest watcher: %w", err)
	}
	return &Watcher{
		dir:      dir,
		catalog:  catalog,
		features: features,
		onChange: onChange,
		log:      log.With().Str("component", "plugin-watcher").Logger(),
		debounce: defaultDebounce,
		watcher:  fw,
		stop:     make(chan struct{}),
		reload:   make(chan struct{}, 1),
	}, nil
}

// Start watches the manifest directory until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch manifest dir %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Msg("watching plugin manifests")
	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isManifestFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("manifest change detected")
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("manifest watcher error")
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reload:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.catalog.Load(ctx, w.dir, w.features); err != nil {
				w.log.Error().Err(err).Msg("plugin catalog reload failed")
				continue
			}
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}
