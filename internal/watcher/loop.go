package watcher

import (
	"context"
	"sync/atomic"

	"github.com/nebulabroadcast/html-template-builder/internal/build"
	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/logging"
)

// State is the watcher lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateWatching
)

// String returns the string representation of the State
func (s State) String() string {
	if s == StateWatching {
		return "watching"
	}
	return "idle"
}

// Lister returns the current template names.
type Lister interface {
	List() ([]string, error)
}

// Builder builds one template.
type Builder interface {
	Build(ctx context.Context, name string) build.BuildResult
}

// Watcher rebuilds the owning template for every change event.
type Watcher struct {
	srcDir  string
	source  Source
	lister  Lister
	builder Builder
	logger  logging.Logger
	state   atomic.Int32
}

// New creates a watcher for the templates under srcDir.
func New(srcDir string, source Source, lister Lister, builder Builder, logger logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		srcDir:  srcDir,
		source:  source,
		lister:  lister,
		builder: builder,
		logger:  logger.WithComponent("watcher"),
	}
}

// State returns the current state.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// Run handles events until ctx is cancelled or the source closes. Builds run
// one at a time on the calling goroutine. A failed build is logged by the
// builder and does not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StateWatching)) {
		return errors.NewInternalError("WATCH_RUNNING", "watcher is already running", nil)
	}
	defer w.state.Store(int32(StateIdle))

	w.logger.Info(ctx, "Watching for changes", "src_dir", w.srcDir)

	events := w.source.Events()
	errs := w.source.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event Event) {
	templates, err := w.lister.List()
	if err != nil {
		w.logger.Error(ctx, err, "Cannot list templates", "path", event.Path)
		return
	}

	name, ok := Route(w.srcDir, event.Path, templates)
	if !ok {
		w.logger.Debug(ctx, "Ignoring change", "path", event.Path, "kind", event.Kind.String())
		return
	}

	w.logger.Debug(ctx, "Change detected", "template", name, "path", event.Path, "kind", event.Kind.String())
	w.builder.Build(ctx, name)
}
