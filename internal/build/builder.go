package build

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/logging"
)

// BuildResult represents the result of one template build.
type BuildResult struct {
	Name     string
	Output   *BuildOutput
	Err      error
	Started  time.Time
	Duration time.Duration
}

// OK reports whether the build succeeded.
func (r BuildResult) OK() bool {
	return r.Err == nil
}

// BuildCallback is called when a build completes.
type BuildCallback func(result BuildResult)

// Lister returns the current template names.
type Lister interface {
	List() ([]string, error)
}

// Builder runs compiles behind a per-template failure boundary.
type Builder struct {
	compiler TemplateCompiler
	lister   Lister
	logger   logging.Logger

	mutex     sync.Mutex
	callbacks []BuildCallback
	locks     map[string]*sync.Mutex
}

// NewBuilder creates a builder.
func NewBuilder(compiler TemplateCompiler, lister Lister, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		compiler: compiler,
		lister:   lister,
		logger:   logger.WithComponent("builder"),
		locks:    make(map[string]*sync.Mutex),
	}
}

// OnBuild registers a callback invoked after every build.
func (b *Builder) OnBuild(cb BuildCallback) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.callbacks = append(b.callbacks, cb)
}

func (b *Builder) lockFor(name string) *sync.Mutex {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	l, ok := b.locks[name]
	if !ok {
		l = &sync.Mutex{}
		b.locks[name] = l
	}
	return l
}

// Build compiles one template. It never panics and never returns an error:
// the outcome, including any failure, is in the result.
func (b *Builder) Build(ctx context.Context, name string) BuildResult {
	lock := b.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	logger := b.logger.With("template", name)
	logger.Info(ctx, "Building template")

	result := BuildResult{Name: name, Started: time.Now()}
	result.Output, result.Err = b.compileSafely(ctx, name)
	result.Duration = time.Since(result.Started)

	if result.Err != nil {
		logger.Error(ctx, result.Err, "Build failed",
			"kind", string(errors.KindOf(result.Err)),
			"duration", result.Duration.String(),
		)
	} else {
		logger.Info(ctx, "Build finished",
			"duration", result.Duration.String(),
			"copied", len(result.Output.Copied),
		)
	}

	b.notify(result)
	return result
}

// compileSafely converts a panic in the compiler into an internal error so a
// defect in one template cannot take down the pass or the watch loop.
func (b *Builder) compileSafely(ctx context.Context, name string) (out *BuildOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.NewInternalError("PANIC", "compiler panicked", fmt.Errorf("%v", r)).WithTemplate(name)
		}
	}()
	return b.compiler.Compile(ctx, name)
}

func (b *Builder) notify(result BuildResult) {
	b.mutex.Lock()
	callbacks := make([]BuildCallback, len(b.callbacks))
	copy(callbacks, b.callbacks)
	b.mutex.Unlock()

	for _, cb := range callbacks {
		cb(result)
	}
}

// BuildAll builds every template in the registry sequentially. A failing
// template never stops the pass. The error is non-nil only when the registry
// itself cannot be listed.
func (b *Builder) BuildAll(ctx context.Context) ([]BuildResult, error) {
	names, err := b.lister.List()
	if err != nil {
		return nil, err
	}

	passID := uuid.NewString()
	logger := b.logger.With("pass_id", passID)
	logger.Info(ctx, "Starting build pass", "templates", len(names))

	results := make([]BuildResult, 0, len(names))
	failed := 0
	for _, name := range names {
		if ctx.Err() != nil {
			logger.Warn(ctx, ctx.Err(), "Build pass interrupted", "remaining", len(names)-len(results))
			break
		}
		r := b.Build(ctx, name)
		if !r.OK() {
			failed++
		}
		results = append(results, r)
	}

	logger.Info(ctx, "Build pass finished", "built", len(results)-failed, "failed", failed)
	return results, nil
}
