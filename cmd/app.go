package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/nebulabroadcast/html-template-builder/internal/build"
	"github.com/nebulabroadcast/html-template-builder/internal/config"
	"github.com/nebulabroadcast/html-template-builder/internal/index"
	"github.com/nebulabroadcast/html-template-builder/internal/logging"
	"github.com/nebulabroadcast/html-template-builder/internal/metrics"
	"github.com/nebulabroadcast/html-template-builder/internal/minify"
	"github.com/nebulabroadcast/html-template-builder/internal/packager"
	"github.com/nebulabroadcast/html-template-builder/internal/registry"
	"github.com/nebulabroadcast/html-template-builder/internal/watcher"
)

// processorFactory creates the asset processors and a function releasing
// them. Tests replace it to avoid starting Dart Sass.
var processorFactory = defaultProcessors

func defaultProcessors(cfg *config.Config) (build.Processors, func() error, error) {
	sass, err := minify.NewDartSass(cfg.Sass.Binary)
	if err != nil {
		return build.Processors{}, nil, err
	}
	return build.Processors{
		Stylesheet: sass,
		Script:     minify.NewESBuild(),
		Markup:     minify.NewHTMLMinifier(),
	}, sass.Close, nil
}

// app wires the build pipeline for one CLI invocation.
type app struct {
	cfg      *config.Config
	settings config.Settings
	logger   logging.Logger
	report   *reporter

	registry *registry.Registry
	builder  *build.Builder
	packager *packager.Packager
	recorder *metrics.Recorder
	release  func() error
}

// newApp resolves the configuration and loads the shared core assets. Every
// error it returns is a startup failure.
func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger, out io.Writer) (*app, error) {
	settings, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	processors, release, err := processorFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("starting stylesheet compiler: %w", err)
	}

	op := logging.StartOperation(logger, "load_core", "core_dir", settings.CoreDir)
	shared, err := build.LoadSharedContext(ctx, settings.CoreDir, processors)
	if err != nil {
		op.EndWithError(ctx, err)
		release()
		return nil, fmt.Errorf("loading core assets: %w", err)
	}
	op.End(ctx)

	a := &app{
		cfg:      cfg,
		settings: settings,
		logger:   logger,
		report:   newReporter(out),
		registry: registry.New(settings.SrcDir),
		recorder: metrics.NewRecorder(nil),
		release:  release,
	}

	compiler := build.NewCompiler(settings.SrcDir, settings.BuildDir, shared, processors)
	a.builder = build.NewBuilder(compiler, a.registry, logger)
	a.builder.OnBuild(a.report.Build)
	a.builder.OnBuild(a.recorder.RecordBuild)

	a.packager = packager.New(settings.BuildDir, settings.DistDir, cfg.Dist.Workers, logger)
	a.packager.OnPackage(a.report.Package)
	a.packager.OnPackage(func(r packager.Result) { a.recorder.RecordPackage(r.OK()) })

	return a, nil
}

// Close releases the external processors and flushes metrics.
func (a *app) Close() error {
	a.logSummary()
	a.writeMetrics()
	if a.release != nil {
		return a.release()
	}
	return nil
}

// buildAll runs a full pass and refreshes the index page.
func (a *app) buildAll(ctx context.Context) ([]build.BuildResult, error) {
	results, err := a.builder.BuildAll(ctx)
	if err != nil {
		return nil, err
	}

	if a.cfg.Build.Index {
		if _, err := index.Write(ctx, a.settings.BuildDir, index.FromResults(results)); err != nil {
			a.logger.Warn(ctx, err, "Cannot write index page")
		}
	}
	return results, nil
}

// distribute packages every template of the pass. A template whose build
// failed usually has no build directory and is reported as a packaging
// failure.
func (a *app) distribute(ctx context.Context, results []build.BuildResult) []packager.Result {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	return a.packager.PackageAll(ctx, names)
}

// watch rebuilds on source changes until ctx is cancelled.
func (a *app) watch(ctx context.Context) error {
	source, err := watcher.NewFSSource(a.settings.SrcDir, a.logger)
	if err != nil {
		return err
	}
	defer source.Close()

	a.report.Infof("Watching %s", a.settings.SrcDir)
	return watcher.New(a.settings.SrcDir, source, a.registry, a.builder, a.logger).Run(ctx)
}

func (a *app) logSummary() {
	snap := a.recorder.Snapshot()
	if snap.Builds == 0 && snap.Packages == 0 {
		return
	}
	a.logger.Info(context.Background(), "Session summary",
		"builds", snap.Builds,
		"failed_builds", snap.FailedBuilds,
		"average_build", snap.AverageDuration.String(),
		"packages", snap.Packages,
		"failed_packages", snap.FailedPackages,
	)
}

func (a *app) writeMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.recorder.WriteTextfile(path); err != nil {
		a.logger.Warn(context.Background(), err, "Cannot write metrics textfile", "path", path)
	}
}
