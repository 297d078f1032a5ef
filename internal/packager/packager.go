// Package packager bundles built templates into distribution archives.
//
// Each archive is flat: every regular file under build_dir/<name>/ is stored
// under its base name, so the playout server finds <name>.html and its
// assets side by side after extraction.
package packager

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/logging"
)

// DefaultWorkers bounds PackageAll when no limit is configured.
const DefaultWorkers = 4

// Result is the outcome of packaging one template.
type Result struct {
	Name     string
	Path     string
	Files    int
	Err      error
	Duration time.Duration
}

// OK reports whether the archive was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// PackageCallback is called after every packaging attempt.
type PackageCallback func(result Result)

// Packager writes dist_dir/<name>.zip archives from build_dir/<name>/.
type Packager struct {
	buildDir string
	distDir  string
	workers  int
	logger   logging.Logger

	mutex     sync.Mutex
	callbacks []PackageCallback
}

// New creates a packager. workers below 1 selects DefaultWorkers.
func New(buildDir, distDir string, workers int, logger logging.Logger) *Packager {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Packager{
		buildDir: buildDir,
		distDir:  distDir,
		workers:  workers,
		logger:   logger.WithComponent("packager"),
	}
}

// OnPackage registers a callback.
func (p *Packager) OnPackage(cb PackageCallback) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// Package writes the archive for one template and returns its path. An
// existing archive is replaced only once the new one is complete.
func (p *Packager) Package(name string) (string, error) {
	path, _, err := p.pack(name)
	return path, err
}

func (p *Packager) pack(name string) (string, int, error) {
	srcDir := filepath.Join(p.buildDir, name)
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		if err == nil {
			err = os.ErrNotExist
		}
		return "", 0, errors.NewPackagingError("PACKAGE_SOURCE", "build directory not found", err).
			WithTemplate(name).WithPath(srcDir)
	}

	if err := os.MkdirAll(p.distDir, 0o755); err != nil {
		return "", 0, errors.NewPackagingError("PACKAGE_DIST", "cannot create dist directory", err).WithPath(p.distDir)
	}

	target := filepath.Join(p.distDir, name+".zip")
	tmp, err := os.CreateTemp(p.distDir, "."+name+"-*.zip.tmp")
	if err != nil {
		return "", 0, errors.NewPackagingError("PACKAGE_WRITE", "cannot create archive", err).
			WithTemplate(name).WithPath(target)
	}
	defer os.Remove(tmp.Name())

	files, err := p.writeArchive(tmp, name, srcDir)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return "", 0, errors.NewPackagingError("PACKAGE_WRITE", "cannot write archive", err).
			WithTemplate(name).WithPath(target)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", 0, errors.NewPackagingError("PACKAGE_WRITE", "cannot move archive into place", err).
			WithTemplate(name).WithPath(target)
	}
	return target, files, nil
}

func (p *Packager) writeArchive(w io.Writer, name, srcDir string) (int, error) {
	zw := zip.NewWriter(w)
	seen := make(map[string]string)

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		base := filepath.Base(path)
		if first, dup := seen[base]; dup {
			p.logger.Warn(context.Background(), nil, "Skipping duplicate archive entry",
				"template", name, "entry", base, "kept", first, "skipped", path)
			return nil
		}
		seen[base] = path
		return addFile(zw, path, base, info)
	})
	if err != nil {
		zw.Close()
		return 0, err
	}
	return len(seen), zw.Close()
}

func addFile(zw *zip.Writer, path, entry string, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = entry
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}

// PackageAll packages every name with at most the configured number of
// archives in flight. A failing template does not stop the others; every
// outcome is in the returned results, in the order of names.
func (p *Packager) PackageAll(ctx context.Context, names []string) []Result {
	results := make([]Result, len(names))
	if len(names) == 0 {
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(p.workers, len(names)))

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Name: name, Err: err}
				return nil
			}

			started := time.Now()
			path, files, err := p.pack(name)
			results[i] = Result{Name: name, Path: path, Files: files, Err: err, Duration: time.Since(started)}
			p.report(gctx, results[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Packager) report(ctx context.Context, r Result) {
	if r.Err != nil {
		p.logger.Error(ctx, r.Err, "Packaging failed", "template", r.Name)
	} else {
		p.logger.Info(ctx, "Packaged template",
			"template", r.Name,
			"archive", r.Path,
			"files", r.Files,
			"duration", r.Duration.String(),
		)
	}

	p.mutex.Lock()
	callbacks := make([]PackageCallback, len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mutex.Unlock()

	for _, cb := range callbacks {
		cb(r)
	}
}
