// Package metrics records build and packaging outcomes as Prometheus metrics.
//
// The builder is a one-shot CLI, so metrics are not served over HTTP. They are
// written in the text exposition format to a file, suitable for the node
// exporter textfile collector.
package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/nebulabroadcast/html-template-builder/internal/build"
)

const namespace = "template_builder"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder collects build metrics on a private registry.
type Recorder struct {
	registry      *prom.Registry
	builds        *prom.CounterVec
	buildDuration prom.Histogram
	packages      *prom.CounterVec

	mutex    sync.Mutex
	snapshot Snapshot
}

// Snapshot is a point-in-time summary of what the recorder has seen.
type Snapshot struct {
	Builds          int
	FailedBuilds    int
	Packages        int
	FailedPackages  int
	TotalDuration   time.Duration
	AverageDuration time.Duration
}

// NewRecorder creates a recorder and registers its collectors on reg. A nil
// reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		registry: reg,
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Template builds by result",
		}, []string{"result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of single template builds",
			Buckets:   prom.DefBuckets,
		}),
		packages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "packages_total",
			Help:      "Distribution archives by result",
		}, []string{"result"}),
	}
	reg.MustRegister(r.builds, r.buildDuration, r.packages)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

// RecordBuild records one build result. It has the build.BuildCallback
// signature so it can be passed to Builder.OnBuild directly.
func (r *Recorder) RecordBuild(result build.BuildResult) {
	if r == nil {
		return
	}

	r.builds.WithLabelValues(label(result.OK())).Inc()
	r.buildDuration.Observe(result.Duration.Seconds())

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.snapshot.Builds++
	if !result.OK() {
		r.snapshot.FailedBuilds++
	}
	r.snapshot.TotalDuration += result.Duration
	r.snapshot.AverageDuration = r.snapshot.TotalDuration / time.Duration(r.snapshot.Builds)
}

// RecordPackage records one packaging attempt.
func (r *Recorder) RecordPackage(ok bool) {
	if r == nil {
		return
	}

	r.packages.WithLabelValues(label(ok)).Inc()

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.snapshot.Packages++
	if !ok {
		r.snapshot.FailedPackages++
	}
}

// Snapshot returns a copy of the running totals.
func (r *Recorder) Snapshot() Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshot
}

// WriteTextfile writes every registered metric to path in the Prometheus text
// format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, r.registry)
}

func label(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}
