package build

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nebulabroadcast/html-template-builder/internal/errors"
	"github.com/nebulabroadcast/html-template-builder/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	names []string
	err   error
}

func (l stubLister) List() ([]string, error) { return l.names, l.err }

// funcCompiler adapts a function to TemplateCompiler.
type funcCompiler func(ctx context.Context, name string) (*BuildOutput, error)

func (f funcCompiler) Compile(ctx context.Context, name string) (*BuildOutput, error) {
	return f(ctx, name)
}

func okCompiler() funcCompiler {
	return func(_ context.Context, name string) (*BuildOutput, error) {
		return &BuildOutput{Name: name}, nil
	}
}

func TestBuildAllIsolatesFailures(t *testing.T) {
	compiler := funcCompiler(func(_ context.Context, name string) (*BuildOutput, error) {
		switch name {
		case "broken-sass":
			return nil, errors.NewStylesheetError("SASS_COMPILE", "stylesheet failed to compile", stderrors.New("boom")).WithTemplate(name)
		case "panics":
			panic("unexpected nil")
		}
		return &BuildOutput{Name: name}, nil
	})

	b := NewBuilder(compiler, stubLister{names: []string{"a", "broken-sass", "panics", "z"}}, nil)

	results, err := b.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.True(t, errors.IsStylesheetError(results[1].Err))
	assert.Equal(t, errors.KindInternal, errors.KindOf(results[2].Err))
	assert.Equal(t, "panics", errors.TemplateOf(results[2].Err))
	assert.True(t, results[3].OK())
	assert.Equal(t, "z", results[3].Output.Name)
}

func TestBuildAllListError(t *testing.T) {
	listErr := errors.NewFileSystemError("REGISTRY_SCAN", "cannot list", nil)
	b := NewBuilder(okCompiler(), stubLister{err: listErr}, nil)

	results, err := b.BuildAll(context.Background())
	assert.Nil(t, results)
	assert.ErrorIs(t, err, listErr)
}

func TestBuildAllStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	compiler := funcCompiler(func(_ context.Context, name string) (*BuildOutput, error) {
		cancel()
		return &BuildOutput{Name: name}, nil
	})

	b := NewBuilder(compiler, stubLister{names: []string{"a", "b", "c"}}, nil)
	results, err := b.BuildAll(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBuildNotifiesCallbacks(t *testing.T) {
	b := NewBuilder(okCompiler(), stubLister{names: []string{"a", "b"}}, nil)

	var mu sync.Mutex
	var seen []string
	b.OnBuild(func(r BuildResult) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r.Name)
		assert.False(t, r.Started.IsZero())
	})

	_, err := b.BuildAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestBuildSerialisesSameTemplate(t *testing.T) {
	var inFlight, maxInFlight int32
	compiler := funcCompiler(func(_ context.Context, name string) (*BuildOutput, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &BuildOutput{Name: name}, nil
	})

	b := NewBuilder(compiler, stubLister{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Build(context.Background(), "same")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestBuildRecoversMarkupPanic(t *testing.T) {
	f := newFixture(t)
	f.template(t, "tpl", map[string]string{"template.html": "<p></p>"})

	p := testProcessors()
	p.Markup = panickingMarkup{}
	b := NewBuilder(f.compiler(t, p), registry.New(f.src), nil)

	r := b.Build(context.Background(), "tpl")
	require.Error(t, r.Err)
	assert.Equal(t, errors.KindInternal, errors.KindOf(r.Err))
	assert.Nil(t, r.Output)
}

func TestBuildWithRegistry(t *testing.T) {
	f := newFixture(t)
	f.template(t, "one", map[string]string{"template.html": "<p>1</p>"})
	f.template(t, "two", map[string]string{"manifest.json": "not json"})
	f.template(t, "three", map[string]string{"template.html": "<p>3</p>"})

	b := NewBuilder(f.compiler(t, testProcessors()), registry.New(f.src), nil)
	results, err := b.BuildAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]BuildResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.True(t, byName["one"].OK())
	assert.True(t, byName["three"].OK())
	assert.True(t, errors.IsManifestParseError(byName["two"].Err))

	assert.Contains(t, f.read(t, "one/one.html"), "<p>1</p>")
	assert.Contains(t, f.read(t, "three/three.html"), "<p>3</p>")
}
