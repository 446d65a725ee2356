package structspec

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/structspec/structspec/layout"
	"github.com/structspec/structspec/parser"
	"github.com/structspec/structspec/reporter"
)

// Compiler handles compilation tasks, turning specification documents into
// compiled layout sets ready for backend emission.
//
// Compilation involves three steps for each document:
//  1. Resolving the document path to source via the Resolver.
//  2. Parsing the source into the spec object model.
//  3. Compiling the model into resolved layouts and size expressions.
//
// Documents are independent of one another, so multiple documents compile
// in parallel up to MaxParallelism.
type Compiler struct {
	// Resolver locates the documents to compile. If nil, a SourceResolver
	// reading from the working directory is used.
	Resolver Resolver
	// MaxParallelism is the maximum number of documents compiled
	// concurrently. If unspecified or non-positive,
	// min(runtime.NumCPU(), runtime.GOMAXPROCS(-1)) is used.
	MaxParallelism int
	// Reporter receives every compile error and warning. If unspecified, a
	// default reporter is used that fails compilation on the first error. A
	// *reporter.Collector gathers the complete error list instead.
	Reporter reporter.Reporter
}

// Compile compiles the named specification documents into layout sets,
// returned in the order the names were given. If any document fails, the
// returned error is the first failure (or reporter.ErrInvalidSpec when the
// configured reporter collected the errors instead of aborting).
func (c *Compiler) Compile(ctx context.Context, files ...string) ([]*layout.Set, error) {
	if len(files) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	par := c.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		if cpus := runtime.NumCPU(); par > cpus {
			par = cpus
		}
	}

	res := c.Resolver
	if res == nil {
		res = &SourceResolver{}
	}

	e := executor{
		res:     res,
		h:       reporter.NewHandler(c.Reporter),
		s:       semaphore.NewWeighted(int64(par)),
		results: map[string]*result{},
	}

	results := make([]*result, len(files))
	for i, f := range files {
		results[i] = e.compile(ctx, f)
	}

	sets := make([]*layout.Set, len(files))
	for i, r := range results {
		select {
		case <-r.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if r.err != nil {
			return nil, r.err
		}
		sets[i] = r.set
	}

	return sets, nil
}

type result struct {
	ready chan struct{}
	set   *layout.Set
	err   error
}

func (r *result) fail(err error) {
	r.err = err
	close(r.ready)
}

func (r *result) complete(s *layout.Set) {
	r.set = s
	close(r.ready)
}

type executor struct {
	res Resolver
	h   *reporter.Handler
	s   *semaphore.Weighted

	mu      sync.Mutex
	results map[string]*result
}

func (e *executor) compile(ctx context.Context, file string) *result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r := e.results[file]; r != nil {
		return r
	}

	r := &result{ready: make(chan struct{})}
	e.results[file] = r
	go e.doCompile(ctx, file, r)
	return r
}

func (e *executor) doCompile(ctx context.Context, file string, r *result) {
	if err := e.s.Acquire(ctx, 1); err != nil {
		r.fail(err)
		return
	}
	defer e.s.Release(1)

	sr, err := e.res.FindSpecByPath(file)
	if err != nil {
		r.fail(err)
		return
	}
	defer func() {
		if c, ok := sr.Source.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	doc := sr.Spec
	if doc == nil {
		if sr.Source == nil {
			r.fail(fmt.Errorf("search result for %q contains neither source nor a loaded specification", file))
			return
		}
		doc, err = parser.Parse(file, sr.Source, e.h)
		if err != nil {
			r.fail(err)
			return
		}
	}

	set, err := layout.Compile(doc, e.h)
	if err != nil {
		r.fail(err)
		return
	}
	r.complete(set)
}
