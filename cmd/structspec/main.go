// Command structspec processes binary packet structure specifications.
// Given input documents describing the format of binary structures, it
// validates them and outputs basic handlers in the requested target
// languages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/structspec/structspec"
	"github.com/structspec/structspec/backend"
	"github.com/structspec/structspec/layout"
	"github.com/structspec/structspec/reporter"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "structspec: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("structspec", flag.ExitOnError)
	var (
		specs    = fs.String("specification", "specification.yaml", "specification file(s) defining binary packet formats; glob patterns (including **) are expanded")
		langs    = fs.String("languages", "c,python", "comma-separated list of languages to output")
		outDir   = fs.String("output", ".", "directory generated files are written to")
		identify = fs.Bool("include-identifier", false, "include a packet-name identifier in unpacked output")
		verbose  = fs.Bool("verbose", false, "make output more verbose")
		parallel = fs.Int("parallelism", 0, "maximum documents compiled concurrently (0 means one per CPU)")
		showVer  = fs.Bool("version", false, "print the version and exit")
	)
	fs.StringVar(specs, "s", *specs, "shorthand for -specification")
	fs.StringVar(langs, "l", *langs, "shorthand for -languages")
	fs.StringVar(outDir, "o", *outDir, "shorthand for -output")
	fs.BoolVar(verbose, "v", *verbose, "shorthand for -verbose")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVer {
		fmt.Println(version)
		return nil
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer log.Sync()
	}

	backends, err := selectBackends(*langs)
	if err != nil {
		return err
	}

	files, err := expandGlobs(strings.Split(*specs, ","))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no specification files match %q", *specs)
	}
	log.Debug("compiling", zap.Strings("files", files))

	var coll reporter.Collector
	compiler := structspec.Compiler{
		Reporter:       &coll,
		MaxParallelism: *parallel,
	}
	sets, err := compiler.Compile(context.Background(), files...)
	for _, warn := range coll.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %v\n", warn)
	}
	if err != nil {
		for _, e := range coll.Errors() {
			fmt.Fprintf(os.Stderr, "error: %v\n", e)
		}
		return fmt.Errorf("compilation failed")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	opts := backend.Options{
		IncludeIdentifier: *identify,
		Verbose:           *verbose,
		Logger:            log,
	}
	for i, set := range sets {
		base := strings.TrimSuffix(filepath.Base(files[i]), filepath.Ext(files[i]))
		for _, b := range backends {
			out := filepath.Join(*outDir, base+"."+b.FileExtension())
			if err := emitFile(b, out, set, opts); err != nil {
				return err
			}
			log.Info("wrote output", zap.String("backend", b.Name()), zap.String("file", out))
		}
	}
	return nil
}

func selectBackends(langs string) ([]backend.Backend, error) {
	var out []backend.Backend
	for _, name := range strings.Split(langs, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		b := structspec.BackendByName(name)
		if b == nil {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no languages selected")
	}
	return out, nil
}

func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		matches, err := doublestar.FilepathGlob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pat, err)
		}
		if matches == nil && !strings.ContainsAny(pat, "*?[{") {
			// a literal path gets reported by the resolver instead
			matches = []string{pat}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func emitFile(b backend.Backend, path string, set *layout.Set, opts backend.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.Emit(f, set, opts); err != nil {
		f.Close()
		return fmt.Errorf("emitting %s: %w", path, err)
	}
	return f.Close()
}
