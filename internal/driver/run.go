package driver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"vigil/internal/diag"
)

// OutputFileName is the file the generator owns inside each package.
const OutputFileName = "vigil_generated.go"

const defaultMaxDiagnostics = 256

// Options configures one generation run.
type Options struct {
	// Dir is the working directory for package resolution.
	Dir string
	// Patterns are go/packages patterns; defaults to ./...
	Patterns []string
	// Jobs caps pipeline parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds each package's bag.
	MaxDiagnostics int
	// Cache, when non-nil, memoizes per-package results by input digest.
	Cache *DiskCache
	// DryRun analyzes and diagnoses but writes nothing.
	DryRun bool
}

// Result is the outcome for one package.
type Result struct {
	PkgPath string
	Dir     string
	// Output is the generated file text; empty when no class was
	// accepted in this package.
	Output string
	// Wrote and Removed record what happened to the output file.
	Wrote     bool
	Removed   bool
	FromCache bool
	Bag       *diag.Bag
}

// Run loads the requested packages and runs the pipeline on each in
// parallel. Results come back in package-path order. Diagnostics never
// abort the run; only host-toolchain and I/O failures do.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	pkgs, err := load(ctx, opts.Dir, opts.Patterns)
	if err != nil {
		return nil, err
	}

	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Index per goroutine is unique; no mutex needed.
	results := make([]Result, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(pkgs), 1)))

	for i, pkg := range pkgs {
		i, pkg := i, pkg
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := runPackage(pkg, maxDiags, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runPackage(pkg *packages.Package, maxDiags int, opts Options) (Result, error) {
	res := Result{
		PkgPath: pkg.PkgPath,
		Bag:     diag.NewBag(maxDiags),
	}
	if len(pkg.CompiledGoFiles) == 0 {
		return res, nil
	}
	res.Dir = filepath.Dir(pkg.CompiledGoFiles[0])

	var key Digest
	if opts.Cache != nil {
		d, err := packageDigest(pkg.PkgPath, pkg.CompiledGoFiles, OutputFileName)
		if err != nil {
			return res, err
		}
		key = d
		var payload DiskPayload
		ok, err := opts.Cache.Get(key, &payload)
		if err != nil {
			return res, err
		}
		if ok && payload.PkgPath == pkg.PkgPath {
			res.Output = payload.Output
			res.FromCache = true
			for _, d := range payload.Diags {
				res.Bag.Add(d)
			}
			return res, writeOutput(&res, opts)
		}
	}

	out, err := Analyze(pkg.Fset, pkg.Syntax, pkg.TypesInfo, pkg.Types, res.Bag)
	if err != nil {
		return res, err
	}
	res.Output = out

	if opts.Cache != nil {
		payload := &DiskPayload{
			Schema:  diskCacheSchemaVersion,
			PkgPath: pkg.PkgPath,
			Output:  out,
			Diags:   append([]diag.Diagnostic(nil), res.Bag.Items()...),
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			return res, err
		}
	}
	return res, writeOutput(&res, opts)
}

// writeOutput materializes the result on disk: writes the generated
// file, or removes a stale one when nothing was accepted this run.
func writeOutput(res *Result, opts Options) error {
	if opts.DryRun {
		return nil
	}
	path := filepath.Join(res.Dir, OutputFileName)
	if res.Output == "" {
		err := os.Remove(path)
		if err == nil {
			res.Removed = true
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && string(prev) == res.Output {
		return nil // up to date, keep mtime stable
	}
	if err := os.WriteFile(path, []byte(res.Output), 0o644); err != nil {
		return err
	}
	res.Wrote = true
	return nil
}
