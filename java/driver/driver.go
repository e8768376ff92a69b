// Package driver parses many compilation units in parallel. Each unit gets
// its own source buffer, token stream and memo table; the diagnostics sink
// is the only state the units share.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dhamidi/docfront/java/parser"
)

var log = commonlog.GetLogger("docfront.driver")

// Sink receives the diagnostics of every unit as soon as it is parsed.
// Implementations must be safe for concurrent use.
type Sink interface {
	Report(src *parser.Source, diags []parser.Diagnostic)
}

type Unit struct {
	Path        string
	Source      *parser.Source
	Tree        *parser.Node
	Diagnostics []parser.Diagnostic
	Stats       parser.Stats
	// Err is a read error or the reason the parse was abandoned.
	Err      error
	Duration time.Duration
}

// Failed reports whether the unit could not be read, was abandoned, or has
// syntax errors.
func (u *Unit) Failed() bool {
	return u.Err != nil || len(u.Diagnostics) > 0
}

// Run parses every file selected by cfg. A unit that fails to read or parse
// is recorded in its Unit and does not stop the others. The returned error
// is non-nil only when cfg is invalid, a root cannot be walked or ctx is
// done; units parsed so far are returned with it.
func Run(ctx context.Context, cfg Config, sink Sink) ([]*Unit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	paths, err := Expand(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("parsing %d files with %d jobs", len(paths), cfg.Jobs)

	units := make([]*Unit, len(paths))
	sem := semaphore.NewWeighted(int64(cfg.Jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			units[i] = ParseFile(gctx, cfg, path, sink)
			// A unit's own timeout is recorded in the unit; only the
			// batch context stops the run.
			return gctx.Err()
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	done := units[:0]
	for _, u := range units {
		if u != nil {
			done = append(done, u)
		}
	}
	if runErr != nil {
		log.Warningf("run stopped after %d of %d files: %s", len(done), len(paths), runErr)
	}
	return done, runErr
}

// ParseFile reads and parses one unit. cfg.UnitTimeout, when set, bounds
// the parse.
func ParseFile(ctx context.Context, cfg Config, path string, sink Sink) *Unit {
	start := time.Now()
	unit := &Unit{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		unit.Err = fmt.Errorf("read %s: %w", path, err)
		unit.Duration = time.Since(start)
		log.Errorf("%s", unit.Err)
		return unit
	}

	if cfg.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.UnitTimeout)
		defer cancel()
	}

	src := parser.NewSource(path, data)
	res := parser.Parse(ctx, src, cfg.parserOptions(path)...)
	unit.Source = src
	unit.Tree = res.Unit
	unit.Diagnostics = res.Diagnostics
	unit.Stats = res.Stats
	unit.Err = res.Err
	unit.Duration = time.Since(start)

	if sink != nil {
		sink.Report(src, res.Diagnostics)
	}
	if unit.Err != nil {
		log.Warningf("%s: %s", path, unit.Err)
	}
	log.Debugf("%s: %d tokens, %d diagnostics, %d speculations, %d memo hits in %s",
		path, res.Stats.Tokens, len(res.Diagnostics), res.Stats.Speculations, res.Stats.MemoHits, unit.Duration)
	return unit
}

// Expand lists the files under cfg.Roots that match an Include pattern and
// no Exclude pattern, sorted and without duplicates. A root that names a
// file is taken as is. Directories matching an Exclude pattern are not
// entered.
func Expand(cfg Config) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, root := range cfg.Roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("root %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					log.Warningf("skipping %s: %s", path, err)
					return nil
				}
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if rel == "." {
				return nil
			}
			if matchAny(cfg.Exclude, rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && matchAny(cfg.Include, rel) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
