// Package diag collects parse diagnostics from many units and renders them
// for people.
package diag

import (
	"cmp"
	"sync"

	"github.com/tidwall/btree"

	"github.com/dhamidi/docfront/java/parser"
)

type entry struct {
	file   string
	offset int
	seq    int
	diag   parser.Diagnostic
}

func compareEntries(a, b entry) int {
	if c := cmp.Compare(a.file, b.file); c != 0 {
		return c
	}
	if c := cmp.Compare(a.offset, b.offset); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// Collector is a concurrency-safe diagnostics sink. Diagnostics come back
// ordered by file and offset no matter which goroutine reported them.
//
// A zero value is not ready to use; call NewCollector.
type Collector struct {
	mu      sync.Mutex
	tree    *btree.BTreeG[entry]
	sources map[string]*parser.Source
	seq     int
}

func NewCollector() *Collector {
	return &Collector{
		tree: btree.NewBTreeGOptions(func(a, b entry) bool {
			return compareEntries(a, b) < 0
		}, btree.Options{NoLocks: true}),
		sources: make(map[string]*parser.Source),
	}
}

// Report replaces everything known about src's file with diags. src is kept
// so that the diagnostics can be rendered with an excerpt later.
func (c *Collector) Report(src *parser.Source, diags []parser.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked(src.File())
	c.sources[src.File()] = src
	for _, d := range diags {
		c.addLocked(src.File(), d)
	}
}

// Add records diagnostics under the file named by their position.
func (c *Collector) Add(diags ...parser.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range diags {
		c.addLocked(d.Pos.File, d)
	}
}

func (c *Collector) addLocked(file string, d parser.Diagnostic) {
	c.seq++
	c.tree.Set(entry{file: file, offset: d.Pos.Offset, seq: c.seq, diag: d})
}

// Clear forgets file and its diagnostics.
func (c *Collector) Clear(file string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked(file)
	delete(c.sources, file)
}

func (c *Collector) clearLocked(file string) {
	var stale []entry
	c.tree.Ascend(entry{file: file, offset: -1 << 62}, func(e entry) bool {
		if e.file != file {
			return false
		}
		stale = append(stale, e)
		return true
	})
	for _, e := range stale {
		c.tree.Delete(e)
	}
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Len()
}

// All returns every diagnostic ordered by file, then offset, then the order
// in which they were reported.
func (c *Collector) All() []parser.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	diags := make([]parser.Diagnostic, 0, c.tree.Len())
	c.tree.Scan(func(e entry) bool {
		diags = append(diags, e.diag)
		return true
	})
	return diags
}

// File returns the diagnostics of one file in offset order.
func (c *Collector) File(file string) []parser.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()

	var diags []parser.Diagnostic
	c.tree.Ascend(entry{file: file, offset: -1 << 62}, func(e entry) bool {
		if e.file != file {
			return false
		}
		diags = append(diags, e.diag)
		return true
	})
	return diags
}

// Files returns the names of the files that have diagnostics, sorted.
func (c *Collector) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var files []string
	c.tree.Scan(func(e entry) bool {
		if len(files) == 0 || files[len(files)-1] != e.file {
			files = append(files, e.file)
		}
		return true
	})
	return files
}

// Source returns the text last reported for file, or nil.
func (c *Collector) Source(file string) *parser.Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sources[file]
}
