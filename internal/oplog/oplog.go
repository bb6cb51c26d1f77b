// Package oplog records processed operations and summarises them.
package oplog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one processed operation.
type Entry struct {
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Elapsed   time.Duration `json:"elapsed"`
}

// String formats the entry as "[15:04:05] Op - N ms".
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s - %d ms", e.Timestamp.Format("15:04:05"), e.Operation, e.Elapsed.Milliseconds())
}

// Log is an append-only, concurrency-safe operation log.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// New creates an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// SetClock replaces the timestamp source.
func (l *Log) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Record appends an entry and returns it.
func (l *Log) Record(op string, elapsed time.Duration) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{Timestamp: l.now(), Operation: op, Elapsed: elapsed}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of the log, most recent first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// ImageInfo describes the image a report is written for.
type ImageInfo struct {
	Width, Height int
	DPI           float64
	Format        string
}

// Report renders a Markdown summary of the image and the operations
// applied to it.
func Report(info ImageInfo, entries []Entry) string {
	var b strings.Builder
	b.WriteString("## Image Analysis Report\n")
	b.WriteString("---\n")
	fmt.Fprintf(&b, "**Image size:** %d x %d\n", info.Width, info.Height)
	fmt.Fprintf(&b, "**DPI:** %g x %g\n", info.DPI, info.DPI)
	format := info.Format
	if format == "" {
		format = "Bgra32"
	}
	fmt.Fprintf(&b, "**Format:** %s\n", format)
	b.WriteString("\n")

	b.WriteString("## Applied Filters and Operations\n")
	b.WriteString("---\n")
	if len(entries) == 0 {
		b.WriteString("- No filters applied.\n")
		return b.String()
	}

	counts := make(map[string]int)
	var total time.Duration
	for _, e := range entries {
		counts[e.Operation]++
		total += e.Elapsed
	}
	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if counts[ops[i]] != counts[ops[j]] {
			return counts[ops[i]] > counts[ops[j]]
		}
		return ops[i] < ops[j]
	})
	for _, op := range ops {
		fmt.Fprintf(&b, "- **%s:** %d times\n", op, counts[op])
	}
	fmt.Fprintf(&b, "\n**Total processing time:** %d ms\n", total.Milliseconds())
	return b.String()
}
