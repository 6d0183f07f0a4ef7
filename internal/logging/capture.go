package logging

import "sync"

// Entry is a single record collected by a Capture logger.
type Entry struct {
	Level  Level
	Msg    string
	Fields []Field
}

// Capture retains log entries in memory so tests can assert on them.
// Derived captures from With share the parent's mutex and entry slice, so
// concurrent records through any of them stay consistent.
type Capture struct {
	mu      *sync.Mutex
	with    []Field
	entries *[]Entry
}

// NewCapture returns a logger that records every entry regardless of level.
func NewCapture() *Capture {
	return &Capture{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (c *Capture) record(level Level, msg string, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := append(append([]Field{}, c.with...), fields...)
	*c.entries = append(*c.entries, Entry{Level: level, Msg: msg, Fields: all})
}

func (c *Capture) Debug(msg string, fields ...Field) { c.record(Debug, msg, fields) }
func (c *Capture) Info(msg string, fields ...Field)  { c.record(Info, msg, fields) }
func (c *Capture) Warn(msg string, fields ...Field)  { c.record(Warn, msg, fields) }
func (c *Capture) Error(msg string, fields ...Field) { c.record(Error, msg, fields) }

func (c *Capture) With(fields ...Field) Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Capture{
		mu:      c.mu,
		with:    append(append([]Field{}, c.with...), fields...),
		entries: c.entries,
	}
}

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry{}, *c.entries...)
}

// CountLevel returns how many recorded entries carry the given level.
func (c *Capture) CountLevel(level Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range *c.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
