// Package eventlog keeps the timestamped, categorised traffic log shown on
// the simulator's log tab. Appending never blocks the caller beyond a
// mutex; the view is bounded to the most recent entries.
package eventlog

import (
	"fmt"
	"sync"
	"time"
)

// Category tags a log entry by traffic direction or severity.
type Category string

const (
	Info  Category = "INFO"
	Rx    Category = "RX"
	Tx    Category = "TX"
	Pi    Category = "PI"
	Warn  Category = "WARN"
	Error Category = "ERROR"
)

// MaxEntries bounds the retained view.
const MaxEntries = 1000

// Entry is one log line.
type Entry struct {
	Time     time.Time
	Category Category
	Text     string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] [%s] %s", e.Time.Format("15:04:05.000"), e.Category, e.Text)
}

// Log is an append-only, bounded event log.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append adds a formatted entry, evicting the oldest past MaxEntries.
func (l *Log) Append(cat Category, format string, args ...any) {
	e := Entry{Time: time.Now(), Category: cat, Text: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[len(l.entries)-MaxEntries:]
	}
	l.mu.Unlock()
}

func (l *Log) Infof(format string, args ...any)  { l.Append(Info, format, args...) }
func (l *Log) Rxf(format string, args ...any)    { l.Append(Rx, format, args...) }
func (l *Log) Txf(format string, args ...any)    { l.Append(Tx, format, args...) }
func (l *Log) Pif(format string, args ...any)    { l.Append(Pi, format, args...) }
func (l *Log) Warnf(format string, args ...any)  { l.Append(Warn, format, args...) }
func (l *Log) Errorf(format string, args ...any) { l.Append(Error, format, args...) }

// Snapshot copies the retained entries, oldest first.
func (l *Log) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear discards all retained entries.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Len reports the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
