package tableview

import (
	"sync"
	"time"
)

type debounceEntry struct {
	timer *time.Timer
	ch    chan string
	value string
}

// Debouncer coalesces rapid submissions per key. Each Submit supersedes the
// previous pending one for that key; after the quiet period only the latest
// submission's channel yields its value, every earlier channel is closed
// without one. Keys are independent.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	pending  map[string]*debounceEntry
	stopped  bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]*debounceEntry),
	}
}

// Submit registers value for key and returns a channel that either yields
// the value once the quiet period elapses (this submission won) or closes
// empty (a later submission superseded it).
func (d *Debouncer) Submit(key, value string) <-chan string {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry := &debounceEntry{
		ch:    make(chan string, 1),
		value: value,
	}

	if d.stopped {
		close(entry.ch)
		return entry.ch
	}

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		close(prev.ch)
	}

	d.pending[key] = entry
	entry.timer = time.AfterFunc(d.interval, func() {
		d.fire(key, entry)
	})
	return entry.ch
}

func (d *Debouncer) fire(key string, entry *debounceEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A newer submission may have replaced this entry between the timer
	// firing and the lock being acquired.
	if d.pending[key] != entry {
		return
	}
	delete(d.pending, key)

	entry.ch <- entry.value
	close(entry.ch)
}

// Stop cancels every pending submission. Their channels close empty.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true

	for key, entry := range d.pending {
		entry.timer.Stop()
		close(entry.ch)
		delete(d.pending, key)
	}
}
