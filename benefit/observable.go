/*
observable.go - Injectable observable "today" value

PURPOSE:
  The UI caches "today" so every card renders against the same date, and
  refreshes it when the calendar rolls over. Rather than a module-level
  listener array, the observable is an explicitly owned value the caller
  constructs, injects, and subscribes to.
*/
package benefit

import "sync"

// ObservableDate holds a date and notifies subscribers when it changes.
// Safe for concurrent use.
type ObservableDate struct {
	mu    sync.Mutex
	value Date
	next  int
	subs  map[int]func(Date)
}

// NewObservableDate creates an observable with an initial value.
func NewObservableDate(initial Date) *ObservableDate {
	return &ObservableDate{value: initial, subs: make(map[int]func(Date))}
}

// Get returns the current value.
func (o *ObservableDate) Get() Date {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set updates the value and notifies subscribers. Setting an equal date is
// a no-op so a periodic refresher can call Set freely.
func (o *ObservableDate) Set(d Date) {
	o.mu.Lock()
	if o.value.Equal(d) {
		o.mu.Unlock()
		return
	}
	o.value = d
	fns := make([]func(Date), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	// Notify outside the lock so a subscriber can call Get or Unsubscribe.
	for _, fn := range fns {
		fn(d)
	}
}

// Subscribe registers a change callback and returns an unsubscribe func.
func (o *ObservableDate) Subscribe(fn func(Date)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.next
	o.next++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}
