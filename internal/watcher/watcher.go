// Package watcher notifies the engine when a watched log file grows, so a
// tailed view can extend its line-break index without a full rescan.
package watcher

// Watcher observes registered files for appended bytes and reports growth
// through the Events channel. Two implementations exist: an event-driven
// one backed by fsnotify, and a polling one used when fsnotify cannot be
// initialized. Both satisfy this same interface and the same delivery
// guarantee: Growth events for a single path are never reordered or lost,
// though adjacent writes may be coalesced into one event carrying the
// newest known size.
type Watcher interface {
	// Add begins watching path, starting from the given known size.
	Add(path string, knownSize int64) error
	// Events delivers growth and error notifications.
	Events() <-chan Event
	// Close stops watching every registered file and releases resources.
	Close() error
}

// EventKind distinguishes the two notification shapes a Watcher emits.
type EventKind int

const (
	// Growth reports that Path has grown to Size bytes.
	Growth EventKind = iota
	// Error reports that Path could no longer be watched (e.g. removed).
	Error
)

// Event is a single notification from a Watcher.
type Event struct {
	Kind EventKind
	Path string
	Size int64
	Err  error
}
