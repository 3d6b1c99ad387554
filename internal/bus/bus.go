// Package bus implements the engine's outgoing message channel: a typed
// sum of notifications the engine posts (scan progress, new breaks, line
// reads, pointer moves, watcher errors) for a front end to drain, plus a
// dispatch queue that applies backpressure once too many messages are in
// flight.
package bus

// Message is the interface every concrete notification type implements.
// Dispatch is a type switch over the concrete type, never a dynamic
// lookup; the compiler does not check that every kind has a case.
type Message interface {
	isMessage()
}

// Coalescible is implemented by message kinds where a newer instance can
// replace an older, not-yet-delivered one of the same kind without losing
// information the consumer cares about (e.g. "pointer moved" only ever
// needs to report the latest position).
type Coalescible interface {
	Message
	// Replace reports whether next should replace this pending message
	// rather than both being delivered.
	Replace(next Message) bool
}

// Goto requests that the pointer move to an explicit absolute line
// number across the merged (or single-file) stream.
type Goto struct {
	LineNo int
}

func (Goto) isMessage() {}

// SizeChanged reports a watched file's new size. Coalescible: only the
// newest size for a given file matters.
type SizeChanged struct {
	Path string
	Size int64
}

func (SizeChanged) isMessage() {}
func (s SizeChanged) Replace(next Message) bool {
	n, ok := next.(SizeChanged)
	return ok && n.Path == s.Path
}

// FileError reports that a file could no longer be read or watched.
type FileError struct {
	Path string
	Err  error
}

func (FileError) isMessage() {}

// PendingLines reports that Count additional lines are now known but not
// yet rendered. Coalescible: only the latest count for a file matters.
type PendingLines struct {
	Path  string
	Count int
}

func (PendingLines) isMessage() {}
func (p PendingLines) Replace(next Message) bool {
	n, ok := next.(PendingLines)
	return ok && n.Path == p.Path
}

// NewBreaks delivers a batch of newly discovered line-break offsets for a
// file, along with the file size at the time of the scan and whether this
// batch arrived while the view is tailing.
type NewBreaks struct {
	Path        string
	Breaks      []int64
	ScannedSize int64
	Tail        bool
}

func (NewBreaks) isMessage() {}

// DismissOverlay asks any transient overlay (progress banner, search bar)
// to close.
type DismissOverlay struct{}

func (DismissOverlay) isMessage() {}

// TailFile toggles tail-following for the view.
type TailFile struct {
	Tail bool
}

func (TailFile) isMessage() {}

// ScanProgress reports human-readable progress of a background scan.
// FractionComplete is bytes-scanned-so-far divided by the sum of the sizes
// of every file being scanned (1.0 once every file has finished), so a UI
// collaborator can render a determinate progress bar rather than a spinner.
type ScanProgress struct {
	Message          string
	FractionComplete float64
	Complete         bool
	ScanStart        *int64 // nil unless this progress message starts a new scan pass
}

func (ScanProgress) isMessage() {}

// ScanComplete reports that the line-break and timestamp scan of every
// open file has finished. Engine.ScanAll posts one per scan with Size set
// to the combined size in bytes of the scanned files; Path is not set.
type ScanComplete struct {
	Path      string
	Size      int64
	ScanStart int64
}

func (ScanComplete) isMessage() {}

// PointerMoved reports the pointer's new absolute line number.
// Coalescible: only the latest position matters.
type PointerMoved struct {
	LineNo int
}

func (PointerMoved) isMessage() {}
func (p PointerMoved) Replace(next Message) bool {
	_, ok := next.(PointerMoved)
	return ok
}

// LineRead delivers the text of a previously requested line.
type LineRead struct {
	Path   string
	Start  int64
	End    int64
	Line   string
	Err    error
}

func (LineRead) isMessage() {}
