package speech

import (
	"context"
	"sync"
	"time"
)

// ScriptedDictation is a Dictation whose fragments are pushed by the
// caller. It backs tests and non-interactive runs.
type ScriptedDictation struct {
	mu       sync.Mutex
	cur      *stream
	started  int
	stopped  int
	startErr error
	flush    *string

	// sendMu keeps a stream open while Emit is sending on it.
	sendMu sync.RWMutex
}

type stream struct {
	ch   chan Fragment
	quit chan struct{}
	once sync.Once
}

// NewScriptedDictation returns an idle scripted dictation.
func NewScriptedDictation() *ScriptedDictation {
	return &ScriptedDictation{}
}

// FailStart makes the next Start calls return err.
func (d *ScriptedDictation) FailStart(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startErr = err
}

func (d *ScriptedDictation) Start(ctx context.Context) (<-chan Fragment, error) {
	d.mu.Lock()
	if d.startErr != nil {
		err := d.startErr
		d.mu.Unlock()
		return nil, err
	}
	prev := d.cur
	s := &stream{ch: make(chan Fragment), quit: make(chan struct{})}
	d.cur = s
	d.started++
	d.mu.Unlock()

	if prev != nil {
		d.closeStream(prev)
	}

	go func() {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			if d.cur == s {
				d.cur = nil
			}
			d.mu.Unlock()
			d.closeStream(s)
		case <-s.quit:
		}
	}()
	return s.ch, nil
}

// FlushOnStop makes the next Stop deliver a final fragment with text
// before closing the stream, the way recognizers emit their last result.
func (d *ScriptedDictation) FlushOnStop(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flush = &text
}

func (d *ScriptedDictation) Stop() error {
	d.mu.Lock()
	flush := d.flush
	d.flush = nil
	d.mu.Unlock()
	if flush != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		d.Emit(ctx, Fragment{Text: *flush, Final: true})
		cancel()
	}

	if d.detach() {
		d.mu.Lock()
		d.stopped++
		d.mu.Unlock()
	}
	return nil
}

// End closes the active stream as if the recognizer stopped on its own.
func (d *ScriptedDictation) End() {
	d.detach()
}

func (d *ScriptedDictation) detach() bool {
	d.mu.Lock()
	s := d.cur
	d.cur = nil
	d.mu.Unlock()
	if s == nil {
		return false
	}
	d.closeStream(s)
	return true
}

func (d *ScriptedDictation) closeStream(s *stream) {
	s.once.Do(func() {
		close(s.quit)
		d.sendMu.Lock()
		close(s.ch)
		d.sendMu.Unlock()
	})
}

// Emit delivers f to the active stream and reports whether a consumer
// received it. It blocks until the fragment is taken, the stream closes,
// or ctx is done.
func (d *ScriptedDictation) Emit(ctx context.Context, f Fragment) bool {
	d.mu.Lock()
	s := d.cur
	d.mu.Unlock()
	if s == nil {
		return false
	}

	d.sendMu.RLock()
	defer d.sendMu.RUnlock()
	select {
	case <-s.quit:
		return false
	default:
	}
	select {
	case s.ch <- f:
		return true
	case <-s.quit:
		return false
	case <-ctx.Done():
		return false
	}
}

// Active reports whether a stream is open.
func (d *ScriptedDictation) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cur != nil
}

// Starts returns the number of successful Start calls.
func (d *ScriptedDictation) Starts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Stops returns the number of Stop calls that closed a stream.
func (d *ScriptedDictation) Stops() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// RecordingSpeaker is a Speaker that records requests and lets the caller
// drive playback callbacks.
type RecordingSpeaker struct {
	mu      sync.Mutex
	Spoken  []string
	Cancels int
	onEnd   func()
}

func (s *RecordingSpeaker) Speak(text string, onStart, onEnd func()) {
	s.mu.Lock()
	s.Spoken = append(s.Spoken, text)
	s.onEnd = onEnd
	s.mu.Unlock()
	if onStart != nil {
		onStart()
	}
}

func (s *RecordingSpeaker) Cancel() {
	s.mu.Lock()
	s.Cancels++
	s.onEnd = nil
	s.mu.Unlock()
}

// Finish simulates the end of the current utterance.
func (s *RecordingSpeaker) Finish() {
	s.mu.Lock()
	onEnd := s.onEnd
	s.onEnd = nil
	s.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
}
