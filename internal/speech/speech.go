// Package speech defines the optional dictation and read-aloud
// capabilities an interview can use. Both are injected; a nil capability
// means the environment does not provide it.
package speech

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by capabilities the environment lacks.
var ErrUnsupported = errors.New("speech capability not supported")

// Fragment is one recognition event from a dictation stream.
// Interim fragments are live guesses that a later fragment replaces;
// only final fragments are committed to an answer.
type Fragment struct {
	Text  string
	Final bool

	// Err reports a recognition failure. The stream closes after it.
	Err error
}

// Dictation converts live speech into text fragments.
type Dictation interface {
	// Start begins capture and returns the fragment stream. The stream is
	// closed when capture ends, whether through Stop, ctx cancellation, or
	// a recognition error.
	Start(ctx context.Context) (<-chan Fragment, error)

	// Stop ends capture. Stopping an idle dictation is a no-op.
	Stop() error
}

// Speaker reads text aloud. Playback is fire-and-forget; onStart and
// onEnd may be called from another goroutine and may be nil.
type Speaker interface {
	Speak(text string, onStart, onEnd func())
	Cancel()
}

// Capabilities records which speech features were provided at
// construction time.
type Capabilities struct {
	Dictation bool
	Playback  bool
}

// Detect reports the capabilities behind the given implementations.
func Detect(d Dictation, s Speaker) Capabilities {
	return Capabilities{Dictation: d != nil, Playback: s != nil}
}
