package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated     = errors.New("no authenticated user")
	ErrQuestionsUnavailable = errors.New("questions unavailable")
	ErrEmptyAnswer          = errors.New("answer is empty")
	ErrNotSubmitted         = errors.New("question not submitted yet")
	ErrAlreadySubmitted     = errors.New("question already submitted")
	ErrIndexOutOfRange      = errors.New("question index out of range")
	ErrSessionCompleted     = errors.New("assessment already completed")
	ErrDictationUnavailable = errors.New("dictation is not available")
	ErrSpeechUnavailable    = errors.New("speech playback is not available")
	ErrQuestionClosed       = errors.New("question is no longer current")
	ErrPersistFailed        = errors.New("failed to store assessment")
)

// FinalizeError reports a failed finalize. The session stays in progress
// and Finalize may be called again when Retryable is set.
type FinalizeError struct {
	Retryable bool
	Err       error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize assessment: %v", e.Err)
}

func (e *FinalizeError) Unwrap() []error {
	return []error{ErrPersistFailed, e.Err}
}
