package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/speech"
)

// stopGrace bounds how long StopRecording waits for a stopped dictation
// stream to close by itself.
const stopGrace = 2 * time.Second

// Phase is where a question interaction stands.
type Phase int

const (
	PhaseEditing   Phase = iota // drafting, dictation allowed
	PhaseSubmitted              // answer committed; sample and validation panels available
)

func (p Phase) String() string {
	if p == PhaseSubmitted {
		return "submitted"
	}
	return "editing"
}

// Playback is what is currently being read aloud.
type Playback int

const (
	PlaybackNone Playback = iota
	PlaybackQuestion
	PlaybackAnswer
)

type questionDeps struct {
	samples   *sample.Cache
	dictation speech.Dictation
	speaker   speech.Speaker
	scorer    scoring.Scorer
	log       *zap.Logger
	onChange  func()
}

// QuestionState is the transient interaction state of the current
// question. It holds a working copy of the answer; the Controller owns the
// committed one, which Submit writes through commit.
type QuestionState struct {
	index  int
	q      question.Question
	deps   questionDeps
	commit func(index int, text string) error

	mu         sync.Mutex
	phase      Phase
	submitting bool
	closed     bool
	draft      string
	transcript string

	recording   bool
	stopCapture context.CancelFunc
	captureDone chan struct{}

	playing   Playback
	playToken int

	sample         string
	hasSample      bool
	showSample     bool
	validation     *scoring.Validation
	showValidation bool
}

func newQuestionState(index int, q question.Question, committed string, deps questionDeps, commit func(int, string) error) *QuestionState {
	return &QuestionState{
		index:  index,
		q:      q,
		deps:   deps,
		commit: commit,
		draft:  committed,
	}
}

// Index is the question's position in the session.
func (s *QuestionState) Index() int { return s.index }

// Question returns the question being answered.
func (s *QuestionState) Question() question.Question { return s.q }

func (s *QuestionState) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *QuestionState) Submitted() bool {
	return s.Phase() == PhaseSubmitted
}

// Draft returns the working answer text.
func (s *QuestionState) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Transcript returns the live dictation overlay: the text of the latest
// recognition event, interim or final.
func (s *QuestionState) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

func (s *QuestionState) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

func (s *QuestionState) Playing() Playback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Sample returns the fetched sample answer and whether its panel is shown.
func (s *QuestionState) Sample() (text string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample, s.showSample
}

// Validation returns the computed validation, nil before the first
// request, and whether its panel is shown.
func (s *QuestionState) Validation() (*scoring.Validation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validation == nil {
		return nil, false
	}
	v := *s.validation
	return &v, s.showValidation
}

// SetDraft replaces the working answer while editing.
func (s *QuestionState) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.draft = text
	return nil
}

func (s *QuestionState) editableLocked() error {
	switch {
	case s.closed:
		return ErrQuestionClosed
	case s.phase != PhaseEditing || s.submitting:
		return ErrAlreadySubmitted
	}
	return nil
}

// StartRecording begins dictation into the draft. Final fragments are
// appended in arrival order; interim fragments only update Transcript.
func (s *QuestionState) StartRecording(ctx context.Context) error {
	if s.deps.dictation == nil {
		return ErrDictationUnavailable
	}

	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.recording {
		s.mu.Unlock()
		return nil
	}

	cctx, cancel := context.WithCancel(ctx)
	ch, err := s.deps.dictation.Start(cctx)
	if err != nil {
		s.mu.Unlock()
		cancel()
		s.deps.log.Warn("dictation failed to start", zap.Error(err))
		return fmt.Errorf("start dictation: %w", err)
	}

	done := make(chan struct{})
	s.recording = true
	s.transcript = ""
	s.stopCapture = cancel
	s.captureDone = done
	s.mu.Unlock()

	go s.consume(cctx, ch, done)
	s.notify()
	return nil
}

func (s *QuestionState) consume(ctx context.Context, ch <-chan speech.Fragment, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		if s.captureDone == done {
			s.recording = false
			s.stopCapture = nil
			s.captureDone = nil
		}
		s.mu.Unlock()
		s.notify()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-ch:
			if !ok {
				return
			}
			if f.Err != nil {
				s.deps.log.Warn("dictation error", zap.Int("question", s.index), zap.Error(f.Err))
				return
			}
			s.apply(ctx, f)
		}
	}
}

func (s *QuestionState) apply(ctx context.Context, f speech.Fragment) {
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if f.Final {
		s.draft = appendDictated(s.draft, f.Text)
	}
	s.transcript = f.Text
	s.mu.Unlock()
	s.notify()
}

func appendDictated(draft, text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return draft
	case draft == "" || strings.HasSuffix(draft, " ") || strings.HasSuffix(draft, "\n"):
		return draft + text
	default:
		return draft + " " + text
	}
}

// StopRecording ends dictation and waits until no more fragments will be
// applied. Stopping while idle is a no-op.
func (s *QuestionState) StopRecording() error {
	s.mu.Lock()
	cancel, done := s.stopCapture, s.captureDone
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	// Fragments flushed by Stop are applied before the stream closes; the
	// capture context is canceled only when the stream outlives stopGrace.
	err := s.deps.dictation.Stop()
	select {
	case <-done:
	case <-time.After(stopGrace):
		cancel()
		<-done
	}
	cancel()
	if err != nil {
		return fmt.Errorf("stop dictation: %w", err)
	}
	return nil
}

// ToggleRecording starts or stops dictation.
func (s *QuestionState) ToggleRecording(ctx context.Context) error {
	if s.Recording() {
		return s.StopRecording()
	}
	return s.StartRecording(ctx)
}

// Submit commits text as the answer. Blank text is rejected with
// ErrEmptyAnswer and leaves the question editable.
func (s *QuestionState) Submit(text string) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return ErrEmptyAnswer
	}
	s.submitting = true
	s.mu.Unlock()

	if err := s.StopRecording(); err != nil {
		s.deps.log.Warn("stop dictation on submit", zap.Error(err))
	}

	if err := s.commit(s.index, text); err != nil {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.submitting = false
	s.phase = PhaseSubmitted
	s.draft = text
	s.transcript = ""
	s.mu.Unlock()

	s.deps.log.Debug("answer submitted",
		zap.Int("question", s.index),
		zap.String("answer", logger.Truncate(text, 80)))
	s.notify()
	return nil
}

// SubmitDraft submits the working answer. Dictation is stopped first so
// its last fragments are part of what gets committed.
func (s *QuestionState) SubmitDraft() error {
	if err := s.StopRecording(); err != nil {
		s.deps.log.Warn("stop dictation on submit", zap.Error(err))
	}
	return s.Submit(s.Draft())
}

// RequestSample shows the sample answer, fetching it the first time, and
// toggles its panel afterwards without fetching again.
func (s *QuestionState) RequestSample(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if err := s.reviewableLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.hasSample {
		s.showSample = !s.showSample
		visible := s.showSample
		s.mu.Unlock()
		s.notify()
		return visible, nil
	}
	s.mu.Unlock()

	if _, err := s.fetchSample(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.showSample = true
	s.mu.Unlock()
	s.notify()
	return true, nil
}

// RequestValidation scores the submitted answer the first time and toggles
// its panel afterwards without scoring again. The sample answer is fetched
// first if missing; a failed fetch is logged and does not block scoring.
func (s *QuestionState) RequestValidation(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if err := s.reviewableLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.validation != nil {
		s.showValidation = !s.showValidation
		visible := s.showValidation
		s.mu.Unlock()
		s.notify()
		return visible, nil
	}
	needSample := !s.hasSample
	answer := s.draft
	s.mu.Unlock()

	if needSample {
		if _, err := s.fetchSample(ctx); err != nil {
			s.deps.log.Warn("sample answer unavailable for validation", zap.Int("question", s.index), zap.Error(err))
		} else {
			s.mu.Lock()
			s.showSample = true
			s.mu.Unlock()
		}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	v := s.deps.scorer.Validate(answer, s.q.Category)

	s.mu.Lock()
	if s.validation == nil {
		s.validation = &v
	}
	s.showValidation = true
	s.mu.Unlock()
	s.notify()
	return true, nil
}

func (s *QuestionState) reviewableLocked() error {
	switch {
	case s.closed:
		return ErrQuestionClosed
	case s.phase != PhaseSubmitted:
		return ErrNotSubmitted
	}
	return nil
}

func (s *QuestionState) fetchSample(ctx context.Context) (string, error) {
	text, err := s.deps.samples.Get(ctx, s.q)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sample = text
	s.hasSample = true
	s.mu.Unlock()
	return text, nil
}

// ReadQuestion toggles reading the question aloud.
func (s *QuestionState) ReadQuestion() error {
	return s.toggleRead(PlaybackQuestion, s.q.Text)
}

// ReadAnswer toggles reading the draft aloud. The draft must not be blank.
func (s *QuestionState) ReadAnswer() error {
	draft := s.Draft()
	if strings.TrimSpace(draft) == "" {
		return ErrEmptyAnswer
	}
	return s.toggleRead(PlaybackAnswer, draft)
}

func (s *QuestionState) toggleRead(kind Playback, text string) error {
	sp := s.deps.speaker
	if sp == nil {
		return ErrSpeechUnavailable
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrQuestionClosed
	}
	wasPlaying := s.playing
	s.playToken++
	token := s.playToken
	s.playing = PlaybackNone
	s.mu.Unlock()

	if wasPlaying != PlaybackNone {
		sp.Cancel()
	}
	if wasPlaying == kind {
		s.notify()
		return nil
	}

	sp.Speak(text,
		func() { s.setPlaying(token, kind) },
		func() { s.setPlaying(token, PlaybackNone) },
	)
	return nil
}

func (s *QuestionState) setPlaying(token int, p Playback) {
	s.mu.Lock()
	if token != s.playToken {
		s.mu.Unlock()
		return
	}
	s.playing = p
	s.mu.Unlock()
	s.notify()
}

// close cancels dictation and playback. Fetches already in flight keep
// running and land in the session's sample cache.
func (s *QuestionState) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.playing = PlaybackNone
	s.playToken++
	s.mu.Unlock()

	if err := s.StopRecording(); err != nil {
		s.deps.log.Warn("stop dictation on leave", zap.Int("question", s.index), zap.Error(err))
	}
	if s.deps.speaker != nil {
		s.deps.speaker.Cancel()
	}
}

func (s *QuestionState) notify() {
	if s.deps.onChange != nil {
		s.deps.onChange()
	}
}
