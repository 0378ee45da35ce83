package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/config"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/ui/components"
)

const (
	PromptWrite        = "Write answer"
	PromptEdit         = "Edit answer"
	PromptSubmit       = "Submit answer"
	PromptRecord       = "Start dictation"
	PromptStopRecord   = "Stop dictation"
	PromptReadQuestion = "Read question aloud"
	PromptReadAnswer   = "Read answer aloud"
	PromptSample       = "Show sample answer"
	PromptHideSample   = "Hide sample answer"
	PromptValidate     = "Check my answer"
	PromptHideValidate = "Hide answer check"
	PromptNext         = "Next question"
	PromptPrevious     = "Previous question"
	PromptFinish       = "Finish assessment"
	PromptRetry        = "Retry saving"
	PromptQuit         = "Quit without saving"

	cardWidth = 72
)

var interviewCmd = &cobra.Command{
	Use:       "interview [technical|behavioral|managerial]",
	Short:     "Take a five-question mock interview",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(question.CategoryTechnical), string(question.CategoryBehavioral), string(question.CategoryManagerial)},
	RunE: func(cmd *cobra.Command, args []string) error {
		var category string
		if len(args) == 1 {
			category = args[0]
		}
		return runInterview(cmd, category)
	},
}

// runInterview starts an assessment of category, asking for one when it
// is empty, and drives it until it is finalized or abandoned.
func runInterview(cmd *cobra.Command, category string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	if category == "" {
		category, err = selectCategory()
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	ctrl, err := session.Start(ctx, a.SessionOptions(nil, nil), question.Category(category))
	if errors.Is(err, session.ErrNotAuthenticated) {
		return fmt.Errorf("%w: set user.id in %s.yaml or pass --user", err, config.AppName)
	}
	if err != nil {
		return err
	}
	defer ctrl.Close()

	r := &interviewRunner{ctrl: ctrl, log: a.Log, out: cmd.OutOrStdout()}
	res, err := r.run(ctx)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Fprintln(r.out, components.Notice("Assessment abandoned; nothing was saved.", false))
		return nil
	}
	fmt.Fprintln(r.out, components.Summary(session.BuildSummary(ctrl.Snapshot()), cardWidth))
	fmt.Fprintln(r.out, components.Notice(fmt.Sprintf("Saved as assessment #%d.", res.ID), false))
	return nil
}

func selectCategory() (string, error) {
	cats := question.Categories()
	items := make([]string, len(cats))
	for i, c := range cats {
		items[i] = string(c)
	}
	p := promptui.Select{
		Label: "Choose an interview type",
		Items: items,
	}
	_, picked, err := p.Run()
	if err != nil {
		return "", err
	}
	return picked, nil
}

type interviewRunner struct {
	ctrl *session.Controller
	log  *zap.Logger
	out  io.Writer
}

// run loops over prompts until the assessment is saved (non-nil result)
// or the user quits (nil result, nil error).
func (r *interviewRunner) run(ctx context.Context) (*session.Result, error) {
	total := r.ctrl.Snapshot().TotalQuestions()
	var notice string
	var failed bool

	for {
		q := r.ctrl.Current()
		fmt.Fprintln(r.out, components.Question(components.ViewOf(q, total), cardWidth))
		if notice != "" {
			fmt.Fprintln(r.out, components.Notice(notice, failed))
			notice, failed = "", false
		}

		action, err := r.choose(q, total)
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		switch action {
		case PromptWrite, PromptEdit:
			text, err := promptAnswer(q.Draft())
			if errors.Is(err, promptui.ErrInterrupt) {
				continue
			}
			if err != nil {
				return nil, err
			}
			err = q.SetDraft(text)
			notice, failed = describe(err)

		case PromptSubmit:
			err := q.SubmitDraft()
			if errors.Is(err, session.ErrEmptyAnswer) {
				notice, failed = "Write an answer before submitting.", true
				continue
			}
			notice, failed = describe(err)

		case PromptRecord, PromptStopRecord:
			notice, failed = describe(q.ToggleRecording(ctx))

		case PromptReadQuestion:
			notice, failed = describe(q.ReadQuestion())

		case PromptReadAnswer:
			notice, failed = describe(q.ReadAnswer())

		case PromptSample, PromptHideSample:
			if action == PromptSample {
				fmt.Fprintln(r.out, components.Notice("Generating a sample answer...", false))
			}
			_, err := q.RequestSample(ctx)
			notice, failed = describe(err)

		case PromptValidate, PromptHideValidate:
			_, err := q.RequestValidation(ctx)
			notice, failed = describe(err)

		case PromptPrevious:
			notice, failed = describe(r.ctrl.Previous())

		case PromptNext:
			res, err := r.ctrl.Advance(ctx)
			if err != nil {
				return r.retryFinalize(ctx, err)
			}
			if res != nil {
				return res, nil
			}

		case PromptFinish:
			res, err := r.ctrl.Finalize(ctx)
			if err != nil {
				return r.retryFinalize(ctx, err)
			}
			return res, nil

		case PromptQuit:
			return nil, nil
		}
	}
}

// choose offers the actions valid for q in its current phase.
func (r *interviewRunner) choose(q *session.QuestionState, total int) (string, error) {
	caps := r.ctrl.Capabilities()
	var items []string

	if q.Submitted() {
		if r.ctrl.SamplesAvailable() {
			items = append(items, toggle(q.Sample, PromptSample, PromptHideSample))
		}
		_, shown := q.Validation()
		if shown {
			items = append(items, PromptHideValidate)
		} else {
			items = append(items, PromptValidate)
		}
	} else {
		if strings.TrimSpace(q.Draft()) == "" {
			items = append(items, PromptWrite)
		} else {
			items = append(items, PromptEdit)
		}
		items = append(items, PromptSubmit)
		if caps.Dictation {
			if q.Recording() {
				items = append(items, PromptStopRecord)
			} else {
				items = append(items, PromptRecord)
			}
		}
	}
	if caps.Playback {
		items = append(items, PromptReadQuestion)
		if strings.TrimSpace(q.Draft()) != "" {
			items = append(items, PromptReadAnswer)
		}
	}

	if q.Index() < total-1 {
		items = append(items, PromptNext)
	}
	if q.Index() > 0 {
		items = append(items, PromptPrevious)
	}
	items = append(items, PromptFinish, PromptQuit)

	p := promptui.Select{
		Label: "What next?",
		Items: items,
		Size:  len(items),
	}
	_, picked, err := p.Run()
	return picked, err
}

// retryFinalize offers to retry a save that failed with a retryable error.
func (r *interviewRunner) retryFinalize(ctx context.Context, err error) (*session.Result, error) {
	for {
		var fe *session.FinalizeError
		if !errors.As(err, &fe) || !fe.Retryable {
			return nil, err
		}
		r.log.Warn("assessment not saved", zap.Error(err))
		fmt.Fprintln(r.out, components.Notice("Could not save the assessment. Your answers are kept.", true))

		p := promptui.Select{
			Label: "Save failed",
			Items: []string{PromptRetry, PromptQuit},
		}
		_, picked, perr := p.Run()
		if perr != nil || picked == PromptQuit {
			return nil, nil
		}

		res, ferr := r.ctrl.Finalize(ctx)
		if ferr == nil {
			return res, nil
		}
		err = ferr
	}
}

func promptAnswer(draft string) (string, error) {
	p := promptui.Prompt{
		Label:     "Answer",
		Default:   draft,
		AllowEdit: true,
	}
	return p.Run()
}

// toggle picks the show or hide label from a visibility accessor.
func toggle(state func() (string, bool), show, hide string) string {
	if _, visible := state(); visible {
		return hide
	}
	return show
}

// describe turns an action error into a notice for the next render.
func describe(err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, sample.ErrUnavailable):
		return "Sample answers are not configured.", true
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out generating the sample answer.", true
	case errors.Is(err, session.ErrEmptyAnswer):
		return "Write an answer first.", true
	case errors.Is(err, session.ErrIndexOutOfRange):
		return "Already at the first question.", true
	}
	return err.Error(), true
}
