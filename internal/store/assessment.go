package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mockprep/internal/question"
)

var assessmentColumns = []string{
	"id", "session_id", "user_id", "type", "questions", "answers", "score",
	"duration_minutes", "attempted_questions", "total_questions", "status",
	"started_at", "created_at",
}

type assessmentRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *assessmentRepo) Persist(ctx context.Context, rec *AssessmentRecord) (int64, error) {
	if rec.SessionID == "" {
		return 0, errors.New("persist assessment: session id is required")
	}
	if len(rec.Questions) != len(rec.Answers) {
		return 0, fmt.Errorf("persist assessment: %d questions but %d answers", len(rec.Questions), len(rec.Answers))
	}

	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return 0, fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return 0, fmt.Errorf("marshal answers: %w", err)
	}

	created := rec.CreatedAt
	if created.IsZero() {
		created = r.clock()
	}
	status := rec.Status
	if status == "" {
		status = StatusCompleted
	}

	insert, args := builder().Insert(tableAssessments).
		Columns(assessmentColumns[1:]...).
		Values(
			rec.SessionID, rec.UserID, string(rec.Type), string(questions), string(answers), rec.Score,
			rec.DurationMinutes, rec.AttemptedQuestions, rec.TotalQuestions, status,
			rec.StartedAt.UnixMilli(), created.UnixMilli(),
		).
		OnConflict(entsql.ConflictColumns("session_id"), entsql.DoNothing()).
		Query()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return 0, fmt.Errorf("insert assessment: %w", err)
	}

	lookup, largs := builder().Select("id").
		From(entsql.Table(tableAssessments)).
		Where(entsql.EQ("session_id", rec.SessionID)).
		Query()

	var id int64
	if err := tx.QueryRowContext(ctx, lookup, largs...).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup assessment id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *assessmentRepo) Get(ctx context.Context, id int64) (*AssessmentRecord, error) {
	query, args := builder().Select(assessmentColumns...).
		From(entsql.Table(tableAssessments)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanAssessment(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assessment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment %d: %w", id, err)
	}
	return rec, nil
}

func (r *assessmentRepo) ListByUser(ctx context.Context, userID string, opts ListOpts) ([]AssessmentRecord, error) {
	where := entsql.EQ("user_id", userID)
	if opts.Type != "" {
		where = entsql.And(where, entsql.EQ("type", string(opts.Type)))
	}

	sel := builder().Select(assessmentColumns...).
		From(entsql.Table(tableAssessments)).
		Where(where).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentRecord
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *assessmentRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*AssessmentRecord, error) {
	var (
		rec                   AssessmentRecord
		typ, questions, answs string
		started, created      int64
	)
	err := row.Scan(
		&rec.ID, &rec.SessionID, &rec.UserID, &typ, &questions, &answs, &rec.Score,
		&rec.DurationMinutes, &rec.AttemptedQuestions, &rec.TotalQuestions, &rec.Status,
		&started, &created,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = question.Category(typ)
	if err := json.Unmarshal([]byte(questions), &rec.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal([]byte(answs), &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	rec.StartedAt = time.UnixMilli(started).UTC()
	rec.CreatedAt = time.UnixMilli(created).UTC()
	return &rec, nil
}
