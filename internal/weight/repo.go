package weight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traintrack/traintrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrEntryNotFound = errors.New("weight entry not found")
	ErrGoalNotFound  = errors.New("weight goal not found")
)

type EntriesParams struct {
	From *time.Time
	To   *time.Time
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddEntry(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.addEntry")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `
		INSERT INTO weight_entry (user_id, weight, date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, entry.UserID, entry.Weight, entry.Date).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("entry.id", entry.ID))
	return &entry, nil
}

// ListEntries returns the user's measurements ordered oldest-first.
func (r *Repo) ListEntries(ctx context.Context, userID int, params EntriesParams) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.listEntries")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `
		SELECT id, user_id, weight, date, created_at
		FROM weight_entry
		WHERE user_id = $1`
	args := []interface{}{userID}
	if params.From != nil {
		args = append(args, *params.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}
	query += " ORDER BY date, id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err = rows.Scan(&entry.ID, &entry.UserID, &entry.Weight, &entry.Date, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *Repo) DeleteEntry(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.deleteEntry")
	span.SetAttributes(attribute.Int("entry.id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM weight_entry WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// AddGoal inserts the new goal as active and deactivates the previous
// active goal in the same transaction, keeping at most one active goal
// per user.
func (r *Repo) AddGoal(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.addGoal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		UPDATE weight_goal SET is_active = false
		WHERE user_id = $1 AND is_active
	`, goal.UserID); err != nil {
		return nil, err
	}

	goal.IsActive = true
	err = tx.QueryRow(ctx, `
		INSERT INTO weight_goal (user_id, target_weight, goal_type, target_date, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, created_at
	`,
		goal.UserID, goal.TargetWeight, goal.GoalType, goal.TargetDate,
	).Scan(&goal.ID, &goal.CreatedAt)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("goal.id", goal.ID))
	return &goal, nil
}

func (r *Repo) ListGoals(ctx context.Context, userID int) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.listGoals")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, target_weight, goal_type, target_date, is_active, created_at
		FROM weight_goal
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		var goal Goal
		if err = rows.Scan(
			&goal.ID, &goal.UserID, &goal.TargetWeight, &goal.GoalType,
			&goal.TargetDate, &goal.IsActive, &goal.CreatedAt,
		); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *Repo) ActiveGoal(ctx context.Context, userID int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.activeGoal")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var goal Goal
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, target_weight, goal_type, target_date, is_active, created_at
		FROM weight_goal
		WHERE user_id = $1 AND is_active
	`, userID).Scan(
		&goal.ID, &goal.UserID, &goal.TargetWeight, &goal.GoalType,
		&goal.TargetDate, &goal.IsActive, &goal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "no-active-goal")
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// ActivateGoal flips the active flag to the given goal, deactivating the
// current one in the same transaction.
func (r *Repo) ActivateGoal(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weight.activateGoal")
	span.SetAttributes(attribute.Int("goal.id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		UPDATE weight_goal SET is_active = false
		WHERE user_id = $1 AND is_active
	`, userID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE weight_goal SET is_active = true
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}
