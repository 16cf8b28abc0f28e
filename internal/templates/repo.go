package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/traintrack/traintrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrDefaultTemplate  = errors.New("default templates are read-only")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add inserts the template and its exercises atomically.
func (r *Repo) Add(ctx context.Context, template SessionTemplate) (_ *SessionTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.add")
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

	err = tx.QueryRow(ctx, `
		INSERT INTO session_template (user_id, name, description, is_default)
		VALUES ($1, $2, $3, false)
		RETURNING id, created_at
	`,
		template.UserID, template.Name, template.Description,
	).Scan(&template.ID, &template.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i := range template.Exercises {
		template.Exercises[i].TemplateID = template.ID
		if err = r.insertExercise(ctx, tx, &template.Exercises[i]); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("template.id", template.ID))
	return &template, nil
}

func (r *Repo) insertExercise(ctx context.Context, tx pgx.Tx, exercise *TemplateExercise) error {
	return tx.QueryRow(ctx, `
		INSERT INTO template_exercise (template_id, name, target_rep_range, default_weight, muscle_groups, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		exercise.TemplateID, exercise.Name, exercise.TargetRepRange,
		exercise.DefaultWeight, exercise.MuscleGroups, exercise.OrderIndex,
	).Scan(&exercise.ID)
}

// Get returns the template when it belongs to the user or is a shipped
// default.
func (r *Repo) Get(ctx context.Context, id, userID int) (_ *SessionTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.get")
	span.SetAttributes(attribute.Int("template.id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var template SessionTemplate
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, name, description, is_default, created_at
		FROM session_template
		WHERE id = $1 AND (user_id = $2 OR is_default)
	`, id, userID).Scan(
		&template.ID, &template.UserID, &template.Name,
		&template.Description, &template.IsDefault, &template.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not-found")
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	template.Exercises, err = r.exercisesForTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	return &template, nil
}

func (r *Repo) List(ctx context.Context, userID int) (_ []SessionTemplate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.list")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, description, is_default, created_at
		FROM session_template
		WHERE user_id = $1 OR is_default
		ORDER BY is_default DESC, name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []SessionTemplate
	for rows.Next() {
		var template SessionTemplate
		if err = rows.Scan(
			&template.ID, &template.UserID, &template.Name,
			&template.Description, &template.IsDefault, &template.CreatedAt,
		); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		templates[i].Exercises, err = r.exercisesForTemplate(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
	}
	if templates == nil {
		templates = []SessionTemplate{}
	}

	return templates, nil
}

func (r *Repo) exercisesForTemplate(ctx context.Context, templateID int) ([]TemplateExercise, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, template_id, name, target_rep_range, default_weight, muscle_groups, order_index
		FROM template_exercise
		WHERE template_id = $1
		ORDER BY order_index
	`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := []TemplateExercise{}
	for rows.Next() {
		var exercise TemplateExercise
		if err := rows.Scan(
			&exercise.ID, &exercise.TemplateID, &exercise.Name, &exercise.TargetRepRange,
			&exercise.DefaultWeight, &exercise.MuscleGroups, &exercise.OrderIndex,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}
	return exercises, rows.Err()
}

// Update replaces the template and all of its exercises atomically.
// Shipped defaults are rejected before anything is touched.
func (r *Repo) Update(ctx context.Context, template *SessionTemplate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.update")
	span.SetAttributes(attribute.Int("template.id", template.ID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if template.UserID == nil {
		return ErrDefaultTemplate
	}

	if err = r.checkWritable(ctx, template.ID, *template.UserID); err != nil {
		return err
	}

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

	tag, err := tx.Exec(ctx, `
		UPDATE session_template
		SET name = $1, description = $2
		WHERE id = $3 AND user_id = $4 AND NOT is_default
	`, template.Name, template.Description, template.ID, *template.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}

	if _, err = tx.Exec(ctx, `DELETE FROM template_exercise WHERE template_id = $1`, template.ID); err != nil {
		return err
	}
	for i := range template.Exercises {
		template.Exercises[i].TemplateID = template.ID
		if err = r.insertExercise(ctx, tx, &template.Exercises[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.delete")
	span.SetAttributes(attribute.Int("template.id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err = r.checkWritable(ctx, id, userID); err != nil {
		return err
	}

	// template_exercise rows go via ON DELETE CASCADE
	tag, err := r.db.Exec(ctx, `
		DELETE FROM session_template
		WHERE id = $1 AND user_id = $2 AND NOT is_default
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// checkWritable distinguishes "not yours / missing" from "shipped
// default", so the handler can return 403 instead of 404 for defaults.
func (r *Repo) checkWritable(ctx context.Context, id, userID int) error {
	var isDefault bool
	err := r.db.QueryRow(ctx, `
		SELECT is_default FROM session_template
		WHERE id = $1 AND (user_id = $2 OR is_default)
	`, id, userID).Scan(&isDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return err
	}
	if isDefault {
		return ErrDefaultTemplate
	}
	return nil
}

// MuscleGroupMap builds the exercise-name to muscle-group mapping used by
// the volume analytics, from template exercises with a muscle group tag.
// Keys are lowercased for case-insensitive lookups.
func (r *Repo) MuscleGroupMap(ctx context.Context, userID int) (_ map[string]string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.muscleGroupMap")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT te.name, te.muscle_groups
		FROM template_exercise te
		JOIN session_template st ON st.id = te.template_id
		WHERE (st.user_id = $1 OR st.is_default) AND te.muscle_groups <> ''
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	muscleGroups := make(map[string]string)
	for rows.Next() {
		var name, group string
		if err := rows.Scan(&name, &group); err != nil {
			return nil, err
		}
		muscleGroups[strings.ToLower(name)] = group
	}
	return muscleGroups, rows.Err()
}
