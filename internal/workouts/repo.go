package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traintrack/traintrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type ListParams struct {
	Status *Status
	From   *time.Time
	To     *time.Time
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add inserts the workout and its exercises in one transaction, so a
// failed exercise insert leaves no orphaned workout row behind.
func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
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
		INSERT INTO workout (user_id, title, date, duration_minutes, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		workout.UserID, workout.Title, workout.Date,
		workout.DurationMinutes, workout.Notes, workout.Status,
	).Scan(&workout.ID, &workout.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i := range workout.Exercises {
		workout.Exercises[i].WorkoutID = workout.ID
		if err = r.insertExercise(ctx, tx, &workout.Exercises[i]); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	return &workout, nil
}

func (r *Repo) insertExercise(ctx context.Context, tx pgx.Tx, exercise *Exercise) error {
	setsJson, err := marshalSets(exercise.Sets)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO exercise (workout_id, name, sets, rest_seconds, notes, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		exercise.WorkoutID, exercise.Name, setsJson,
		exercise.RestSeconds, exercise.Notes, exercise.OrderIndex,
	).Scan(&exercise.ID)
}

func (r *Repo) Get(ctx context.Context, id, userID int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	span.SetAttributes(attribute.Int("workout.id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var workout Workout
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, title, date, duration_minutes, notes, status, created_at
		FROM workout
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&workout.ID, &workout.UserID, &workout.Title, &workout.Date,
		&workout.DurationMinutes, &workout.Notes, &workout.Status, &workout.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not-found")
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	exercisesPerWorkout, err := r.exercisesForWorkouts(ctx, []int{workout.ID})
	if err != nil {
		return nil, err
	}
	workout.Exercises = exercisesPerWorkout[workout.ID]
	if workout.Exercises == nil {
		workout.Exercises = []Exercise{}
	}

	return &workout, nil
}

func (r *Repo) List(ctx context.Context, userID int, params ListParams) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `
		SELECT id, user_id, title, date, duration_minutes, notes, status, created_at
		FROM workout
		WHERE user_id = $1`
	args := []interface{}{userID}
	if params.Status != nil {
		args = append(args, *params.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.From != nil {
		args = append(args, *params.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	var ids []int
	for rows.Next() {
		var workout Workout
		if err = rows.Scan(
			&workout.ID, &workout.UserID, &workout.Title, &workout.Date,
			&workout.DurationMinutes, &workout.Notes, &workout.Status, &workout.CreatedAt,
		); err != nil {
			return nil, err
		}
		workout.Exercises = []Exercise{}
		workouts = append(workouts, workout)
		ids = append(ids, workout.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return []Workout{}, nil
	}

	exercisesPerWorkout, err := r.exercisesForWorkouts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		if exercises, ok := exercisesPerWorkout[workouts[i].ID]; ok {
			workouts[i].Exercises = exercises
		}
	}

	return workouts, nil
}

func (r *Repo) exercisesForWorkouts(ctx context.Context, workoutIDs []int) (map[int][]Exercise, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, workout_id, name, sets, rest_seconds, notes, order_index
		FROM exercise
		WHERE workout_id = ANY($1)
		ORDER BY workout_id, order_index
	`, workoutIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercisesPerWorkout := make(map[int][]Exercise)
	for rows.Next() {
		var exercise Exercise
		var setsRaw []byte
		if err := rows.Scan(
			&exercise.ID, &exercise.WorkoutID, &exercise.Name, &setsRaw,
			&exercise.RestSeconds, &exercise.Notes, &exercise.OrderIndex,
		); err != nil {
			return nil, err
		}
		exercise.Sets = unmarshalSets(setsRaw)
		exercisesPerWorkout[exercise.WorkoutID] = append(exercisesPerWorkout[exercise.WorkoutID], exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercisesPerWorkout, nil
}

// Update replaces the workout row and all of its exercises in one
// transaction. A failure partway leaves the previous state untouched.
func (r *Repo) Update(ctx context.Context, workout *Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	span.SetAttributes(attribute.Int("workout.id", workout.ID))
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

	tag, err := tx.Exec(ctx, `
		UPDATE workout
		SET title = $1, date = $2, duration_minutes = $3, notes = $4, status = $5
		WHERE id = $6 AND user_id = $7
	`,
		workout.Title, workout.Date, workout.DurationMinutes,
		workout.Notes, workout.Status, workout.ID, workout.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	if _, err = tx.Exec(ctx, `DELETE FROM exercise WHERE workout_id = $1`, workout.ID); err != nil {
		return err
	}
	for i := range workout.Exercises {
		workout.Exercises[i].WorkoutID = workout.ID
		if err = r.insertExercise(ctx, tx, &workout.Exercises[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	span.SetAttributes(attribute.Int("workout.id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// exercise rows go via ON DELETE CASCADE
	tag, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	log.Debugf("workout %d deleted", id)
	return nil
}
