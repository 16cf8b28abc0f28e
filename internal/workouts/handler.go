package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/traintrack/traintrack/internal/apierr"
	"github.com/traintrack/traintrack/internal/auth"
	"github.com/traintrack/traintrack/internal/telemetry/metrics"
	"github.com/traintrack/traintrack/internal/telemetry/tracing"
	"github.com/traintrack/traintrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id, userID int) (*Workout, error)
	List(ctx context.Context, userID int, params ListParams) ([]Workout, error)
	Update(ctx context.Context, workout *Workout) error
	Delete(ctx context.Context, id, userID int) error
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleCreate).Methods("POST", "OPTIONS")
	router.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS")
	router.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS")
	router.HandleFunc("/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS")
	router.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS")
}

type workoutRequest struct {
	Title           string            `json:"title"`
	Date            time.Time         `json:"date"`
	DurationMinutes *int              `json:"durationMinutes"`
	Notes           string            `json:"notes"`
	Status          Status            `json:"status"`
	Exercises       []exerciseRequest `json:"exercises"`
}

type exerciseRequest struct {
	Name        string `json:"name"`
	Sets        []Set  `json:"sets"`
	RestSeconds *int   `json:"restSeconds"`
	Notes       string `json:"notes"`
	OrderIndex  *int   `json:"orderIndex"`
}

// validate normalizes the request and returns field-level details for
// everything wrong with it at once.
func (req *workoutRequest) validate() (map[string]string, []Exercise) {
	details := map[string]string{}
	if req.Title == "" {
		details["title"] = "title is required"
	}
	if req.Date.IsZero() {
		details["date"] = "date is required"
	}
	if req.Status == "" {
		req.Status = StatusCompleted
	} else if !req.Status.Valid() {
		details["status"] = "status must be one of COMPLETED, DRAFT, CANCELLED"
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		details["durationMinutes"] = "durationMinutes must not be negative"
	}

	exercises := make([]Exercise, 0, len(req.Exercises))
	seenOrder := make(map[int]bool, len(req.Exercises))
	for i, exReq := range req.Exercises {
		field := fmt.Sprintf("exercises[%d]", i)
		if exReq.Name == "" {
			details[field+".name"] = "name is required"
		}
		if len(exReq.Sets) == 0 {
			details[field+".sets"] = "at least one set is required"
		}
		for j, set := range exReq.Sets {
			if set.Reps <= 0 {
				details[fmt.Sprintf("%s.sets[%d].reps", field, j)] = "reps must be positive"
			}
			if set.Weight != nil && *set.Weight < 0 {
				details[fmt.Sprintf("%s.sets[%d].weight", field, j)] = "weight must not be negative"
			}
			if set.RPE != nil && (*set.RPE < 1 || *set.RPE > 10) {
				details[fmt.Sprintf("%s.sets[%d].rpe", field, j)] = "rpe must be between 1 and 10"
			}
		}

		orderIndex := i
		if exReq.OrderIndex != nil {
			orderIndex = *exReq.OrderIndex
		}
		if seenOrder[orderIndex] {
			details[field+".orderIndex"] = "orderIndex must be unique within a workout"
		}
		seenOrder[orderIndex] = true

		exercises = append(exercises, Exercise{
			Name:        exReq.Name,
			Sets:        exReq.Sets,
			RestSeconds: exReq.RestSeconds,
			Notes:       exReq.Notes,
			OrderIndex:  orderIndex,
		})
	}

	if len(details) > 0 {
		return details, nil
	}
	return nil, exercises
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("create workout, unmarshal json params: %s", err)
		apierr.Write(w, apierr.BadRequest("Invalid request body"))
		return
	}

	details, exercises := req.validate()
	if details != nil {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	addedWorkout, err := handler.repo.Add(ctx, Workout{
		UserID:          authCtx.User.ID,
		Title:           req.Title,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Status:          req.Status,
		Exercises:       exercises,
	})
	if err != nil {
		log.Errorf("failed to add workout for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	if handler.metricsManager != nil && addedWorkout.Status == StatusCompleted {
		handler.metricsManager.CounterWorkoutsLogged.Inc()
	}

	workoutJson, err := json.Marshal(addedWorkout)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	var params ListParams
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := Status(statusParam)
		if !status.Valid() {
			apierr.Write(w, apierr.Validation(map[string]string{
				"status": "status must be one of COMPLETED, DRAFT, CANCELLED",
			}))
			return
		}
		params.Status = &status
	}

	workouts, err := handler.repo.List(ctx, authCtx.User.ID, params)
	if err != nil {
		log.Errorf("failed to list workouts for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	resp, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    len(workouts),
	})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	workout, err := handler.repo.Get(ctx, id, authCtx.User.ID)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			apierr.Write(w, apierr.NotFound("Workout"))
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.BadRequest("Invalid request body"))
		return
	}

	details, exercises := req.validate()
	if details != nil {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	workout := Workout{
		ID:              id,
		UserID:          authCtx.User.ID,
		Title:           req.Title,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Status:          req.Status,
		Exercises:       exercises,
	}
	if err := handler.repo.Update(ctx, &workout); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			apierr.Write(w, apierr.NotFound("Workout"))
			return
		}
		log.Errorf("failed to update workout %d: %s", id, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, id, authCtx.User.ID); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			apierr.Write(w, apierr.NotFound("Workout"))
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	resp, err := json.Marshal(DeleteResponse{DeletedID: id})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func workoutID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		apierr.Write(w, apierr.BadRequest("Invalid workout id"))
		return 0, false
	}
	return id, true
}
