package weight

import (
	"context"
	"encoding/json"
	"errors"
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

//go:generate mockgen -source=$GOFILE -destination=weight_mocks_test.go -package=weight_test

type weightRepo interface {
	AddEntry(ctx context.Context, entry Entry) (*Entry, error)
	ListEntries(ctx context.Context, userID int, params EntriesParams) ([]Entry, error)
	DeleteEntry(ctx context.Context, id, userID int) error
	AddGoal(ctx context.Context, goal Goal) (*Goal, error)
	ListGoals(ctx context.Context, userID int) ([]Goal, error)
	ActiveGoal(ctx context.Context, userID int) (*Goal, error)
	ActivateGoal(ctx context.Context, id, userID int) error
}

type EntriesResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type GoalsResponse struct {
	Goals []Goal `json:"goals"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo           weightRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo weightRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/entries", handler.HandleAddEntry).Methods("POST", "OPTIONS")
	router.HandleFunc("/entries", handler.HandleListEntries).Methods("GET", "OPTIONS")
	router.HandleFunc("/entries/{id}", handler.HandleDeleteEntry).Methods("DELETE", "OPTIONS")
	router.HandleFunc("/goals", handler.HandleAddGoal).Methods("POST", "OPTIONS")
	router.HandleFunc("/goals", handler.HandleListGoals).Methods("GET", "OPTIONS")
	router.HandleFunc("/goals/{id}/activate", handler.HandleActivateGoal).Methods("POST", "OPTIONS")
	router.HandleFunc("/progress", handler.HandleProgress).Methods("GET", "OPTIONS")
}

type entryRequest struct {
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}

func (handler *Handler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.addEntry")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.BadRequest("Invalid request body"))
		return
	}

	details := map[string]string{}
	if req.Weight <= 0 {
		details["weight"] = "weight must be positive"
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}
	if len(details) > 0 {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	addedEntry, err := handler.repo.AddEntry(ctx, Entry{
		UserID: authCtx.User.ID,
		Weight: req.Weight,
		Date:   req.Date,
	})
	if err != nil {
		log.Errorf("failed to add weight entry for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWeightEntries.Inc()
	}

	entryJson, err := json.Marshal(addedEntry)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (handler *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.listEntries")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	var params EntriesParams
	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		from, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			apierr.Write(w, apierr.BadRequest("Invalid from parameter"))
			return
		}
		params.From = &from
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		to, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			apierr.Write(w, apierr.BadRequest("Invalid to parameter"))
			return
		}
		params.To = &to
	}

	entries, err := handler.repo.ListEntries(ctx, authCtx.User.ID, params)
	if err != nil {
		log.Errorf("failed to list weight entries for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	// repo returns oldest first, clients want the latest entry on top
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	resp, err := json.Marshal(EntriesResponse{Entries: entries, Total: len(entries)})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.deleteEntry")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := pathID(w, r, "Invalid entry id")
	if !ok {
		return
	}

	if err := handler.repo.DeleteEntry(ctx, id, authCtx.User.ID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			apierr.Write(w, apierr.NotFound("Weight entry"))
			return
		}
		log.Errorf("failed to delete weight entry %d: %s", id, err)
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

type goalRequest struct {
	TargetWeight float64    `json:"targetWeight"`
	GoalType     GoalType   `json:"goalType"`
	TargetDate   *time.Time `json:"targetDate"`
}

func (handler *Handler) HandleAddGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.addGoal")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.BadRequest("Invalid request body"))
		return
	}

	details := map[string]string{}
	if req.TargetWeight <= 0 {
		details["targetWeight"] = "targetWeight must be positive"
	}
	if !req.GoalType.Valid() {
		details["goalType"] = "goalType must be lose or gain"
	}
	if len(details) > 0 {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	addedGoal, err := handler.repo.AddGoal(ctx, Goal{
		UserID:       authCtx.User.ID,
		TargetWeight: req.TargetWeight,
		GoalType:     req.GoalType,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		log.Errorf("failed to add weight goal for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	goalJson, err := json.Marshal(addedGoal)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusCreated)
}

func (handler *Handler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.listGoals")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	goals, err := handler.repo.ListGoals(ctx, authCtx.User.ID)
	if err != nil {
		log.Errorf("failed to list weight goals for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	resp, err := json.Marshal(GoalsResponse{Goals: goals})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) HandleActivateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.activateGoal")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := pathID(w, r, "Invalid goal id")
	if !ok {
		return
	}

	if err := handler.repo.ActivateGoal(ctx, id, authCtx.User.ID); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			apierr.Write(w, apierr.NotFound("Weight goal"))
			return
		}
		log.Errorf("failed to activate weight goal %d: %s", id, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.progress")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	goal, err := handler.repo.ActiveGoal(ctx, authCtx.User.ID)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			apierr.Write(w, apierr.NotFound("Active weight goal"))
			return
		}
		log.Errorf("failed to get active goal for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	entries, err := handler.repo.ListEntries(ctx, authCtx.User.ID, EntriesParams{})
	if err != nil {
		log.Errorf("failed to list weight entries for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	resp, err := json.Marshal(GoalProgress(entries, goal))
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func pathID(w http.ResponseWriter, r *http.Request, badIDMessage string) (int, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		apierr.Write(w, apierr.BadRequest(badIDMessage))
		return 0, false
	}
	return id, true
}
