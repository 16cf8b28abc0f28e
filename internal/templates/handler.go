package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/traintrack/traintrack/internal/apierr"
	"github.com/traintrack/traintrack/internal/auth"
	"github.com/traintrack/traintrack/internal/telemetry/tracing"
	"github.com/traintrack/traintrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=templates_mocks_test.go -package=templates_test

type templatesRepo interface {
	Add(ctx context.Context, template SessionTemplate) (*SessionTemplate, error)
	Get(ctx context.Context, id, userID int) (*SessionTemplate, error)
	List(ctx context.Context, userID int) ([]SessionTemplate, error)
	Update(ctx context.Context, template *SessionTemplate) error
	Delete(ctx context.Context, id, userID int) error
}

type ListResponse struct {
	Templates []SessionTemplate `json:"templates"`
	Total     int               `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo templatesRepo
}

func NewHandler(repo templatesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleCreate).Methods("POST", "OPTIONS")
	router.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS")
	router.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS")
	router.HandleFunc("/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS")
	router.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS")
}

type templateRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Exercises   []templateExerciseRequest `json:"exercises"`
}

type templateExerciseRequest struct {
	Name           string   `json:"name"`
	TargetRepRange string   `json:"targetRepRange"`
	DefaultWeight  *float64 `json:"defaultWeight"`
	MuscleGroups   string   `json:"muscleGroups"`
	OrderIndex     *int     `json:"orderIndex"`
}

func (req *templateRequest) validate() (map[string]string, []TemplateExercise) {
	details := map[string]string{}
	if req.Name == "" {
		details["name"] = "name is required"
	}

	exercises := make([]TemplateExercise, 0, len(req.Exercises))
	for i, exReq := range req.Exercises {
		field := fmt.Sprintf("exercises[%d]", i)
		if exReq.Name == "" {
			details[field+".name"] = "name is required"
		}
		if exReq.TargetRepRange != "" {
			if _, _, err := ParseRepRange(exReq.TargetRepRange); err != nil {
				details[field+".targetRepRange"] = "targetRepRange must be in lo-hi form, e.g. 8-12"
			}
		}
		if exReq.DefaultWeight != nil && *exReq.DefaultWeight < 0 {
			details[field+".defaultWeight"] = "defaultWeight must not be negative"
		}

		orderIndex := i
		if exReq.OrderIndex != nil {
			orderIndex = *exReq.OrderIndex
		}

		exercises = append(exercises, TemplateExercise{
			Name:           exReq.Name,
			TargetRepRange: exReq.TargetRepRange,
			DefaultWeight:  exReq.DefaultWeight,
			MuscleGroups:   exReq.MuscleGroups,
			OrderIndex:     orderIndex,
		})
	}

	if len(details) > 0 {
		return details, nil
	}
	return nil, exercises
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.create")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.BadRequest("Invalid request body"))
		return
	}

	details, exercises := req.validate()
	if details != nil {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	userID := authCtx.User.ID
	addedTemplate, err := handler.repo.Add(ctx, SessionTemplate{
		UserID:      &userID,
		Name:        req.Name,
		Description: req.Description,
		Exercises:   exercises,
	})
	if err != nil {
		log.Errorf("failed to add template for user %d: %s", userID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	templateJson, err := json.Marshal(addedTemplate)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, templateJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.list")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	templates, err := handler.repo.List(ctx, authCtx.User.ID)
	if err != nil {
		log.Errorf("failed to list templates for user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	resp, err := json.Marshal(ListResponse{
		Templates: templates,
		Total:     len(templates),
	})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.get")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := templateID(w, r)
	if !ok {
		return
	}

	template, err := handler.repo.Get(ctx, id, authCtx.User.ID)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			apierr.Write(w, apierr.NotFound("Template"))
			return
		}
		log.Errorf("failed to get template %d: %s", id, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	templateJson, err := json.Marshal(template)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, templateJson)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.update")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := templateID(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Write(w, apierr.BadRequest("Invalid request body"))
		return
	}

	details, exercises := req.validate()
	if details != nil {
		apierr.Write(w, apierr.Validation(details))
		return
	}

	userID := authCtx.User.ID
	template := SessionTemplate{
		ID:          id,
		UserID:      &userID,
		Name:        req.Name,
		Description: req.Description,
		Exercises:   exercises,
	}
	if err := handler.repo.Update(ctx, &template); err != nil {
		handler.writeTemplateErr(w, "update", id, err)
		return
	}

	templateJson, err := json.Marshal(template)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, templateJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.delete")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	id, ok := templateID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, id, authCtx.User.ID); err != nil {
		handler.writeTemplateErr(w, "delete", id, err)
		return
	}

	resp, err := json.Marshal(DeleteResponse{DeletedID: id})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (handler *Handler) writeTemplateErr(w http.ResponseWriter, op string, id int, err error) {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		apierr.Write(w, apierr.NotFound("Template"))
	case errors.Is(err, ErrDefaultTemplate):
		apierr.Write(w, apierr.Authorization("Default templates cannot be modified"))
	default:
		log.Errorf("failed to %s template %d: %s", op, id, err)
		apierr.Write(w, apierr.FromDBError(err))
	}
}

func templateID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		apierr.Write(w, apierr.BadRequest("Invalid template id"))
		return 0, false
	}
	return id, true
}
