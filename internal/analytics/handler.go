package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/traintrack/traintrack/internal/apierr"
	"github.com/traintrack/traintrack/internal/auth"
	"github.com/traintrack/traintrack/internal/telemetry/tracing"
	"github.com/traintrack/traintrack/internal/templates"
	"github.com/traintrack/traintrack/internal/workouts"
	"github.com/traintrack/traintrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=analytics_mocks_test.go -package=analytics_test

type workoutsLister interface {
	List(ctx context.Context, userID int, params workouts.ListParams) ([]workouts.Workout, error)
}

type templatesReader interface {
	List(ctx context.Context, userID int) ([]templates.SessionTemplate, error)
	MuscleGroupMap(ctx context.Context, userID int) (map[string]string, error)
}

const muscleGroupCacheTTLSeconds = 300

type ProgressionResponse struct {
	Exercises []ExerciseSuggestion `json:"exercises"`
	Buckets   *Buckets             `json:"buckets"`
}

type Handler struct {
	workoutsRepo  workoutsLister
	templatesRepo templatesReader
	cache         *freecache.Cache

	// injectable clock, tests pin it
	NowFunc func() time.Time
}

func NewHandler(workoutsRepo workoutsLister, templatesRepo templatesReader, cache *freecache.Cache) *Handler {
	return &Handler{
		workoutsRepo:  workoutsRepo,
		templatesRepo: templatesRepo,
		cache:         cache,
		NowFunc:       time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/progression", handler.HandleProgression).Methods("GET", "OPTIONS")
	router.HandleFunc("/volume", handler.HandleVolume).Methods("GET", "OPTIONS")
}

func (handler *Handler) HandleProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.progression")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	completed := workouts.StatusCompleted
	workoutList, err := handler.workoutsRepo.List(ctx, authCtx.User.ID, workouts.ListParams{
		Status: &completed,
	})
	if err != nil {
		log.Errorf("failed to list workouts for progression, user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	targetRanges, err := handler.targetRepRanges(ctx, authCtx.User.ID)
	if err != nil {
		log.Errorf("failed to load target rep ranges, user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	suggestions := progressionPerExercise(workoutList, targetRanges)
	buckets, err := Categorize(suggestions)
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}

	resp, err := json.Marshal(ProgressionResponse{
		Exercises: suggestions,
		Buckets:   buckets,
	})
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

// progressionPerExercise groups the per-workout exercise history by
// exercise name and runs the progression heuristic on each. The workout
// list is expected most-recent-first, as the repo returns it.
func progressionPerExercise(workoutList []workouts.Workout, targetRanges map[string]string) []ExerciseSuggestion {
	histories := make(map[string][]ExerciseSession)
	displayNames := make(map[string]string)
	for i := range workoutList {
		workout := &workoutList[i]
		for j := range workout.Exercises {
			exercise := &workout.Exercises[j]
			key := strings.ToLower(exercise.Name)
			if _, seen := displayNames[key]; !seen {
				displayNames[key] = exercise.Name
			}
			histories[key] = append(histories[key], ExerciseSession{
				Date: workout.Date,
				Sets: exercise.Sets,
			})
		}
	}

	keys := make([]string, 0, len(histories))
	for key := range histories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	suggestions := make([]ExerciseSuggestion, 0, len(keys))
	for _, key := range keys {
		suggestions = append(suggestions, ExerciseSuggestion{
			Name:       displayNames[key],
			Suggestion: ProgressionSuggestion(histories[key], targetRanges[key]),
		})
	}
	return suggestions
}

func (handler *Handler) targetRepRanges(ctx context.Context, userID int) (map[string]string, error) {
	templateList, err := handler.templatesRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	targetRanges := make(map[string]string)
	for i := range templateList {
		for _, exercise := range templateList[i].Exercises {
			key := strings.ToLower(exercise.Name)
			if exercise.TargetRepRange != "" && targetRanges[key] == "" {
				targetRanges[key] = exercise.TargetRepRange
			}
		}
	}
	return targetRanges, nil
}

func (handler *Handler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.volume")
	defer span.End()

	authCtx, ok := auth.FromContext(ctx)
	if !ok {
		apierr.Write(w, apierr.Authentication())
		return
	}

	now := handler.NowFunc()
	completed := workouts.StatusCompleted
	windowStart := weekStart(now).AddDate(0, 0, -7*(trendWeeks-1))
	workoutList, err := handler.workoutsRepo.List(ctx, authCtx.User.ID, workouts.ListParams{
		Status: &completed,
		From:   &windowStart,
	})
	if err != nil {
		log.Errorf("failed to list workouts for volume, user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	muscleGroups, err := handler.muscleGroupMap(ctx, authCtx.User.ID)
	if err != nil {
		log.Errorf("failed to load muscle group map, user %d: %s", authCtx.User.ID, err)
		apierr.Write(w, apierr.FromDBError(err))
		return
	}

	resp, err := json.Marshal(CalculateVolume(workoutList, muscleGroups, now))
	if err != nil {
		apierr.Write(w, apierr.Internal(err))
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

// muscleGroupMap serves the exercise-to-muscle map from the in-process
// cache, rebuilding it from template exercises on a miss. Cache failures
// only cost the caching, never the request.
func (handler *Handler) muscleGroupMap(ctx context.Context, userID int) (map[string]string, error) {
	cacheKey := []byte(fmt.Sprintf("muscle-groups-%d", userID))
	if handler.cache != nil {
		if cached, err := handler.cache.Get(cacheKey); err == nil {
			var muscleGroups map[string]string
			if err := json.Unmarshal(cached, &muscleGroups); err == nil {
				return muscleGroups, nil
			}
		}
	}

	muscleGroups, err := handler.templatesRepo.MuscleGroupMap(ctx, userID)
	if err != nil {
		return nil, err
	}

	if handler.cache != nil {
		if encoded, err := json.Marshal(muscleGroups); err == nil {
			if err := handler.cache.Set(cacheKey, encoded, muscleGroupCacheTTLSeconds); err != nil {
				log.Tracef("failed to cache muscle group map for user %d: %s", userID, err)
			}
		}
	}

	return muscleGroups, nil
}
