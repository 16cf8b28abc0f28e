package workouts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traintrack/traintrack/internal/auth"
	"github.com/traintrack/traintrack/internal/telemetry/metrics"
	"github.com/traintrack/traintrack/internal/workouts"
)

const testUserID = 42

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	authCtx := auth.Context{
		User: &auth.User{ID: testUserID, Username: "alice"},
		Session: &auth.Session{
			UserID:    testUserID,
			Token:     "test-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	return req.WithContext(auth.NewContext(req.Context(), authCtx))
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestHandler_HandleCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	title := gofakeit.Sentence(3)
	reqBody, err := json.Marshal(map[string]interface{}{
		"title": title,
		"date":  time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC),
		"exercises": []map[string]interface{}{
			{
				"name": "Bench Press",
				"sets": []map[string]interface{}{
					{"reps": 10, "weight": 100},
					{"reps": 8, "weight": 105, "rpe": 9},
					{"reps": 8, "weight": 105},
				},
			},
		},
	})
	require.NoError(t, err)

	repoMock.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, workout workouts.Workout) (*workouts.Workout, error) {
			assert.Equal(t, testUserID, workout.UserID)
			assert.Equal(t, title, workout.Title)
			// status defaults to COMPLETED when not sent
			assert.Equal(t, workouts.StatusCompleted, workout.Status)
			require.Len(t, workout.Exercises, 1)
			assert.Equal(t, 0, workout.Exercises[0].OrderIndex)
			require.Len(t, workout.Exercises[0].Sets, 3)
			assert.Equal(t, 10, workout.Exercises[0].Sets[0].Reps)
			workout.ID = 1
			workout.Exercises[0].ID = 11
			workout.Exercises[0].WorkoutID = 1
			return &workout, nil
		}).Times(1)

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, authedRequest("POST", "/workouts", reqBody))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created workouts.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	require.Len(t, created.Exercises, 1)
	assert.Len(t, created.Exercises[0].Sets, 3)
}

func TestHandler_HandleCreate_ValidationDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	reqBody, err := json.Marshal(map[string]interface{}{
		"status": "PLANNED",
		"exercises": []map[string]interface{}{
			{"name": "", "sets": []map[string]interface{}{}},
			{"name": "Squat", "sets": []map[string]interface{}{{"reps": 0, "rpe": 11}}},
		},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, authedRequest("POST", "/workouts", reqBody))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Validation failed", errResp.Error)
	assert.Contains(t, errResp.Details, "title")
	assert.Contains(t, errResp.Details, "date")
	assert.Contains(t, errResp.Details, "status")
	assert.Contains(t, errResp.Details, "exercises[0].name")
	assert.Contains(t, errResp.Details, "exercises[0].sets")
	assert.Contains(t, errResp.Details, "exercises[1].sets[0].reps")
	assert.Contains(t, errResp.Details, "exercises[1].sets[0].rpe")
}

func TestHandler_HandleCreate_NoAuthContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/workouts", bytes.NewReader([]byte("{}")))
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
}

func TestHandler_HandleGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	stored := &workouts.Workout{
		ID:     7,
		UserID: testUserID,
		Title:  "Push Day",
		Date:   time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC),
		Status: workouts.StatusCompleted,
		Exercises: []workouts.Exercise{
			{
				ID:        70,
				WorkoutID: 7,
				Name:      "Bench Press",
				Sets: []workouts.Set{
					{Reps: 10, Weight: floatPtr(100)},
					{Reps: 8, Weight: floatPtr(105), RPE: intPtr(9)},
					{Reps: 8, Weight: floatPtr(105)},
				},
			},
		},
	}

	repoMock.EXPECT().
		Get(gomock.Any(), 7, testUserID).
		Return(stored, nil).Times(1)

	req := mux.SetURLVars(authedRequest("GET", "/workouts/7", nil), map[string]string{"id": "7"})
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fetched workouts.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Len(t, fetched.Exercises, 1)
	// sets come back as a structured array, not the stored encoding
	require.Len(t, fetched.Exercises[0].Sets, 3)
	assert.Equal(t, 10, fetched.Exercises[0].Sets[0].Reps)
	require.NotNil(t, fetched.Exercises[0].Sets[1].RPE)
	assert.Equal(t, 9, *fetched.Exercises[0].Sets[1].RPE)
}

func TestHandler_HandleGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		Get(gomock.Any(), 999, testUserID).
		Return(nil, workouts.ErrWorkoutNotFound).Times(1)

	req := mux.SetURLVars(authedRequest("GET", "/workouts/999", nil), map[string]string{"id": "999"})
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Workout not found"}`, rec.Body.String())
}

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	completed := workouts.StatusCompleted
	repoMock.EXPECT().
		List(gomock.Any(), testUserID, workouts.ListParams{Status: &completed}).
		Return([]workouts.Workout{
			{ID: 1, UserID: testUserID, Title: "Push Day", Status: completed},
			{ID: 2, UserID: testUserID, Title: "Pull Day", Status: completed},
		}, nil).Times(1)

	rec := httptest.NewRecorder()
	h.HandleList(rec, authedRequest("GET", "/workouts?status=COMPLETED", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var listResp workouts.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 2, listResp.Total)
	require.Len(t, listResp.Workouts, 2)
	assert.Equal(t, "Push Day", listResp.Workouts[0].Title)
}

func TestHandler_HandleList_InvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	rec := httptest.NewRecorder()
	h.HandleList(rec, authedRequest("GET", "/workouts?status=FINISHED", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleUpdate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	reqBody, err := json.Marshal(map[string]interface{}{
		"title": "Renamed",
		"date":  time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	repoMock.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		Return(workouts.ErrWorkoutNotFound).Times(1)

	req := mux.SetURLVars(authedRequest("PUT", "/workouts/5", reqBody), map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	repoMock.EXPECT().
		Delete(gomock.Any(), 7, testUserID).
		Return(nil).Times(1)
	// fetching a deleted workout comes back 404
	repoMock.EXPECT().
		Get(gomock.Any(), 7, testUserID).
		Return(nil, workouts.ErrWorkoutNotFound).Times(1)

	req := mux.SetURLVars(authedRequest("DELETE", "/workouts/7", nil), map[string]string{"id": "7"})
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedId":7}`, rec.Body.String())

	req = mux.SetURLVars(authedRequest("GET", "/workouts/7", nil), map[string]string{"id": "7"})
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockworkoutsRepo(ctrl)
	h := workouts.NewHandler(repoMock, metrics.NewTestManager())

	req := mux.SetURLVars(authedRequest("GET", "/workouts/abc", nil), map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
