package workoutlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/workoutplan/internal/auth"
	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/metrics"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workoutlog_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, ownerID, id int) (*Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, ownerID, id int) error
	ListForSlot(ctx context.Context, ownerID int, slot schedule.Slot, date time.Time) ([]Exercise, error)
}

type AddExerciseResponse struct {
	Exercise
	CountForSlot int `json:"countForSlot"`
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

type ListResponse struct {
	Date      string        `json:"date"`
	Slot      schedule.Slot `json:"slot"`
	Exercises []Exercise    `json:"exercises"`
}

type Handler struct {
	repo    exercisesRepo
	metrics *metrics.Manager
	// ability to inject the clock (for tests)
	Now func() time.Time
}

func NewHandler(repo exercisesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
		Now:     time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("log-add")
	router.HandleFunc("", handler.HandleUpdate).Methods("PUT").Name("log-update")
	router.HandleFunc("/{id:[0-9]+}", handler.HandleGet).Methods("GET").Name("log-get")
	router.HandleFunc("/{id:[0-9]+}", handler.HandleDelete).Methods("DELETE").Name("log-delete")
	router.HandleFunc("/{part:[a-z_]+}/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}", handler.HandleListForSlot).Methods("GET").Name("log-list")
}

func ownerOrUnauthorized(w http.ResponseWriter, r *http.Request) (int, bool) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
	}
	return ownerID, ok
}

func idFromVars(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func dateFromVars(vars map[string]string) (time.Time, error) {
	year, errYear := strconv.Atoi(vars["year"])
	month, errMonth := strconv.Atoi(vars["month"])
	day, errDay := strconv.Atoi(vars["day"])
	if errYear != nil || errMonth != nil || errDay != nil {
		return time.Time{}, fmt.Errorf("invalid date %s-%s-%s", vars["year"], vars["month"], vars["day"])
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("no such date: %d-%d-%d", year, month, day)
	}
	return date, nil
}

func writeRepoError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, schedule.ErrValidation):
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}

func decodeExercise(w http.ResponseWriter, r *http.Request, op string) (*Exercise, bool) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return nil, false
	}
	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("%s, unmarshal json params: %s", op, err)
		http.Error(w, op+" failed", http.StatusBadRequest)
		return nil, false
	}
	exercise.Normalize()
	return &exercise, true
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.add")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	exercise, ok := decodeExercise(w, r, "add exercise")
	if !ok {
		return
	}
	exercise.ID = 0
	exercise.OwnerID = ownerID
	exercise.CreatedAt = handler.Now()
	if err := exercise.Validate(); err != nil {
		writeRepoError(w, "add exercise", err)
		return
	}

	added, err := handler.repo.Add(ctx, *exercise)
	if err != nil {
		writeRepoError(w, "add exercise", err)
		return
	}
	if handler.metrics != nil {
		handler.metrics.CounterLoggedExercises.Inc()
	}

	forSlot, err := handler.repo.ListForSlot(ctx, ownerID, added.Slot, added.Date)
	if err != nil {
		// the exercise is stored, only the count is missing
		log.Errorf("failed to count exercises for %s on %s: %s", added.Slot, added.Date.Format(schedule.DateLayout), err)
	}

	log.Debugf("exercise %d logged for %s", added.ID, added.Slot)
	pkg.WriteJSON(w, "add exercise", AddExerciseResponse{
		Exercise:     *added,
		CountForSlot: len(forSlot),
	}, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.get")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := idFromVars(w, r)
	if !ok {
		return
	}

	exercise, err := handler.repo.Get(ctx, ownerID, id)
	if err != nil {
		writeRepoError(w, "get exercise", err)
		return
	}
	pkg.WriteJSON(w, "get exercise", exercise, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.update")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	update, ok := decodeExercise(w, r, "update exercise")
	if !ok {
		return
	}

	exercise, err := handler.repo.Get(ctx, ownerID, update.ID)
	if err != nil {
		writeRepoError(w, "update exercise", err)
		return
	}
	exercise.Name = update.Name
	exercise.Sets = update.Sets
	exercise.Remarks = update.Remarks
	if err := exercise.Validate(); err != nil {
		writeRepoError(w, "update exercise", err)
		return
	}

	if err := handler.repo.Update(ctx, exercise); err != nil {
		writeRepoError(w, "update exercise", err)
		return
	}
	pkg.WriteJSON(w, "update exercise", exercise, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.delete")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, ok := idFromVars(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, ownerID, id); err != nil {
		writeRepoError(w, "delete exercise", err)
		return
	}
	pkg.WriteJSON(w, "delete exercise", DeleteExerciseResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleListForSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workoutlog.list")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	date, err := dateFromVars(vars)
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}
	slot := schedule.Slot{
		BodyPart: schedule.BodyPart(vars["part"]),
		Detail:   r.URL.Query().Get("detail"),
	}.Normalized()
	if !slot.BodyPart.Valid() {
		http.Error(w, "error, unknown body part", http.StatusBadRequest)
		return
	}

	exercises, err := handler.repo.ListForSlot(ctx, ownerID, slot, date)
	if err != nil {
		writeRepoError(w, "list exercises", err)
		return
	}
	pkg.WriteJSON(w, "list exercises", ListResponse{
		Date:      date.Format(schedule.DateLayout),
		Slot:      slot,
		Exercises: exercises,
	}, http.StatusOK)
}
