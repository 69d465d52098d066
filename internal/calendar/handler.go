package calendar

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
	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=calendar_test

type calendarService interface {
	AddToDay(ctx context.Context, ownerID int, date time.Time, slot schedule.Slot) (*schedule.DateAssignment, error)
	UpdateDateAssignment(ctx context.Context, ownerID, id int, slot schedule.Slot) (*schedule.DateAssignment, error)
	OverrideRoutineSlot(ctx context.Context, ownerID, routineID int, date time.Time, slot schedule.Slot) (*schedule.DateAssignment, error)
	RemoveFromDay(ctx context.Context, ownerID int, date time.Time, dateIDs, routineIDs []int) error
	ClearAll(ctx context.Context, ownerID int) (*ClearResult, error)
	DayDetail(ctx context.Context, ownerID int, date time.Time) ([]DetailEntry, error)
}

type calendarReader interface {
	Week(ctx context.Context, ownerID int, anyDate time.Time) (*WeekView, error)
	Month(ctx context.Context, ownerID int, year int, month time.Month) (*MonthView, error)
	Today(ctx context.Context, ownerID int) (*TodayView, error)
}

type Handler struct {
	service    calendarService
	reconciler calendarReader
}

func NewHandler(service calendarService, reconciler calendarReader) *Handler {
	return &Handler{
		service:    service,
		reconciler: reconciler,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/month/{year:[0-9]+}/{month:[0-9]+}", handler.HandleMonth).Methods("GET").Name("calendar-month")
	router.HandleFunc("/week/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}", handler.HandleWeek).Methods("GET").Name("calendar-week")
	router.HandleFunc("/today", handler.HandleToday).Methods("GET").Name("calendar-today")
	router.HandleFunc("/day/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}", handler.HandleDayDetail).Methods("GET").Name("calendar-day")
	router.HandleFunc("/day/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}", handler.HandleAddToDay).Methods("POST", "OPTIONS").Name("calendar-day-add")
	router.HandleFunc("/day/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/routine/{id:[0-9]+}", handler.HandleOverrideRoutineSlot).Methods("PUT", "OPTIONS").Name("calendar-day-routine-override")
	router.HandleFunc("/day/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/remove", handler.HandleRemoveFromDay).Methods("POST", "OPTIONS").Name("calendar-day-remove")
	router.HandleFunc("/date/{id:[0-9]+}", handler.HandleUpdateDate).Methods("PUT", "OPTIONS").Name("calendar-date-update")
	router.HandleFunc("/all", handler.HandleClearAll).Methods("DELETE").Name("calendar-clear")
}

func dateFromVars(vars map[string]string) (time.Time, error) {
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		return time.Time{}, err
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(vars["day"])
	if err != nil {
		return time.Time{}, err
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("no such date: %d-%d-%d", year, month, day)
	}
	return date, nil
}

func ownerOrUnauthorized(w http.ResponseWriter, r *http.Request) (int, bool) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
	}
	return ownerID, ok
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, schedule.ErrValidation):
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
	case errors.Is(err, schedule.ErrRoutineNotFound),
		errors.Is(err, schedule.ErrDateAssignmentNotFound):
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusNotFound)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Errorf("%s, unmarshal json params: %s", op, err)
		http.Error(w, op+" failed", http.StatusBadRequest)
		return false
	}
	return true
}

func allowOptions(w http.ResponseWriter, r *http.Request, allow string) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	w.Header().Add("Allow", allow)
	w.WriteHeader(http.StatusOK)
	return true
}

func (handler *Handler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.month")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		http.Error(w, "error, invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "error, invalid month", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("year", year), attribute.Int("month", month))

	view, err := handler.reconciler.Month(ctx, ownerID, year, time.Month(month))
	if err != nil {
		writeServiceError(w, "get month", err)
		return
	}
	pkg.WriteJSON(w, "get month", view, http.StatusOK)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.week")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	date, err := dateFromVars(mux.Vars(r))
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	view, err := handler.reconciler.Week(ctx, ownerID, date)
	if err != nil {
		writeServiceError(w, "get week", err)
		return
	}
	pkg.WriteJSON(w, "get week", view, http.StatusOK)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.today")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}

	view, err := handler.reconciler.Today(ctx, ownerID)
	if err != nil {
		writeServiceError(w, "get today", err)
		return
	}
	pkg.WriteJSON(w, "get today", view, http.StatusOK)
}

func (handler *Handler) HandleDayDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.day")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	date, err := dateFromVars(mux.Vars(r))
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	entries, err := handler.service.DayDetail(ctx, ownerID, date)
	if err != nil {
		writeServiceError(w, "get day", err)
		return
	}
	pkg.WriteJSON(w, "get day", struct {
		Date    string        `json:"date"`
		Entries []DetailEntry `json:"entries"`
	}{
		Date:    date.Format(schedule.DateLayout),
		Entries: entries,
	}, http.StatusOK)
}

func (handler *Handler) HandleAddToDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.day.add")
	defer span.End()

	if allowOptions(w, r, "POST, OPTIONS") {
		return
	}

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	date, err := dateFromVars(mux.Vars(r))
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	var slot schedule.Slot
	if !decodeJSON(w, r, &slot, "add to day") {
		return
	}

	added, err := handler.service.AddToDay(ctx, ownerID, date, slot)
	if err != nil {
		writeServiceError(w, "add to day", err)
		return
	}
	pkg.WriteJSON(w, "add to day", added, http.StatusCreated)
}

func (handler *Handler) HandleUpdateDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.date.update")
	defer span.End()

	if allowOptions(w, r, "PUT, OPTIONS") {
		return
	}

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, invalid id", http.StatusBadRequest)
		return
	}

	var slot schedule.Slot
	if !decodeJSON(w, r, &slot, "update date") {
		return
	}

	updated, err := handler.service.UpdateDateAssignment(ctx, ownerID, id, slot)
	if err != nil {
		writeServiceError(w, "update date", err)
		return
	}
	pkg.WriteJSON(w, "update date", updated, http.StatusOK)
}

func (handler *Handler) HandleOverrideRoutineSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.day.override")
	defer span.End()

	if allowOptions(w, r, "PUT, OPTIONS") {
		return
	}

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
	routineID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, invalid id", http.StatusBadRequest)
		return
	}

	var slot schedule.Slot
	if !decodeJSON(w, r, &slot, "override routine slot") {
		return
	}

	added, err := handler.service.OverrideRoutineSlot(ctx, ownerID, routineID, date, slot)
	if err != nil {
		writeServiceError(w, "override routine slot", err)
		return
	}
	pkg.WriteJSON(w, "override routine slot", added, http.StatusOK)
}

func (handler *Handler) HandleRemoveFromDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.day.remove")
	defer span.End()

	if allowOptions(w, r, "POST, OPTIONS") {
		return
	}

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}
	date, err := dateFromVars(mux.Vars(r))
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	var req struct {
		DateIDs    []int `json:"dateIds"`
		RoutineIDs []int `json:"routineIds"`
	}
	if !decodeJSON(w, r, &req, "remove from day") {
		return
	}
	if len(req.DateIDs) == 0 && len(req.RoutineIDs) == 0 {
		http.Error(w, "error, nothing to remove", http.StatusBadRequest)
		return
	}

	if err := handler.service.RemoveFromDay(ctx, ownerID, date, req.DateIDs, req.RoutineIDs); err != nil {
		writeServiceError(w, "remove from day", err)
		return
	}
	pkg.WriteTextResponseOK(w, "removed")
}

func (handler *Handler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.calendar.clear")
	defer span.End()

	ownerID, ok := ownerOrUnauthorized(w, r)
	if !ok {
		return
	}

	result, err := handler.service.ClearAll(ctx, ownerID)
	if err != nil {
		writeServiceError(w, "clear calendar", err)
		return
	}
	pkg.WriteJSON(w, "clear calendar", result, http.StatusOK)
}
