package routine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/workoutplan/internal/auth"
	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routine_test

type bufferStore interface {
	Load(ctx context.Context, sessionToken string) (*Buffer, error)
	Save(ctx context.Context, sessionToken string, buf *Buffer) error
	Clear(ctx context.Context, sessionToken string) error
}

type routineService interface {
	WeekPlan(ctx context.Context, ownerID int, buf *Buffer) (*WeekPlan, error)
	Period(ctx context.Context, ownerID int, buf *Buffer) (*PeriodView, error)
	CreateSlot(ctx context.Context, ownerID int, buf *Buffer, weekday schedule.Weekday, slot schedule.Slot) (Key, error)
	UpdateSlot(ctx context.Context, ownerID int, buf *Buffer, kind Kind, key Key, weekday schedule.Weekday, slot schedule.Slot) (Key, error)
	DeleteSlot(ctx context.Context, ownerID int, buf *Buffer, kind Kind, key Key) error
	DeleteAll(ctx context.Context, ownerID int, buf *Buffer) error
	SetPeriod(buf *Buffer, start, end time.Time) error
	Confirm(ctx context.Context, ownerID int, buf *Buffer, opts CommitOptions) (*CommitResult, error)
	Discard(buf *Buffer)
}

type Handler struct {
	service routineService
	buffers bufferStore
}

func NewHandler(service routineService, buffers bufferStore) *Handler {
	return &Handler{
		service: service,
		buffers: buffers,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/week", handler.HandleWeek).Methods("GET").Name("routine-week")
	router.HandleFunc("/slots", handler.HandleCreateSlot).Methods("POST", "OPTIONS").Name("routine-slot-create")
	router.HandleFunc("/slots", handler.HandleUpdateSlot).Methods("PUT").Name("routine-slot-update")
	router.HandleFunc("/slots", handler.HandleDeleteSlot).Methods("DELETE").Name("routine-slot-delete")
	router.HandleFunc("/slots/all", handler.HandleDeleteAll).Methods("DELETE").Name("routine-slot-delete-all")
	router.HandleFunc("/period", handler.HandleGetPeriod).Methods("GET").Name("routine-period")
	router.HandleFunc("/period", handler.HandleSetPeriod).Methods("PUT", "OPTIONS").Name("routine-period-set")
	router.HandleFunc("/confirm", handler.HandleConfirm).Methods("POST", "OPTIONS").Name("routine-confirm")
	router.HandleFunc("/pending", handler.HandleDiscard).Methods("DELETE").Name("routine-discard")
}

type bufferedRequest struct {
	ownerID int
	token   string
	buf     *Buffer
}

// load resolves the session and its buffer; on failure the response is already written.
func (handler *Handler) load(w http.ResponseWriter, r *http.Request) (*bufferedRequest, bool) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}
	token, ok := auth.SessionTokenFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	buf, err := handler.buffers.Load(r.Context(), token)
	if err != nil {
		log.Errorf("load routine buffer: %s", err)
		http.Error(w, "load pending routine failed", http.StatusInternalServerError)
		return nil, false
	}

	return &bufferedRequest{ownerID: ownerID, token: token, buf: buf}, true
}

func (handler *Handler) save(ctx context.Context, w http.ResponseWriter, req *bufferedRequest) bool {
	if err := handler.buffers.Save(ctx, req.token, req.buf); err != nil {
		log.Errorf("save routine buffer: %s", err)
		http.Error(w, "save pending routine failed", http.StatusInternalServerError)
		return false
	}
	return true
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

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, schedule.ErrValidation):
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
	case errors.Is(err, ErrSlotNotFound):
		http.Error(w, "error, slot not found", http.StatusNotFound)
	case errors.Is(err, schedule.ErrRoutineNotFound):
		http.Error(w, "error, routine changed meanwhile, discard pending edits and retry", http.StatusConflict)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}

func allowOptions(w http.ResponseWriter, r *http.Request, allow string) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	w.Header().Add("Allow", allow)
	w.WriteHeader(http.StatusOK)
	return true
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.week")
	defer span.End()

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	plan, err := handler.service.WeekPlan(ctx, req.ownerID, req.buf)
	if err != nil {
		writeServiceError(w, "get week plan", err)
		return
	}
	if !handler.save(ctx, w, req) {
		return
	}

	pkg.WriteJSON(w, "get week plan", plan, http.StatusOK)
}

type slotRequest struct {
	Kind     Kind              `json:"kind"`
	Key      Key               `json:"key"`
	Weekday  schedule.Weekday  `json:"weekday"`
	BodyPart schedule.BodyPart `json:"bodyPart"`
	Detail   string            `json:"detail"`
}

func (sr slotRequest) slot() schedule.Slot {
	return schedule.Slot{BodyPart: sr.BodyPart, Detail: sr.Detail}
}

func (handler *Handler) HandleCreateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.slot.create")
	defer span.End()

	if allowOptions(w, r, "POST, OPTIONS") {
		return
	}

	var slotReq slotRequest
	if !decodeJSON(w, r, &slotReq, "create slot") {
		return
	}

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	key, err := handler.service.CreateSlot(ctx, req.ownerID, req.buf, slotReq.Weekday, slotReq.slot())
	if err != nil {
		writeServiceError(w, "create slot", err)
		return
	}
	if !handler.save(ctx, w, req) {
		return
	}

	pkg.WriteJSON(w, "create slot", map[string]any{"kind": KindCreate, "key": key}, http.StatusCreated)
}

func (handler *Handler) HandleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.slot.update")
	defer span.End()

	var slotReq slotRequest
	if !decodeJSON(w, r, &slotReq, "update slot") {
		return
	}

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	key, err := handler.service.UpdateSlot(ctx, req.ownerID, req.buf, slotReq.Kind, slotReq.Key, slotReq.Weekday, slotReq.slot())
	if err != nil {
		writeServiceError(w, "update slot", err)
		return
	}
	if !handler.save(ctx, w, req) {
		return
	}

	kind := KindUpdate
	if slotReq.Kind == KindCreate {
		kind = KindCreate
	}
	pkg.WriteJSON(w, "update slot", map[string]any{"kind": kind, "key": key}, http.StatusOK)
}

func (handler *Handler) HandleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.slot.delete")
	defer span.End()

	var slotReq slotRequest
	if !decodeJSON(w, r, &slotReq, "delete slot") {
		return
	}

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	if err := handler.service.DeleteSlot(ctx, req.ownerID, req.buf, slotReq.Kind, slotReq.Key); err != nil {
		writeServiceError(w, "delete slot", err)
		return
	}
	if !handler.save(ctx, w, req) {
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.slot.delete-all")
	defer span.End()

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	if err := handler.service.DeleteAll(ctx, req.ownerID, req.buf); err != nil {
		writeServiceError(w, "delete all slots", err)
		return
	}
	if !handler.save(ctx, w, req) {
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) HandleGetPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.period.get")
	defer span.End()

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	period, err := handler.service.Period(ctx, req.ownerID, req.buf)
	if err != nil {
		writeServiceError(w, "get period", err)
		return
	}

	pkg.WriteJSON(w, "get period", struct {
		Start   string `json:"start"`
		End     string `json:"end"`
		Pending bool   `json:"pending"`
	}{
		Start:   period.Start.Format(schedule.DateLayout),
		End:     period.End.Format(schedule.DateLayout),
		Pending: period.Pending,
	}, http.StatusOK)
}

func (handler *Handler) HandleSetPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.period.set")
	defer span.End()

	if allowOptions(w, r, "PUT, OPTIONS") {
		return
	}

	var periodReq struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if !decodeJSON(w, r, &periodReq, "set period") {
		return
	}
	start, err := schedule.ParseDate(periodReq.Start)
	if err != nil {
		http.Error(w, "error, invalid start date", http.StatusBadRequest)
		return
	}
	end, err := schedule.ParseDate(periodReq.End)
	if err != nil {
		http.Error(w, "error, invalid end date", http.StatusBadRequest)
		return
	}

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	if err := handler.service.SetPeriod(req.buf, start, end); err != nil {
		writeServiceError(w, "set period", err)
		return
	}
	if !handler.save(ctx, w, req) {
		return
	}

	pkg.WriteTextResponseOK(w, "period set")
}

func (handler *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.confirm")
	defer span.End()

	if allowOptions(w, r, "POST, OPTIONS") {
		return
	}

	var opts CommitOptions
	if r.ContentLength != 0 && !decodeJSON(w, r, &opts, "confirm routine") {
		return
	}

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	result, err := handler.service.Confirm(ctx, req.ownerID, req.buf, opts)
	if err != nil {
		writeServiceError(w, "confirm routine", err)
		return
	}

	if err := handler.buffers.Clear(ctx, req.token); err != nil {
		// the routine is committed, a leftover buffer would replay it
		log.Errorf("clear routine buffer: %s", err)
		http.Error(w, "clear pending routine failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, "confirm routine", result, http.StatusOK)
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.discard")
	defer span.End()

	req, ok := handler.load(w, r)
	if !ok {
		return
	}

	handler.service.Discard(req.buf)
	if err := handler.buffers.Clear(ctx, req.token); err != nil {
		log.Errorf("clear routine buffer: %s", err)
		http.Error(w, "discard pending routine failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "discarded")
}
