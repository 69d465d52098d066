package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/2beens/workoutplan/internal/auth"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=schedule_test

type bodyPartLister interface {
	ListRoutinesByBodyPart(ctx context.Context, ownerID int, part BodyPart) ([]RoutineAssignment, error)
	ListDatesByBodyPart(ctx context.Context, ownerID int, part BodyPart) ([]DateAssignment, error)
}

type Handler struct {
	store bodyPartLister
}

func NewHandler(store bodyPartLister) *Handler {
	return &Handler{
		store: store,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/parts", handler.HandleListBodyParts).Methods("GET").Name("schedule-parts")
	router.HandleFunc("/parts/{part}", handler.HandleBodyPart).Methods("GET").Name("schedule-part")
}

type BodyPartSchedule struct {
	BodyPart BodyPart            `json:"bodyPart"`
	Routines []RoutineAssignment `json:"routines"`
	Dates    []DateAssignment    `json:"dates"`
}

func (handler *Handler) HandleListBodyParts(w http.ResponseWriter, _ *http.Request) {
	partsJson, err := json.Marshal(BodyParts)
	if err != nil {
		log.Errorf("marshal body parts: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, partsJson, http.StatusOK)
}

// HandleBodyPart lists where a body part is trained: its weekly slots and its dated slots.
func (handler *Handler) HandleBodyPart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.part")
	defer span.End()

	ownerID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	part := BodyPart(strings.ToLower(mux.Vars(r)["part"]))
	if !part.Valid() {
		http.Error(w, "error, unknown body part", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("part", string(part)))

	routines, err := handler.store.ListRoutinesByBodyPart(ctx, ownerID, part)
	if err != nil {
		log.Errorf("list routines by body part: %s", err)
		http.Error(w, "get body part schedule failed", http.StatusInternalServerError)
		return
	}
	dates, err := handler.store.ListDatesByBodyPart(ctx, ownerID, part)
	if err != nil {
		log.Errorf("list dates by body part: %s", err)
		http.Error(w, "get body part schedule failed", http.StatusInternalServerError)
		return
	}

	if routines == nil {
		routines = []RoutineAssignment{}
	}
	if dates == nil {
		dates = []DateAssignment{}
	}

	respJson, err := json.Marshal(BodyPartSchedule{
		BodyPart: part,
		Routines: routines,
		Dates:    dates,
	})
	if err != nil {
		log.Errorf("marshal body part schedule: %s", err)
		http.Error(w, "get body part schedule failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
