package character

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/workoutplan/internal/auth"
	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type characterService interface {
	Get(ctx context.Context, ownerID int) (*Character, error)
	Select(ctx context.Context, character Character) error
}

type Handler struct {
	service characterService
}

func NewHandler(service characterService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleGet).Methods("GET").Name("character")
	router.HandleFunc("", handler.HandleSelect).Methods("PUT", "OPTIONS").Name("character-select")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.character.get")
	defer span.End()

	ownerID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	character, err := handler.service.Get(ctx, ownerID)
	if err != nil {
		log.Errorf("get character of %d: %s", ownerID, err)
		http.Error(w, "get character failed", http.StatusInternalServerError)
		return
	}

	characterJson, err := json.Marshal(character)
	if err != nil {
		log.Errorf("marshal character: %s", err)
		http.Error(w, "get character failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, characterJson, http.StatusOK)
}

func (handler *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.character.select")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ownerID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}
	var character Character
	if err := json.NewDecoder(r.Body).Decode(&character); err != nil {
		log.Tracef("select character, unmarshal json params: %s", err)
		http.Error(w, "select character failed", http.StatusBadRequest)
		return
	}
	character.OwnerID = ownerID

	if err := handler.service.Select(ctx, character); err != nil {
		if errors.Is(err, schedule.ErrValidation) {
			http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
			return
		}
		log.Errorf("select character for %d: %s", ownerID, err)
		http.Error(w, "select character failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "selected")
}
