package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type authService interface {
	Register(ctx context.Context, email, password string, profile Profile) (*User, error)
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID int) (*User, error)
	UpdateProfile(ctx context.Context, userID int, profile Profile) error
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	RequestEmailChange(ctx context.Context, userID int, newEmail string) error
	ConfirmEmailChange(ctx context.Context, token string) error
}

type Handler struct {
	service authService
}

func NewHandler(service authService) *Handler {
	return &Handler{
		service: service,
	}
}

// SetupRoutes registers the account routes on the given (rate limited) /a subrouter.
func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	router.HandleFunc("/activate/{token}", handler.HandleActivate).Methods("GET").Name("activate")
	router.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/logout", handler.HandleLogout).Methods("POST", "GET", "OPTIONS").Name("logout")
	router.HandleFunc("/me", handler.HandleMe).Methods("GET").Name("me")
	router.HandleFunc("/me", handler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("me-update")
	router.HandleFunc("/password/change", handler.HandleChangePassword).Methods("POST", "OPTIONS").Name("password-change")
	router.HandleFunc("/password/reset", handler.HandleRequestPasswordReset).Methods("POST", "OPTIONS").Name("password-reset")
	router.HandleFunc("/password/reset/confirm", handler.HandleConfirmPasswordReset).Methods("POST", "OPTIONS").Name("password-reset-confirm")
	router.HandleFunc("/email/change", handler.HandleRequestEmailChange).Methods("POST", "OPTIONS").Name("email-change")
	router.HandleFunc("/email/confirm/{token}", handler.HandleConfirmEmailChange).Methods("GET").Name("email-confirm")
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
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidProfile):
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
	case errors.Is(err, ErrAccountNotActive):
		http.Error(w, "error, account not activated", http.StatusForbidden)
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, "error, email already registered", http.StatusConflict)
	case errors.Is(err, ErrTokenNotFound):
		http.Error(w, "error, link invalid or expired", http.StatusNotFound)
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "no can do", http.StatusUnauthorized)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, "error, user not found", http.StatusNotFound)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}

func userIDOrUnauthorized(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
	}
	return userID, ok
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Profile  Profile `json:"profile"`
	}
	if !decodeJSON(w, r, &req, "register") {
		return
	}

	user, err := handler.service.Register(ctx, req.Email, req.Password, req.Profile)
	if err != nil {
		writeServiceError(w, "register", err)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user registered: %d", user.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.activate")
	defer span.End()

	token := mux.Vars(r)["token"]
	if token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.Activate(ctx, token); err != nil {
		writeServiceError(w, "activate", err)
		return
	}

	pkg.WriteTextResponseOK(w, "activated")
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req, "login") {
		return
	}

	if req.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	token, err := handler.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "login", err)
		return
	}

	log.Trace("new login success")
	pkg.WriteJSON(w, "login", LoginResponse{Token: token}, http.StatusOK)
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	token, ok := SessionTokenFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.service.Logout(ctx, token); err != nil {
		writeServiceError(w, "logout", err)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.me")
	defer span.End()

	userID, ok := userIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	user, err := handler.service.Me(ctx, userID)
	if err != nil {
		writeServiceError(w, "get user", err)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusOK)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.profile")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, ok := userIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	var profile Profile
	if !decodeJSON(w, r, &profile, "update profile") {
		return
	}

	if err := handler.service.UpdateProfile(ctx, userID, profile); err != nil {
		writeServiceError(w, "update profile", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.password_change")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, ok := userIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req, "change password") {
		return
	}

	if err := handler.service.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, "change password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.password_reset")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req, "password reset") {
		return
	}

	if err := handler.service.RequestPasswordReset(ctx, req.Email); err != nil {
		writeServiceError(w, "password reset", err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (handler *Handler) HandleConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.password_reset_confirm")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req, "password reset confirm") {
		return
	}
	if req.Token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.ConfirmPasswordReset(ctx, req.Token, req.Password); err != nil {
		writeServiceError(w, "password reset confirm", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleRequestEmailChange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.email_change")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, ok := userIDOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req, "email change") {
		return
	}

	if err := handler.service.RequestEmailChange(ctx, userID, req.Email); err != nil {
		writeServiceError(w, "email change", err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (handler *Handler) HandleConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.email_confirm")
	defer span.End()

	token := mux.Vars(r)["token"]
	if token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.ConfirmEmailChange(ctx, token); err != nil {
		writeServiceError(w, "email confirm", err)
		return
	}

	pkg.WriteTextResponseOK(w, "email changed")
}
