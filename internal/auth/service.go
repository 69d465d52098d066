package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/2beens/workoutplan/internal/telemetry/metrics"
	"github.com/2beens/workoutplan/pkg"

	log "github.com/sirupsen/logrus"
)

const (
	MinPasswordLength = 8
	maxNameLength     = 50
	maxPhoneLength    = 20
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotActive   = errors.New("user not activated")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = fmt.Errorf("password must have at least %d characters", MinPasswordLength)
	ErrInvalidProfile     = errors.New("invalid profile")
)

var genders = map[string]bool{"": true, "male": true, "female": true, "other": true}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type userRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	DeleteInactive(ctx context.Context, email string) (int64, error)
	SetActive(ctx context.Context, id int) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateEmail(ctx context.Context, id int, email string) error
	UpdateProfile(ctx context.Context, id int, profile Profile) error
}

type sessionStore interface {
	Create(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type tokenStore interface {
	Issue(ctx context.Context, kind TokenKind, payload string) (string, error)
	Consume(ctx context.Context, kind TokenKind, token string) (string, error)
}

// LogoutHook runs after a session is removed, e.g. to drop state bound to the session token.
type LogoutHook func(ctx context.Context, token string) error

type Service struct {
	users       userRepo
	sessions    sessionStore
	tokens      tokenStore
	mailer      Mailer
	metrics     *metrics.Manager
	baseURL     string
	mailSender  string
	logoutHooks []LogoutHook
	now         func() time.Time
}

type ServiceParams struct {
	Users         userRepo
	Sessions      sessionStore
	Tokens        tokenStore
	Mailer        Mailer
	Metrics       *metrics.Manager
	PublicBaseURL string
	MailSender    string
}

func NewService(params ServiceParams) *Service {
	return &Service{
		users:      params.Users,
		sessions:   params.Sessions,
		tokens:     params.Tokens,
		mailer:     params.Mailer,
		metrics:    params.Metrics,
		baseURL:    strings.TrimSuffix(params.PublicBaseURL, "/"),
		mailSender: params.MailSender,
		now:        time.Now,
	}
}

func (s *Service) OnLogout(hook LogoutHook) {
	s.logoutHooks = append(s.logoutHooks, hook)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > 254 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func validateProfile(profile Profile) error {
	if utf8.RuneCountInString(profile.Name) > maxNameLength {
		return fmt.Errorf("%w: name too long", ErrInvalidProfile)
	}
	if len(profile.Phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone too long", ErrInvalidProfile)
	}
	if !genders[profile.Gender] {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, profile.Gender)
	}
	return nil
}

// Register creates an inactive account and mails its activation link. A previous, never
// activated registration of the same email is discarded.
func (s *Service) Register(ctx context.Context, email, password string, profile Profile) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if deleted, err := s.users.DeleteInactive(ctx, email); err != nil {
		return nil, fmt.Errorf("delete inactive user: %w", err)
	} else if deleted > 0 {
		log.Debugf("register: removed %d inactive registrations", deleted)
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Add(ctx, User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
		Profile:      profile,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, TokenActivation, strconv.Itoa(user.ID))
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Send(ctx, Mail{
		From:    s.mailSender,
		To:      user.Email,
		Subject: "Activate your account",
		Body:    fmt.Sprintf("Open the link below to activate your account:\n%s/a/activate/%s\n", s.baseURL, token),
	}); err != nil {
		return nil, fmt.Errorf("send activation mail: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterRegistrations.Inc()
	}

	return user, nil
}

func (s *Service) Activate(ctx context.Context, token string) error {
	payload, err := s.tokens.Consume(ctx, TokenActivation, token)
	if err != nil {
		return err
	}
	userID, err := strconv.Atoi(payload)
	if err != nil {
		return fmt.Errorf("activation token payload: %w", err)
	}
	return s.users.SetActive(ctx, userID)
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	if !user.Active {
		return "", ErrAccountNotActive
	}

	return s.sessions.Create(ctx, user.ID, s.now())
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	for _, hook := range s.logoutHooks {
		if err := hook(ctx, token); err != nil {
			log.Errorf("logout hook: %s", err)
		}
	}
	return nil
}

// Session resolves a session token, it backs the auth middleware.
func (s *Service) Session(ctx context.Context, token string) (*Session, error) {
	return s.sessions.Get(ctx, token)
}

func (s *Service) Me(ctx context.Context, userID int) (*User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int, profile Profile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	return s.users.UpdateProfile(ctx, userID, profile)
}

func (s *Service) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !pkg.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := pkg.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, passwordHash)
}

// RequestPasswordReset mails a reset link. Unknown emails are not reported to the caller.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Debugf("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.tokens.Issue(ctx, TokenPasswordReset, strconv.Itoa(user.ID))
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, Mail{
		From:    s.mailSender,
		To:      user.Email,
		Subject: "Password reset",
		Body:    fmt.Sprintf("Open the link below to set a new password:\n%s/a/password/reset/%s\n", s.baseURL, token),
	})
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	payload, err := s.tokens.Consume(ctx, TokenPasswordReset, token)
	if err != nil {
		return err
	}
	userID, err := strconv.Atoi(payload)
	if err != nil {
		return fmt.Errorf("reset token payload: %w", err)
	}
	passwordHash, err := pkg.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, passwordHash)
}

type emailChange struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
}

// RequestEmailChange mails a confirmation link to the new address; the email is
// changed once the link is opened.
func (s *Service) RequestEmailChange(ctx context.Context, userID int, newEmail string) error {
	newEmail, err := normalizeEmail(newEmail)
	if err != nil {
		return err
	}

	existing, err := s.users.GetByEmail(ctx, newEmail)
	switch {
	case err == nil && existing.Active:
		return ErrEmailTaken
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return err
	}

	payload, err := json.Marshal(emailChange{UserID: userID, Email: newEmail})
	if err != nil {
		return err
	}
	token, err := s.tokens.Issue(ctx, TokenEmailChange, string(payload))
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, Mail{
		From:    s.mailSender,
		To:      newEmail,
		Subject: "Confirm your new email",
		Body:    fmt.Sprintf("Open the link below to confirm the email change:\n%s/a/email/confirm/%s\n", s.baseURL, token),
	})
}

func (s *Service) ConfirmEmailChange(ctx context.Context, token string) error {
	payload, err := s.tokens.Consume(ctx, TokenEmailChange, token)
	if err != nil {
		return err
	}
	var change emailChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return fmt.Errorf("email change token payload: %w", err)
	}
	if _, err := s.users.DeleteInactive(ctx, change.Email); err != nil {
		return err
	}
	return s.users.UpdateEmail(ctx, change.UserID, change.Email)
}
