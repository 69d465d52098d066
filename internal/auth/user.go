package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type Profile struct {
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Gender   string     `json:"gender"`
	Birthday *time.Time `json:"birthday,omitempty"`
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	Profile
}

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

func (r *UserRepo) Add(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO app_user (email, password_hash, active, name, phone, gender, birthday, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id;`,
		user.Email, user.PasswordHash, user.Active,
		user.Name, user.Phone, user.Gender, user.Birthday,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	return &user, nil
}

func (r *UserRepo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	return r.getBy(ctx, `id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.getbyemail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getBy(ctx, `email = $1`, email)
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (*User, error) {
	user := &User{}
	err := r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, active, name, phone, gender, birthday, created_at
			FROM app_user
			WHERE `+where+`;`,
		arg,
	).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Active,
		&user.Name, &user.Phone, &user.Gender, &user.Birthday,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) SetActive(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.setactive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.update(ctx, `UPDATE app_user SET active = TRUE WHERE id = $1;`, id)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.updatepassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.update(ctx, `UPDATE app_user SET password_hash = $2 WHERE id = $1;`, id, passwordHash)
}

func (r *UserRepo) UpdateEmail(ctx context.Context, id int, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.updateemail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.update(ctx, `UPDATE app_user SET email = $2 WHERE id = $1;`, id, email)
	if pkg.IsUniqueViolationError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepo) update(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteInactive removes a never activated account holding the email, freeing it for a new registration.
func (r *UserRepo) DeleteInactive(ctx context.Context, email string) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.deleteinactive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM app_user WHERE email = $1 AND active = FALSE;`, email)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id int, profile Profile) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.auth.user.updateprofile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.update(
		ctx,
		`UPDATE app_user SET name = $2, phone = $3, gender = $4, birthday = $5 WHERE id = $1;`,
		id, profile.Name, profile.Phone, profile.Gender, profile.Birthday,
	)
}
