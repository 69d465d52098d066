package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/telemetry/tracing"
	"github.com/2beens/workoutplan/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSessionTTL = 24 * 7 * time.Hour
	sessionKeyPrefix  = "workoutplan-session||"
	tokensSetKey      = "workoutplan-sessions"
	sessionTokenLen   = 35
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	Token     string    `json:"-"`
	UserID    int       `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewSessionStore(ttl time.Duration, redisClient *redis.Client) *SessionStore {
	return &SessionStore{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.RandomToken,
	}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) Create(ctx context.Context, userID int, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.session.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := s.RandStringFunc(sessionTokenLen)
	if err != nil {
		return "", err
	}

	sessionJson, err := json.Marshal(Session{UserID: userID, CreatedAt: createdAt})
	if err != nil {
		return "", err
	}

	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, string(sessionJson), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// add token to list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("add session token: %w", err)
	}

	return token, nil
}

// Get resolves a token to its session. Expired and unknown tokens yield ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, token string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.session.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.read(ctx, token)
	if err != nil {
		return nil, err
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (s *SessionStore) read(ctx context.Context, token string) (*Session, error) {
	val, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session := &Session{}
	if err := json.Unmarshal([]byte(val), session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	session.Token = token

	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.session.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	deleted, err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return err
	}

	// remove token from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return err
	}

	if deleted == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *SessionStore) ScanAndClean(ctx context.Context) {
	sessionTokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! session store, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("=> session store, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> session store, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		session, err := s.read(ctx, token)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// expired in redis already, only the set entry is left
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("=> session store, scan and clean token: %s", err)
			continue
		}

		if time.Since(session.CreatedAt) > s.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			log.Errorf("=> session store, clean token: %s", err)
			continue
		}
		if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("=> session store, clean token: %s", err)
			continue
		}
	}
	log.Debugf("=> session store, scan and clean done, removed %d sessions", len(toRemove))
}

// RunCleaner sweeps old sessions every interval until ctx is done.
func (s *SessionStore) RunCleaner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ScanAndClean(ctx)
		}
	}
}
