package routine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutplan/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const bufferKeyPrefix = "workoutplan-buffer||"

// BufferStore keeps each session's edit buffer in redis, next to the session itself.
type BufferStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewBufferStore(redisClient *redis.Client, ttl time.Duration) *BufferStore {
	return &BufferStore{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func bufferKey(sessionToken string) string {
	return bufferKeyPrefix + sessionToken
}

// Load returns the session's buffer, or an empty one if nothing was saved yet.
func (s *BufferStore) Load(ctx context.Context, sessionToken string) (_ *Buffer, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "routine.buffer.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := s.redisClient.Get(ctx, bufferKey(sessionToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewBuffer(), nil
		}
		return nil, fmt.Errorf("get buffer: %w", err)
	}

	buf := NewBuffer()
	if err := json.Unmarshal([]byte(val), buf); err != nil {
		return nil, fmt.Errorf("unmarshal buffer: %w", err)
	}
	return buf, nil
}

// Save writes the buffer back if it changed since it was loaded.
func (s *BufferStore) Save(ctx context.Context, sessionToken string, buf *Buffer) (err error) {
	if !buf.Dirty() {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "routine.buffer.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	bufJson, err := json.Marshal(buf)
	if err != nil {
		return fmt.Errorf("marshal buffer: %w", err)
	}
	if err := s.redisClient.Set(ctx, bufferKey(sessionToken), string(bufJson), s.ttl).Err(); err != nil {
		return fmt.Errorf("store buffer: %w", err)
	}

	buf.MarkClean()
	return nil
}

func (s *BufferStore) Clear(ctx context.Context, sessionToken string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "routine.buffer.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.redisClient.Del(ctx, bufferKey(sessionToken)).Err()
}
