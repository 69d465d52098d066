package character

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/2beens/workoutplan/internal/schedule"
	"github.com/2beens/workoutplan/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=character_mocks_test.go -package=character_test

const (
	DefaultName   = "bodybuilder"
	DefaultNumber = "1"

	maxFieldLength = 50
	// seconds
	cacheExpire = 60 * 60
)

var ErrCharacterNotFound = errors.New("character not found")

type Character struct {
	OwnerID int    `json:"-"`
	Name    string `json:"name"`
	Number  string `json:"number"`
}

func (c Character) Validate() error {
	if c.Name == "" || c.Number == "" {
		return fmt.Errorf("%w: character name and number are required", schedule.ErrValidation)
	}
	if utf8.RuneCountInString(c.Name) > maxFieldLength || utf8.RuneCountInString(c.Number) > maxFieldLength {
		return fmt.Errorf("%w: character name and number are limited to %d characters", schedule.ErrValidation, maxFieldLength)
	}
	return nil
}

type characterRepo interface {
	Get(ctx context.Context, ownerID int) (*Character, error)
	Save(ctx context.Context, character Character) error
}

// Service keeps one character per user, read through an in-process cache.
type Service struct {
	repo  characterRepo
	cache *freecache.Cache
}

func NewService(repo characterRepo, cacheSize int) *Service {
	return &Service{
		repo:  repo,
		cache: freecache.NewCache(cacheSize),
	}
}

func cacheKey(ownerID int) []byte {
	return []byte("character::" + strconv.Itoa(ownerID))
}

// Get returns the user's character, selecting the default one on first use.
func (s *Service) Get(ctx context.Context, ownerID int) (_ *Character, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "character.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := cacheKey(ownerID)
	if cached, err := s.cache.Get(key); err == nil {
		character := &Character{}
		if err := json.Unmarshal(cached, character); err == nil {
			character.OwnerID = ownerID
			return character, nil
		} else {
			log.Errorf("failed to unmarshal cached character of %d: %s", ownerID, err)
		}
	}

	character, err := s.repo.Get(ctx, ownerID)
	if errors.Is(err, ErrCharacterNotFound) {
		character = &Character{OwnerID: ownerID, Name: DefaultName, Number: DefaultNumber}
		if err := s.repo.Save(ctx, *character); err != nil {
			return nil, fmt.Errorf("save default character: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	s.setCache(key, character)
	return character, nil
}

// Select replaces the user's character.
func (s *Service) Select(ctx context.Context, character Character) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "character.select")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	character.Name = strings.TrimSpace(character.Name)
	character.Number = strings.TrimSpace(character.Number)
	if err := character.Validate(); err != nil {
		return err
	}

	key := cacheKey(character.OwnerID)
	s.cache.Del(key)
	if err := s.repo.Save(ctx, character); err != nil {
		return err
	}
	s.setCache(key, &character)
	return nil
}

func (s *Service) setCache(key []byte, character *Character) {
	characterBytes, err := json.Marshal(character)
	if err != nil {
		log.Errorf("failed to marshal character: %s", err)
		return
	}
	if err := s.cache.Set(key, characterBytes, cacheExpire); err != nil {
		log.Errorf("failed to cache character %s: %s", key, err)
	}
}
