package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"rentpolicy/internal/caching"
	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	tokenBytes         = 32
	tokenLength        = tokenBytes * 2
	refreshMaxAttempts = 3
	DefaultTokenExpiry = 7
	MinTokenExpiryDays = 1
	MaxTokenExpiryDays = 30
)

type TokenConfig struct {
	DefaultDays int
	MinDays     int
	MaxDays     int
}

func DefaultTokenConfig() TokenConfig {
	return TokenConfig{DefaultDays: DefaultTokenExpiry, MinDays: MinTokenExpiryDays, MaxDays: MaxTokenExpiryDays}
}

// clamp brings days into [MinDays, MaxDays]; zero or negative means default.
func (c TokenConfig) clamp(days int) int {
	if days <= 0 {
		days = c.DefaultDays
	}
	if days < c.MinDays {
		return c.MinDays
	}
	if days > c.MaxDays {
		return c.MaxDays
	}
	return days
}

// TokenService manages the single self-service token each actor may hold.
type TokenService interface {
	Generate(ctx context.Context, actorID uuid.UUID, expiryDays int, performedBy string) (*models.IssuedToken, error)
	Validate(ctx context.Context, token string) (*models.TokenValidation, error)
	ValidateAndTouch(ctx context.Context, token string) (*models.TokenValidation, error)
	Revoke(ctx context.Context, actorID uuid.UUID, performedBy string) error
	Refresh(ctx context.Context, actorID uuid.UUID, additionalDays int, performedBy string) (*models.IssuedToken, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type tokenService struct {
	actors   repositories.ActorRepository
	cache    caching.CacheService
	activity ActivityLogger
	config   TokenConfig
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewTokenService builds the token manager. cache may be nil.
func NewTokenService(actors repositories.ActorRepository, cache caching.CacheService, activity ActivityLogger, config TokenConfig, logger logrus.FieldLogger) TokenService {
	return &tokenService{
		actors:   actors,
		cache:    cache,
		activity: activity,
		config:   config,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *tokenService) Generate(ctx context.Context, actorID uuid.UUID, expiryDays int, performedBy string) (*models.IssuedToken, error) {
	actor, err := s.actors.GetByID(ctx, actorID)
	if err != nil {
		return nil, actorErr(err)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	days := s.config.clamp(expiryDays)
	expiresAt := s.now().AddDate(0, 0, days)

	if err := s.actors.SetToken(ctx, actorID, token, expiresAt); err != nil {
		return nil, actorErr(err)
	}

	if actor.AccessToken != nil {
		s.forget(ctx, *actor.AccessToken)
	}
	s.remember(ctx, token, actorID, expiresAt)

	s.logger.WithFields(logrus.Fields{"actor_id": actorID, "expires_at": expiresAt}).Info("self-service token generated")
	s.activity.Log(ctx, actorID, models.ActionTokenGenerated, performedBy, models.JSONB{"expiry_days": days})
	return &models.IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate reports unknown and expired tokens in the result. Only store
// failures are returned as errors.
func (s *tokenService) Validate(ctx context.Context, token string) (*models.TokenValidation, error) {
	if len(token) != tokenLength {
		return &models.TokenValidation{Error: models.TokenErrInvalid}, nil
	}

	actor, err := s.lookup(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.TokenValidation{Error: models.TokenErrInvalid}, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if actor.TokenExpiry == nil || !actor.TokenExpiry.After(now) {
		return &models.TokenValidation{Error: models.TokenErrExpired}, nil
	}

	return &models.TokenValidation{
		IsValid:        true,
		Actor:          actor,
		RemainingHours: actor.TokenExpiry.Sub(now).Hours(),
	}, nil
}

func (s *tokenService) ValidateAndTouch(ctx context.Context, token string) (*models.TokenValidation, error) {
	result, err := s.Validate(ctx, token)
	if err != nil || !result.IsValid {
		return result, err
	}

	now := s.now()
	if err := s.actors.TouchAccess(ctx, result.Actor.ID, now); err != nil {
		s.logger.WithError(err).WithField("actor_id", result.Actor.ID).Warn("failed to record token access")
	} else {
		result.Actor.LastAccessAt = &now
	}
	return result, nil
}

func (s *tokenService) Revoke(ctx context.Context, actorID uuid.UUID, performedBy string) error {
	actor, err := s.actors.GetByID(ctx, actorID)
	if err != nil {
		return actorErr(err)
	}
	if err := s.actors.ClearToken(ctx, actorID); err != nil {
		return actorErr(err)
	}
	if actor.AccessToken != nil {
		s.forget(ctx, *actor.AccessToken)
	}

	s.activity.Log(ctx, actorID, models.ActionTokenRevoked, performedBy, nil)
	return nil
}

// Refresh extends from the current expiry while the token is live and from
// now once it has lapsed, never past now plus MaxDays. The write is
// conditional on the token and expiry read being unchanged and is retried
// on conflict.
func (s *tokenService) Refresh(ctx context.Context, actorID uuid.UUID, additionalDays int, performedBy string) (*models.IssuedToken, error) {
	days := s.config.clamp(additionalDays)

	for attempt := 1; attempt <= refreshMaxAttempts; attempt++ {
		actor, err := s.actors.GetByID(ctx, actorID)
		if err != nil {
			return nil, actorErr(err)
		}
		if actor.AccessToken == nil {
			return nil, ErrNoToken
		}

		now := s.now()
		base := now
		if actor.TokenExpiry != nil && actor.TokenExpiry.After(now) {
			base = *actor.TokenExpiry
		}
		expiresAt := base.AddDate(0, 0, days)
		if ceiling := now.AddDate(0, 0, s.config.MaxDays); expiresAt.After(ceiling) {
			expiresAt = ceiling
		}

		ok, err := s.actors.ExtendToken(ctx, actorID, *actor.AccessToken, actor.TokenExpiry, expiresAt)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.WithFields(logrus.Fields{"actor_id": actorID, "attempt": attempt}).Debug("token changed during refresh, retrying")
			continue
		}

		s.forget(ctx, *actor.AccessToken)
		s.remember(ctx, *actor.AccessToken, actorID, expiresAt)
		s.activity.Log(ctx, actorID, models.ActionTokenRefreshed, performedBy, models.JSONB{"expires_at": expiresAt})
		return &models.IssuedToken{Token: *actor.AccessToken, ExpiresAt: expiresAt}, nil
	}
	return nil, ErrTokenConflict
}

func (s *tokenService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.actors.ClearExpiredTokens(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("cleared", n).Info("expired self-service tokens cleared")
	}
	return n, nil
}

// lookup resolves a token through the cache, confirming the hit against
// the actor row, and falls back to the store.
func (s *tokenService) lookup(ctx context.Context, token string) (*models.Actor, error) {
	if s.cache != nil {
		entry, err := s.cache.GetToken(ctx, token)
		if err != nil {
			s.logger.WithError(err).Warn("token cache read failed")
		}
		if entry != nil {
			actor, err := s.actors.GetByID(ctx, entry.ActorID)
			if err == nil && actor.AccessToken != nil && *actor.AccessToken == token {
				return actor, nil
			}
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			s.forget(ctx, token)
		}
	}

	actor, err := s.actors.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if actor.TokenExpiry != nil {
		s.remember(ctx, token, actor.ID, *actor.TokenExpiry)
	}
	return actor, nil
}

func (s *tokenService) remember(ctx context.Context, token string, actorID uuid.UUID, expiresAt time.Time) {
	if s.cache == nil {
		return
	}
	ttl := expiresAt.Sub(s.now())
	if err := s.cache.SetToken(ctx, token, &caching.TokenEntry{ActorID: actorID, ExpiresAt: expiresAt}, ttl); err != nil {
		s.logger.WithError(err).Warn("token cache write failed")
	}
}

func (s *tokenService) forget(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteToken(ctx, token); err != nil {
		s.logger.WithError(err).Warn("token cache delete failed")
	}
}
