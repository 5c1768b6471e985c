package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"credential-lifecycle/internal/autherr"
	"credential-lifecycle/internal/security"
	"credential-lifecycle/internal/session/domain"
	"credential-lifecycle/internal/session/repository"
)

// Tokens is what a successful Issue or Rotate hands back. RefreshToken is plaintext and is
// only ever returned, never stored.
type Tokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	RotationCounter  int
}

// RotationConfig holds the engine's durations.
type RotationConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// GraceWindow, when > 0, lets the secret replaced by the latest rotation be presented
	// once more within the window (a client retry after a lost response).
	GraceWindow time.Duration
}

// RotationEngine issues refresh secrets and rotates them with an append-only history.
type RotationEngine struct {
	repo   repository.Repository
	codec  *security.Codec
	tokens *security.TokenProvider
	cfg    RotationConfig
	now    func() time.Time
}

// NewRotationEngine returns a RotationEngine. A nil now means time.Now.
func NewRotationEngine(repo repository.Repository, codec *security.Codec, tokens *security.TokenProvider, cfg RotationConfig, now func() time.Time) *RotationEngine {
	if now == nil {
		now = time.Now
	}
	return &RotationEngine{repo: repo, codec: codec, tokens: tokens, cfg: cfg, now: now}
}

// Issue creates the first refresh grant of a freshly created session and mints an access
// token. No rotation record is written. sess is updated in place.
func (e *RotationEngine) Issue(ctx context.Context, sess *domain.Session) (*Tokens, error) {
	now := e.now().UTC()
	if !sess.IsLive(now) {
		return nil, autherr.ErrSessionNotActive
	}
	secret, grant, err := e.newGrant(ctx, sess, now)
	if err != nil {
		return nil, autherr.Internal("refresh.issue", err)
	}
	if err := e.repo.SetRefresh(ctx, sess.ID, grant, 1); err != nil {
		if errors.Is(err, repository.ErrRotationConflict) {
			return nil, autherr.ErrSessionNotActive
		}
		return nil, autherr.Internal("refresh.issue", err)
	}
	sess.Refresh = &grant
	sess.RotationCounter = 1
	return e.mint(sess, secret, grant)
}

// Rotate exchanges the presented refresh secret for a new one. The outstanding hash is
// recorded in the history before it is replaced, and the swap only succeeds if no other
// rotation won first. sess is updated in place on success.
func (e *RotationEngine) Rotate(ctx context.Context, sess *domain.Session, presented string, now time.Time) (*Tokens, error) {
	now = now.UTC()
	if sess == nil || !sess.Active() || sess.Refresh == nil || now.After(sess.Refresh.ExpiresAt) {
		return nil, autherr.ErrExpiredRefresh
	}
	if now.After(sess.ExpiresAt) {
		return nil, autherr.ErrSessionNotActive
	}
	if presented == "" {
		return nil, autherr.ErrInvalidRefresh
	}
	ok, err := e.codec.Verify(ctx, presented, sess.Refresh.Hash)
	if err != nil {
		return nil, autherr.Internal("refresh.rotate", err)
	}
	if !ok {
		ok, err = e.withinGrace(ctx, sess.ID, presented, now)
		if err != nil {
			return nil, autherr.Internal("refresh.rotate", err)
		}
		if !ok {
			return nil, autherr.ErrInvalidRefresh
		}
	}
	secret, grant, err := e.newGrant(ctx, sess, now)
	if err != nil {
		return nil, autherr.Internal("refresh.rotate", err)
	}
	counter, err := e.repo.RotateRefresh(ctx, repository.Rotation{
		SessionID:    sess.ID,
		ExpectedHash: sess.Refresh.Hash,
		Next:         grant,
		Record: domain.RotationRecord{
			ID:           uuid.New().String(),
			SessionID:    sess.ID,
			PreviousHash: sess.Refresh.Hash,
			RotatedAt:    now,
		},
		At: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrRotationConflict) {
			return nil, autherr.ErrInvalidRefresh
		}
		return nil, autherr.Internal("refresh.rotate", err)
	}
	sess.Refresh = &grant
	sess.RotationCounter = counter
	sess.LastActivityAt = now
	return e.mint(sess, secret, grant)
}

// History returns the rotation records of the session, oldest first.
func (e *RotationEngine) History(ctx context.Context, sessionID string) ([]domain.RotationRecord, error) {
	recs, err := e.repo.ListRotations(ctx, sessionID)
	if err != nil {
		return nil, autherr.Internal("refresh.history", err)
	}
	return recs, nil
}

// withinGrace reports whether presented is the secret replaced by the most recent rotation
// and that rotation happened no longer than GraceWindow ago.
func (e *RotationEngine) withinGrace(ctx context.Context, sessionID, presented string, now time.Time) (bool, error) {
	if e.cfg.GraceWindow <= 0 {
		return false, nil
	}
	rec, err := e.repo.LatestRotation(ctx, sessionID)
	if err != nil || rec == nil {
		return false, err
	}
	if now.Sub(rec.RotatedAt) > e.cfg.GraceWindow {
		return false, nil
	}
	return e.codec.Verify(ctx, presented, rec.PreviousHash)
}

func (e *RotationEngine) newGrant(ctx context.Context, sess *domain.Session, now time.Time) (string, domain.RefreshGrant, error) {
	secret, err := security.NewRefreshSecret()
	if err != nil {
		return "", domain.RefreshGrant{}, err
	}
	hash, err := e.codec.Hash(ctx, secret)
	if err != nil {
		return "", domain.RefreshGrant{}, err
	}
	expiresAt := now.Add(e.cfg.RefreshTTL)
	if expiresAt.After(sess.ExpiresAt) {
		expiresAt = sess.ExpiresAt
	}
	return secret, domain.RefreshGrant{Hash: hash, ExpiresAt: expiresAt}, nil
}

func (e *RotationEngine) mint(sess *domain.Session, secret string, grant domain.RefreshGrant) (*Tokens, error) {
	access, accessExp, err := e.tokens.IssueAccess(sess.UserID, sess.ID, e.cfg.AccessTTL)
	if err != nil {
		return nil, autherr.Internal("refresh.mint", err)
	}
	return &Tokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     secret,
		RefreshExpiresAt: grant.ExpiresAt,
		RotationCounter:  sess.RotationCounter,
	}, nil
}
