package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditdomain "credential-lifecycle/internal/audit/domain"
	"credential-lifecycle/internal/autherr"
	identitydomain "credential-lifecycle/internal/identity/domain"
	lockoutservice "credential-lifecycle/internal/lockout/service"
	"credential-lifecycle/internal/logging"
	"credential-lifecycle/internal/security"
	sessiondomain "credential-lifecycle/internal/session/domain"
	sessionservice "credential-lifecycle/internal/session/service"
	"credential-lifecycle/internal/telemetry"
	userdomain "credential-lifecycle/internal/user/domain"
	userrepo "credential-lifecycle/internal/user/repository"
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	// CreateWithCredential stores the user and its credential atomically.
	CreateWithCredential(ctx context.Context, u *userdomain.User, c *identitydomain.Credential) error
}

// CredentialRepo is the minimal credential repository needed by the auth service.
type CredentialRepo interface {
	GetByUserID(ctx context.Context, userID string) (*identitydomain.Credential, error)
}

// AccessLog records access log entries.
type AccessLog interface {
	Record(ctx context.Context, entry auditdomain.AccessLogEntry) error
}

// LoginInput is the caller-supplied part of a login.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// RegisterInput describes a new account. An empty TenantID gets a fresh tenant id.
type RegisterInput struct {
	TenantID    string
	GivenNames  string
	FamilyNames string
	Email       string
	Phone       string
	Password    string
	IP          string
}

// AuthResult holds the outcome of Login or Refresh.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	SessionID        string
	UserID           string
	ExpiresAt        time.Time // access token expiry
	RefreshExpiresAt time.Time
}

// RegisterResult is returned for every accepted registration. UserID is empty when the
// email was already registered; it must not be shown to untrusted callers.
type RegisterResult struct {
	UserID string
}

// AuthService implements register, login, refresh, logout and current-user resolution.
type AuthService struct {
	users       UserRepo
	credentials CredentialRepo
	sessions    *sessionservice.Store
	rotation    *sessionservice.RotationEngine
	lockout     *lockoutservice.Guard
	accessLog   AccessLog
	codec       *security.Codec
	tokens      *security.TokenProvider
	metrics     *telemetry.Metrics
	log         *zap.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Components are the collaborators of AuthService.
type Components struct {
	Users       UserRepo
	Credentials CredentialRepo
	Sessions    *sessionservice.Store
	Rotation    *sessionservice.RotationEngine
	Lockout     *lockoutservice.Guard
	AccessLog   AccessLog
	Codec       *security.Codec
	Tokens      *security.TokenProvider
	Metrics     *telemetry.Metrics // nil means no-op
	Logger      *zap.Logger        // nil means no-op
	Now         func() time.Time   // nil means time.Now
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(c Components) *AuthService {
	if c.Metrics == nil {
		c.Metrics = telemetry.NopMetrics()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return &AuthService{
		users:       c.Users,
		credentials: c.Credentials,
		sessions:    c.Sessions,
		rotation:    c.Rotation,
		lockout:     c.Lockout,
		accessLog:   c.AccessLog,
		codec:       c.Codec,
		tokens:      c.Tokens,
		metrics:     c.Metrics,
		log:         c.Logger,
		now:         c.Now,
	}
}

// Register creates a user and its credential. A duplicate email is accepted without
// creating anything, so the result never reveals whether the email exists.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := userdomain.NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	log := s.log.With(logging.Op("Register"), logging.ClientIP(in.IP))
	// Hash before the lookup so both outcomes cost the same.
	hashed, err := s.codec.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherr.Internal("register.lookup", err)
	}
	if existing != nil {
		return s.duplicateRegistration(ctx, email, in.IP), nil
	}
	now := s.now().UTC()
	tenantID := strings.TrimSpace(in.TenantID)
	if tenantID == "" {
		tenantID = uuid.New().String()
	}
	user := &userdomain.User{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		GivenNames:  strings.TrimSpace(in.GivenNames),
		FamilyNames: strings.TrimSpace(in.FamilyNames),
		Email:       email,
		Phone:       strings.TrimSpace(in.Phone),
		Status:      userdomain.UserStatusActive,
		CreatedAt:   now,
	}
	if err := user.Validate(); err != nil {
		return nil, autherr.Invalid("user", err.Error())
	}
	cred := &identitydomain.Credential{UserID: user.ID, PasswordHash: hashed, UpdatedAt: now}
	if err := s.users.CreateWithCredential(ctx, user, cred); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return s.duplicateRegistration(ctx, email, in.IP), nil
		}
		return nil, autherr.Internal("register.user", err)
	}
	if err := s.lockout.EnsureRow(ctx, user.ID, now); err != nil {
		return nil, err
	}
	log.Info("user registered", logging.UserID(user.ID))
	s.record(ctx, auditdomain.AccessLogEntry{
		UserID: user.ID, AttemptedEmail: email, Success: true, IP: in.IP, CreatedAt: now, Detail: auditdomain.DetailRegister,
	})
	return &RegisterResult{UserID: user.ID}, nil
}

func (s *AuthService) duplicateRegistration(ctx context.Context, email, ip string) *RegisterResult {
	s.record(ctx, auditdomain.AccessLogEntry{
		AttemptedEmail: email, Success: false, IP: ip, Detail: auditdomain.DetailRegisterDuplicate,
	})
	return &RegisterResult{}
}

// Login verifies the password, replaces any active session of the user with a new one and
// returns its tokens. Unknown user, inactive user and wrong password are all
// InvalidCredentials; a locked account is Locked.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := userdomain.NormalizeEmail(in.Email)
	if email == "" {
		s.metrics.LoginAttempt(ctx, telemetry.OutcomeInvalidInput)
		return nil, autherr.Invalid("email", "is required")
	}
	if in.Password == "" {
		s.metrics.LoginAttempt(ctx, telemetry.OutcomeInvalidInput)
		return nil, autherr.Invalid("password", "is required")
	}
	if len(in.Password) > maxPasswordLen {
		s.metrics.LoginAttempt(ctx, telemetry.OutcomeInvalidInput)
		return nil, autherr.Invalid("password", "is too long")
	}
	log := s.log.With(logging.Op("Login"), logging.ClientIP(in.IP))
	res, err := s.login(ctx, email, in, log)
	s.metrics.LoginAttempt(ctx, loginOutcome(err))
	if err != nil && !autherr.IsAuthentication(err) {
		logInternal(log, "login failed", err)
	}
	return res, err
}

func (s *AuthService) login(ctx context.Context, email string, in LoginInput, log *zap.Logger) (*AuthResult, error) {
	now := s.now().UTC()
	fail := func(userID, detail string) {
		s.record(ctx, auditdomain.AccessLogEntry{
			UserID: userID, AttemptedEmail: email, Success: false, IP: in.IP, CreatedAt: now, Detail: detail,
		})
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, autherr.Internal("login.lookup", err)
	}
	if user == nil {
		if err := s.burnVerify(ctx, in.Password); err != nil {
			return nil, err
		}
		fail("", auditdomain.DetailLoginInvalid)
		return nil, autherr.ErrInvalidCredentials
	}
	log = log.With(logging.UserID(user.ID))

	blocked, err := s.lockout.IsBlocked(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	if blocked {
		fail(user.ID, auditdomain.DetailLoginLocked)
		return nil, autherr.ErrLocked
	}

	cred, err := s.credentials.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, autherr.Internal("login.credential", err)
	}
	var ok bool
	if cred == nil {
		err = s.burnVerify(ctx, in.Password)
	} else {
		ok, err = s.codec.Verify(ctx, in.Password, cred.PasswordHash)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		st, err := s.lockout.RecordFailure(ctx, user.ID, now)
		if err != nil {
			return nil, err
		}
		fail(user.ID, auditdomain.DetailLoginInvalid)
		if st.Blocked(now) {
			s.metrics.Lockout(ctx)
			log.Warn("account locked after failed logins", zap.Int("failed_count", st.FailedCount))
			fail(user.ID, auditdomain.DetailLockoutTriggered)
		}
		return nil, autherr.ErrInvalidCredentials
	}
	if !user.Status.CanAuthenticate() {
		fail(user.ID, auditdomain.DetailLoginInvalid)
		return nil, autherr.ErrInvalidCredentials
	}

	if err := s.lockout.RecordSuccess(ctx, user.ID, now); err != nil {
		return nil, err
	}
	sess, superseded, err := s.sessions.Create(ctx, user.ID, in.IP, in.UserAgent)
	if err != nil {
		return nil, err
	}
	tok, err := s.rotation.Issue(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, id := range superseded {
		s.record(ctx, auditdomain.AccessLogEntry{
			UserID: user.ID, Success: true, IP: in.IP, CreatedAt: now,
			Detail: auditdomain.DetailSessionSuperseded + ": " + id,
		})
	}
	s.record(ctx, auditdomain.AccessLogEntry{
		UserID: user.ID, AttemptedEmail: email, Success: true, IP: in.IP, CreatedAt: now, Detail: auditdomain.DetailLogin,
	})
	log.Info("login succeeded", logging.SessionID(sess.ID), zap.Int("superseded", len(superseded)))
	return authResult(sess, tok), nil
}

// Refresh rotates the session's refresh secret and returns new tokens.
func (s *AuthService) Refresh(ctx context.Context, sessionID, refreshToken string) (*AuthResult, error) {
	log := s.log.With(logging.Op("Refresh"), logging.SessionID(sessionID))
	res, err := s.refresh(ctx, sessionID, refreshToken)
	switch {
	case err == nil:
		s.metrics.Rotation(ctx, telemetry.OutcomeSuccess)
	case autherr.IsAuthentication(err):
		s.metrics.Rotation(ctx, string(autherr.ReasonOf(err)))
	default:
		s.metrics.Rotation(ctx, telemetry.OutcomeInternalError)
		logInternal(log, "refresh failed", err)
	}
	return res, err
}

func (s *AuthService) refresh(ctx context.Context, sessionID, refreshToken string) (*AuthResult, error) {
	now := s.now().UTC()
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, autherr.ErrExpiredRefresh
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, autherr.Internal("refresh.user", err)
	}
	if user == nil || !user.Status.CanAuthenticate() {
		return nil, autherr.ErrSessionNotActive
	}
	tok, err := s.rotation.Rotate(ctx, sess, refreshToken, now)
	if err != nil {
		if autherr.IsAuthentication(err) {
			s.record(ctx, auditdomain.AccessLogEntry{
				UserID: sess.UserID, Success: false, CreatedAt: now,
				Detail: auditdomain.DetailRefreshRejected + ": " + string(autherr.ReasonOf(err)),
			})
		}
		return nil, err
	}
	s.record(ctx, auditdomain.AccessLogEntry{
		UserID: sess.UserID, Success: true, CreatedAt: now, Detail: auditdomain.DetailRefresh,
	})
	return authResult(sess, tok), nil
}

// Logout revokes the session when refreshToken matches its outstanding refresh secret. Any
// other input is a successful no-op, so the call can be repeated safely.
func (s *AuthService) Logout(ctx context.Context, sessionID, refreshToken string) error {
	if sessionID == "" || refreshToken == "" {
		return nil
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.Refresh == nil {
		return nil
	}
	ok, err := s.codec.Verify(ctx, refreshToken, sess.Refresh.Hash)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return err
	}
	s.record(ctx, auditdomain.AccessLogEntry{
		UserID: sess.UserID, Success: true, CreatedAt: s.now().UTC(), Detail: auditdomain.DetailLogout,
	})
	s.log.Info("logout", logging.Op("Logout"), logging.UserID(sess.UserID), logging.SessionID(sess.ID))
	return nil
}

// CurrentUser returns the user behind a bearer access token. The token's session must be
// live and belong to the token subject, and the user must be active.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*userdomain.User, error) {
	user, _, err := s.CurrentSession(ctx, accessToken)
	return user, err
}

// CurrentSession is CurrentUser that also returns the session. Activity is recorded on the
// session. Every rejection is SessionNotActive.
func (s *AuthService) CurrentSession(ctx context.Context, accessToken string) (*userdomain.User, *sessiondomain.Session, error) {
	sessionID, userID, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, nil, autherr.ErrSessionNotActive
	}
	now := s.now().UTC()
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !s.sessions.IsLive(sess, now) || sess.UserID != userID {
		return nil, nil, autherr.ErrSessionNotActive
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, autherr.Internal("current_user.lookup", err)
	}
	if user == nil || !user.Status.CanAuthenticate() {
		return nil, nil, autherr.ErrSessionNotActive
	}
	if err := s.sessions.Touch(ctx, sess, now); err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Unlock clears a user's lockout on behalf of actorID.
func (s *AuthService) Unlock(ctx context.Context, userID, actorID, reason string) error {
	if err := s.lockout.Unlock(ctx, userID, actorID, reason, s.now().UTC()); err != nil {
		return err
	}
	s.log.Info("account unlocked", logging.Op("Unlock"), logging.UserID(userID), zap.String("actor_id", actorID))
	return nil
}

// record writes an access log entry. A failed write is logged and counted but does not
// change the outcome of the operation.
func (s *AuthService) record(ctx context.Context, entry auditdomain.AccessLogEntry) {
	if s.accessLog == nil {
		return
	}
	if err := s.accessLog.Record(ctx, entry); err != nil {
		s.metrics.AuditFailure(ctx)
		s.log.Error("access log write failed", zap.String("detail", entry.Detail), logging.UserID(entry.UserID), zap.Error(err))
	}
}

// burnVerify runs a verification against a fixed hash so requests for unknown users take
// as long as real ones. The hash is built with a background context so a caller that is
// already cancelled cannot leave it unset.
func (s *AuthService) burnVerify(ctx context.Context, password string) error {
	s.dummyOnce.Do(func() {
		h, err := s.codec.Hash(context.Background(), "credential-lifecycle/dummy")
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash == "" {
		return nil
	}
	_, err := s.codec.Verify(ctx, password, s.dummyHash)
	return err
}

func authResult(sess *sessiondomain.Session, tok *sessionservice.Tokens) *AuthResult {
	return &AuthResult{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		SessionID:        sess.ID,
		UserID:           sess.UserID,
		ExpiresAt:        tok.AccessExpiresAt,
		RefreshExpiresAt: tok.RefreshExpiresAt,
	}
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, autherr.ErrLocked):
		return telemetry.OutcomeLocked
	case autherr.IsAuthentication(err):
		return telemetry.OutcomeInvalid
	case autherr.IsValidation(err):
		return telemetry.OutcomeInvalidInput
	default:
		return telemetry.OutcomeInternalError
	}
}

func logInternal(log *zap.Logger, msg string, err error) {
	var ie *autherr.InternalError
	if errors.As(err, &ie) {
		log.Error(msg, zap.String("cause", ie.Detail()))
		return
	}
	log.Error(msg, zap.Error(err))
}
