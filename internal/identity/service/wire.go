package service

import (
	"database/sql"

	"go.uber.org/zap"

	"credential-lifecycle/internal/audit"
	auditrepo "credential-lifecycle/internal/audit/repository"
	identityrepo "credential-lifecycle/internal/identity/repository"
	lockoutrepo "credential-lifecycle/internal/lockout/repository"
	lockoutservice "credential-lifecycle/internal/lockout/service"
	"credential-lifecycle/internal/security"
	sessionrepo "credential-lifecycle/internal/session/repository"
	sessionservice "credential-lifecycle/internal/session/service"
	"credential-lifecycle/internal/telemetry"
	userrepo "credential-lifecycle/internal/user/repository"
)

// Repositories is the persistence the authenticator is built on.
type Repositories struct {
	Users       UserRepo
	Credentials CredentialRepo
	Sessions    sessionrepo.Repository
	Lockouts    lockoutrepo.Repository
	AccessLog   auditrepo.Repository
}

// PostgresRepositories returns repositories backed by conn.
func PostgresRepositories(conn *sql.DB) Repositories {
	return Repositories{
		Users:       userrepo.NewPostgresRepository(conn),
		Credentials: identityrepo.NewPostgresRepository(conn),
		Sessions:    sessionrepo.NewPostgresRepository(conn),
		Lockouts:    lockoutrepo.NewPostgresRepository(conn),
		AccessLog:   auditrepo.NewPostgresRepository(conn),
	}
}

// MemoryRepositories returns empty in-memory repositories for tests and database-less runs.
func MemoryRepositories() Repositories {
	creds := identityrepo.NewMemoryRepository()
	return Repositories{
		Users:       userrepo.NewMemoryRepository().WithCredentials(creds),
		Credentials: creds,
		Sessions:    sessionrepo.NewMemoryRepository(),
		Lockouts:    lockoutrepo.NewMemoryRepository(),
		AccessLog:   auditrepo.NewMemoryRepository(),
	}
}

// Build wires the codec, session store, rotation engine, lockout guard and access log sink
// from settings and returns the authenticator. emitter, metrics and log may be nil.
func Build(repos Repositories, tokens *security.TokenProvider, settings Settings, emitter telemetry.EventEmitter, metrics *telemetry.Metrics, log *zap.Logger) *AuthService {
	settings = settings.withDefaults()
	codec := security.NewCodec(settings.BcryptCost, settings.HashConcurrency)
	return NewAuthService(Components{
		Users:       repos.Users,
		Credentials: repos.Credentials,
		Sessions:    sessionservice.NewStore(repos.Sessions, settings.SessionLifetime, settings.Now),
		Rotation: sessionservice.NewRotationEngine(repos.Sessions, codec, tokens, sessionservice.RotationConfig{
			AccessTTL:   settings.AccessTTL,
			RefreshTTL:  settings.RefreshTTL,
			GraceWindow: settings.RefreshGraceWindow,
		}, settings.Now),
		Lockout:   lockoutservice.NewGuard(repos.Lockouts, settings.LockoutThreshold, settings.LockoutWindow),
		AccessLog: audit.NewSink(repos.AccessLog, emitter, log),
		Codec:     codec,
		Tokens:    tokens,
		Metrics:   metrics,
		Logger:    log,
		Now:       settings.Now,
	})
}
