package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"github.com/haocai-admin/haocai-admin/internal/jobs"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// ErrInvalidCredentials indicates a failed username/password check. The
// message deliberately does not reveal which of the two was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid username or password")

// TaskEnqueuer matches the asynq client surface the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	rbac     *rbac.Service
	tokens   *TokenManager
	enqueuer TaskEnqueuer
	logger   *slog.Logger
}

// NewService constructs a new Service. enqueuer may be nil; login-log
// recording is best-effort.
func NewService(repo Repository, rbacService *rbac.Service, tokens *TokenManager, enqueuer TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, rbac: rbacService, tokens: tokens, enqueuer: enqueuer, logger: logger}
}

// Login verifies credentials and issues a bearer token. A failed login
// leaves all session state untouched.
func (s *Service) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != UserStatusNormal {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(ctx, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	roles, err := s.rbac.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	s.recordLogin(user.ID, user.Username, ip, userAgent)
	return &LoginResult{Token: token, User: user}, nil
}

// CurrentUser loads the user and roles for an authenticated principal and
// slides the token record when it is close to expiry. It doubles as the
// keep-alive call the console uses to keep a session fresh.
func (s *Service) CurrentUser(ctx context.Context, userID int64, tokenID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.rbac.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	if tokenID != "" {
		if _, err := s.tokens.ExtendIfNeeded(ctx, tokenID); err != nil && !errors.Is(err, ErrTokenInvalid) {
			if s.logger != nil {
				s.logger.Warn("extend token", slog.Any("error", err))
			}
		}
	}
	return user, nil
}

// Logout revokes the token. Revocation failures are logged, not surfaced;
// the caller clears its local state regardless.
func (s *Service) Logout(ctx context.Context, tokenID string) {
	if tokenID == "" {
		return
	}
	if err := s.tokens.Revoke(ctx, tokenID); err != nil && s.logger != nil {
		s.logger.Warn("revoke token", slog.Any("error", err))
	}
}

func (s *Service) recordLogin(userID int64, username, ip, userAgent string) {
	if s.enqueuer == nil {
		return
	}
	task, err := jobs.NewLoginLogTask(jobs.LoginLogPayload{
		UserID:    userID,
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		At:        time.Now(),
	})
	if err == nil {
		_, err = s.enqueuer.Enqueue(task)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("enqueue login log", slog.Any("error", err))
	}
}
