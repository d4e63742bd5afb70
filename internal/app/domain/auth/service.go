package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/FACorreiaa/rms-templui/internal/app/backend"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/observability/metrics"
)

// API is the slice of the REST backend the sign-in flow needs.
type API interface {
	Login(ctx context.Context, username, password string) (*backend.LoginResponse, error)
	Logout(ctx context.Context) error
}

type Service struct {
	machine *Machine
	api     API
	sem     *semaphore.Weighted
	logger  *zap.Logger
}

func NewService(machine *Machine, api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		machine: machine,
		api:     api,
		sem:     semaphore.NewWeighted(1),
		logger:  logger,
	}
}

func (s *Service) Machine() *Machine { return s.machine }

// SignIn authenticates against the backend and logs the machine in. Failures leave the
// stored session as it was, except a 401 from the token endpoint: like any 401 it goes
// through the unauthorized hook, which expires a session that is still signed in.
// A second call while one is in flight fails with ErrBusy.
func (s *Service) SignIn(ctx context.Context, username, password string, rememberMe bool) (models.Role, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "SignIn", trace.WithAttributes(
		attribute.String("username", username),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "SignIn"), zap.String("username", username))

	if !s.sem.TryAcquire(1) {
		span.SetStatus(codes.Error, "busy")
		return models.RoleNone, models.ErrBusy
	}
	defer s.sem.Release(1)

	fields := map[string]string{}
	if strings.TrimSpace(username) == "" {
		fields["username"] = "Username is required"
	}
	if password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		s.record(ctx, "signin", "invalid")
		return models.RoleNone, &models.ValidationError{Fields: fields}
	}

	resp, err := s.api.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		l.Warn("Sign in rejected", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		s.record(ctx, "signin", outcome(err))
		return models.RoleNone, err
	}

	role := models.Role(resp.Role)
	if !role.Valid() {
		role = roleFromToken(resp.Token)
	}
	if !role.Valid() {
		l.Warn("Login answer carried no usable role", zap.String("role", resp.Role))
		err := &models.AuthenticationError{Message: "this account has no role assigned"}
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown role")
		s.record(ctx, "signin", "unknown_role")
		return models.RoleNone, err
	}

	if err := s.machine.Login(ctx, models.Session{
		Token:      resp.Token,
		Role:       role,
		UserInfo:   resp.User,
		RememberMe: rememberMe,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session rejected")
		return models.RoleNone, err
	}

	span.SetAttributes(attribute.String("role", role.String()))
	span.SetStatus(codes.Ok, "signed in")
	s.record(ctx, "signin", "ok")
	l.Info("Signed in", zap.String("role", role.String()))
	return role, nil
}

// SignOut tells the backend (best effort) and then logs the machine out.
func (s *Service) SignOut(ctx context.Context) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "SignOut")
	defer span.End()

	if s.machine.CurrentState().IsAuthenticated {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("Backend logout failed", zap.Error(err))
			span.RecordError(err)
		}
	}
	s.machine.Logout(ctx)
	s.record(ctx, "signout", "ok")
}

func (s *Service) record(ctx context.Context, op, result string) {
	metrics.Get().AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", result),
	))
}

func outcome(err error) string {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return "rejected"
	case errors.Is(err, models.ErrNetwork):
		return "network"
	default:
		return "error"
	}
}

// UnauthorizedInterceptor turns every backend 401 into a session expiry.
type UnauthorizedInterceptor struct {
	machine *Machine
	logger  *zap.Logger
}

func NewUnauthorizedInterceptor(machine *Machine, logger *zap.Logger) *UnauthorizedInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnauthorizedInterceptor{machine: machine, logger: logger}
}

// Hook adapts the interceptor to backend.UnauthorizedHook.
func (i *UnauthorizedInterceptor) Hook() backend.UnauthorizedHook {
	return i.OnUnauthorized
}

func (i *UnauthorizedInterceptor) OnUnauthorized(ctx context.Context, endpoint string) {
	if i.machine.ExpireSession(ctx) {
		i.logger.Warn("Session expired by backend", zap.String("endpoint", endpoint))
	}
}
