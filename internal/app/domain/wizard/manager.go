package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/FACorreiaa/rms-templui/internal/app/backend"
	"github.com/FACorreiaa/rms-templui/internal/app/domain/navigation"
	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/rms-templui/internal/pkg/storage"
)

// Storage location of the in-progress form.
const (
	Namespace = "wizard"
	SlotKey   = "registration_form"
)

var (
	ErrNotTerminalStep = errors.New("registration can only be submitted from the last step")
	ErrStale           = errors.New("registration form was left before the request finished")
)

// Registrar is the slice of the REST backend the wizard needs.
type Registrar interface {
	LandlordPhoneExists(ctx context.Context, phone string) (bool, error)
	CreateUser(ctx context.Context, user backend.NewUser) (backend.UserID, error)
	AssignRole(ctx context.Context, id backend.UserID, role models.Role) error
	CreateLandlordProfile(ctx context.Context, p backend.LandlordProfile) error
	CreateTenantProfile(ctx context.Context, p backend.TenantProfile) error
}

// Authenticator signs the new account in once it exists.
type Authenticator interface {
	SignIn(ctx context.Context, username, password string, rememberMe bool) (models.Role, error)
}

type Stage int

const (
	StageCreateUser Stage = iota + 1
	StageAssignRole
	StageCreateProfile
)

func (s Stage) String() string {
	switch s {
	case StageCreateUser:
		return "create_user"
	case StageAssignRole:
		return "assign_role"
	case StageCreateProfile:
		return "create_profile"
	}
	return "unknown"
}

// SubmitError reports which backend call of the submit sequence failed.
type SubmitError struct {
	Stage Stage
	Err   error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("registration failed at %s: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

type SubmitResult struct {
	Role       models.Role
	LoggedIn   bool
	RedirectTo string
	Message    string
}

type ExitOutcome int

const (
	ExitNow ExitOutcome = iota
	ExitNeedsConfirmation
)

// State is a copy of the wizard for rendering.
type State struct {
	Fields      Fields
	CurrentStep Step
	FieldErrors map[string]string
	Dirty       bool
	Confirming  bool
	Pending     bool
}

type slot struct {
	Fields      Fields `json:"fields"`
	CurrentStep Step   `json:"currentStep"`
	Dirty       bool   `json:"dirty,omitempty"`
}

type Manager struct {
	mu         sync.Mutex
	state      State
	mounted    bool
	generation uint64

	kv     storage.KV
	api    Registrar
	signer Authenticator
	sem    *semaphore.Weighted
	logger *zap.Logger
}

func NewManager(kv storage.KV, api Registrar, signer Authenticator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		state:  State{FieldErrors: map[string]string{}},
		kv:     kv,
		api:    api,
		signer: signer,
		sem:    semaphore.NewWeighted(1),
		logger: logger,
	}
}

// Mount hydrates the wizard from its slot. An unreadable slot starts a fresh form.
func (m *Manager) Mount(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.mounted = true
	m.state = State{FieldErrors: map[string]string{}}

	raw, ok, err := m.kv.Get(ctx, SlotKey)
	if err != nil {
		m.storageFailed(ctx, "mount", err)
		return
	}
	if !ok {
		return
	}
	var saved slot
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		m.logger.Warn("Discarding unreadable registration slot", zap.Error(err))
		return
	}
	m.state.Fields = saved.Fields
	m.state.CurrentStep = clampStep(saved.CurrentStep)
	m.state.Dirty = saved.Dirty || !saved.Fields.IsEmpty()
}

// Unmount marks the wizard as left; results of requests still in flight are dropped.
func (m *Manager) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.mounted = false
	m.state.Confirming = false
}

func (m *Manager) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.FieldErrors = maps.Clone(m.state.FieldErrors)
	return s
}

// SetField updates one field, clears its error and persists the form.
func (m *Manager) SetField(ctx context.Context, name, value string) error {
	if !m.sem.TryAcquire(1) {
		return models.ErrBusy
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.state.Fields.Set(name, value); err != nil {
		return err
	}
	delete(m.state.FieldErrors, name)
	m.state.Dirty = m.state.Dirty || !m.state.Fields.IsEmpty()
	m.persistLocked(ctx)
	return nil
}

// Next validates the current step and advances. Leaving personal information as a
// landlord first asks the backend whether the phone number is taken; if that check
// cannot be made the user may continue.
func (m *Manager) Next(ctx context.Context) error {
	if !m.sem.TryAcquire(1) {
		return models.ErrBusy
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	step := m.state.CurrentStep
	if errs := ValidateStep(step, m.state.Fields); len(errs) > 0 {
		m.state.FieldErrors = errs
		m.mu.Unlock()
		return &models.ValidationError{Fields: errs}
	}
	if step == lastStep {
		m.mu.Unlock()
		return nil
	}
	fields := m.state.Fields
	gen := m.generation
	m.setPendingLocked(true)
	m.mu.Unlock()

	taken := false
	if step == StepPersonalInformation && fields.IsLandlord() {
		taken = m.phoneTaken(ctx, fields.PhoneNumber)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPendingLocked(false)
	if gen != m.generation {
		return ErrStale
	}
	if taken {
		m.state.FieldErrors = map[string]string{FieldPhoneNumber: msgPhoneTaken}
		return &models.UniquenessConflictError{Field: FieldPhoneNumber, Message: msgPhoneTaken}
	}
	m.state.CurrentStep = step + 1
	m.state.FieldErrors = map[string]string{}
	m.persistLocked(ctx)
	m.transitioned(ctx, "next", m.state.CurrentStep)
	return nil
}

// Back moves one step back without validating.
func (m *Manager) Back(ctx context.Context) error {
	if !m.sem.TryAcquire(1) {
		return models.ErrBusy
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.CurrentStep > StepAccountDetails {
		m.state.CurrentStep--
	}
	m.persistLocked(ctx)
	m.transitioned(ctx, "back", m.state.CurrentStep)
	return nil
}

// Submit creates the account: user, role, profile, then sign-in, strictly in that order.
// A failure never touches the session; only a failed sign-in after a created account is
// reported as success with LoggedIn false.
func (m *Manager) Submit(ctx context.Context) (SubmitResult, error) {
	if !m.sem.TryAcquire(1) {
		return SubmitResult{}, models.ErrBusy
	}
	defer m.sem.Release(1)

	ctx, span := otel.Tracer("WizardManager").Start(ctx, "Submit")
	defer span.End()

	m.mu.Lock()
	if m.state.CurrentStep != lastStep {
		m.mu.Unlock()
		return SubmitResult{}, ErrNotTerminalStep
	}
	for _, step := range Steps() {
		if errs := ValidateStep(step, m.state.Fields); len(errs) > 0 {
			m.state.FieldErrors = errs
			m.state.CurrentStep = step
			m.persistLocked(ctx)
			m.mu.Unlock()
			m.submitted(ctx, span, "invalid", nil)
			return SubmitResult{}, &models.ValidationError{Fields: errs}
		}
	}
	fields := m.state.Fields
	gen := m.generation
	m.setPendingLocked(true)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.setPendingLocked(false)
		m.mu.Unlock()
	}()

	role := models.Role(fields.AccountType)
	span.SetAttributes(attribute.String("account_type", role.String()))
	l := m.logger.With(zap.String("method", "Submit"), zap.String("username", fields.Username), zap.String("account_type", role.String()))

	if fields.IsLandlord() && m.phoneTaken(ctx, fields.PhoneNumber) {
		conflict := &models.UniquenessConflictError{Field: FieldPhoneNumber, Message: msgPhoneTaken}
		m.applyConflict(ctx, gen, conflict)
		m.submitted(ctx, span, "conflict", conflict)
		return SubmitResult{}, conflict
	}

	id, err := m.api.CreateUser(ctx, backend.NewUser{
		Username:  fields.Username,
		Email:     fields.Email,
		Password:  fields.Password,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
	})
	if err != nil {
		return SubmitResult{}, m.failed(ctx, span, l, gen, StageCreateUser, fields.IsLandlord(), err)
	}
	l = l.With(zap.String("user_id", string(id)))

	if err := m.api.AssignRole(ctx, id, role); err != nil {
		return SubmitResult{}, m.failed(ctx, span, l, gen, StageAssignRole, fields.IsLandlord(), err)
	}

	if fields.IsLandlord() {
		err = m.api.CreateLandlordProfile(ctx, backend.LandlordProfile{
			User:            id,
			PhoneNumber:     fields.PhoneNumber,
			PhysicalAddress: fields.PhysicalAddress,
			IDNumber:        fields.IDNumber,
		})
	} else {
		err = m.api.CreateTenantProfile(ctx, backend.TenantProfile{
			User:                  id,
			PhoneNumber:           fields.PhoneNumber,
			PhysicalAddress:       fields.PhysicalAddress,
			IDNumberOrPassport:    fields.IDNumber,
			Occupation:            fields.Occupation,
			Workplace:             fields.Workplace,
			EmergencyContactName:  fields.EmergencyContactName,
			EmergencyContactPhone: fields.EmergencyContactPhone,
		})
	}
	if err != nil {
		return SubmitResult{}, m.failed(ctx, span, l, gen, StageCreateProfile, fields.IsLandlord(), err)
	}

	result := SubmitResult{Role: role, RedirectTo: navigation.LoginPath}
	if signedIn, err := m.signer.SignIn(ctx, fields.Username, fields.Password, false); err != nil {
		l.Warn("Auto sign-in after registration failed", zap.Error(err))
		result.Message = fmt.Sprintf("Registration successful as %s. Please sign in.", role)
	} else {
		result.LoggedIn = true
		result.Role = signedIn
		result.RedirectTo = navigation.ResolveLandingPath(signedIn)
		result.Message = fmt.Sprintf("Registration successful as %s and you are now logged in!", role)
	}

	m.mu.Lock()
	if err := m.kv.Delete(ctx, SlotKey); err != nil {
		m.storageFailed(ctx, "submit", err)
	}
	if gen == m.generation {
		m.state = State{FieldErrors: map[string]string{}}
	}
	m.mu.Unlock()

	l.Info("Registration completed", zap.Bool("logged_in", result.LoggedIn))
	m.submitted(ctx, span, "ok", nil)
	return result, nil
}

// failed maps a backend failure of stage onto the form. Conflicts on a form field send
// the user back to the step that collects it.
func (m *Manager) failed(ctx context.Context, span trace.Span, l *zap.Logger, gen uint64, stage Stage, landlord bool, err error) error {
	l.Warn("Registration step failed", zap.Stringer("stage", stage), zap.Error(err))

	var conflict *models.UniquenessConflictError
	if errors.As(err, &conflict) && stage != StageAssignRole {
		if conflict.Field == FieldPhoneNumber {
			conflict = &models.UniquenessConflictError{Field: FieldPhoneNumber, Message: phoneTakenMessage(landlord)}
		}
		m.applyConflict(ctx, gen, conflict)
		m.submitted(ctx, span, "conflict", conflict)
		return conflict
	}

	serr := &SubmitError{Stage: stage, Err: err}
	m.submitted(ctx, span, stage.String(), serr)
	return serr
}

func (m *Manager) applyConflict(ctx context.Context, gen uint64, conflict *models.UniquenessConflictError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	m.state.FieldErrors = map[string]string{conflict.Field: conflict.Message}
	m.state.CurrentStep = stepOf(conflict.Field)
	m.persistLocked(ctx)
}

// RequestExit leaves immediately when nothing was typed; otherwise it asks for confirmation.
func (m *Manager) RequestExit(ctx context.Context) ExitOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Dirty {
		return ExitNow
	}
	m.state.Confirming = true
	return ExitNeedsConfirmation
}

// ConfirmExit discards the form and returns where to go.
func (m *Manager) ConfirmExit(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Delete(ctx, SlotKey); err != nil {
		m.storageFailed(ctx, "exit", err)
	}
	m.generation++
	m.state = State{FieldErrors: map[string]string{}}
	return navigation.PublicLandingPath
}

func (m *Manager) CancelExit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Confirming = false
}

func (m *Manager) phoneTaken(ctx context.Context, phone string) bool {
	exists, err := m.api.LandlordPhoneExists(ctx, phone)
	if err != nil {
		m.logger.Warn("Phone uniqueness check failed, continuing", zap.Error(err))
		return false
	}
	return exists
}

func (m *Manager) setPendingLocked(pending bool) {
	m.state.Pending = pending
}

func (m *Manager) persistLocked(ctx context.Context) {
	b, err := json.Marshal(slot{Fields: m.state.Fields, CurrentStep: m.state.CurrentStep, Dirty: m.state.Dirty})
	if err != nil {
		m.storageFailed(ctx, "encode", err)
		return
	}
	if err := m.kv.Set(ctx, SlotKey, string(b)); err != nil {
		m.storageFailed(ctx, "persist", err)
	}
}

func (m *Manager) storageFailed(ctx context.Context, op string, err error) {
	m.logger.Error("Registration storage failed", zap.String("op", op), zap.Error(err))
	metrics.Get().StorageErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "wizard_"+op)))
}

func (m *Manager) transitioned(ctx context.Context, direction string, to Step) {
	metrics.Get().WizardTransitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.Int("step", int(to)),
	))
}

func (m *Manager) submitted(ctx context.Context, span trace.Span, outcome string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetStatus(codes.Ok, outcome)
	}
	metrics.Get().WizardSubmissionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
