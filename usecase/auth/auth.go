// Package auth runs the login flow: executives are admitted at once, everyone else passes through
// profile setup, which they may complete or skip.
package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/repository"
)

// MaxPINLength bounds the PIN input of the login form.
const MaxPINLength = 6

// Form-level validation messages.
const (
	MsgEmployeeID = "Please enter your employee ID"
	MsgPIN        = "Please enter your PIN"
	MsgPINLength  = "PIN must be at most 6 characters"
	MsgRole       = "Please select your role"
	MsgDepartment = "Please select your department"
	MsgManager    = "Please enter your manager's name"
	MsgFullName   = "Please enter your full name"
	MsgEmail      = "Please enter your email address"
	MsgEmailValid = "Please enter a valid email address"
)

// ProfileWriter persists the directory entry produced by profile setup.
type ProfileWriter interface {
	SaveProfile(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
}

type LoginInput struct {
	EmployeeID string
	PIN        string
	Role       string
	Department string
	Manager    string
	// Replaces names a session held by the browser before this login. It is dropped once the
	// new record is written.
	Replaces string
}

type ProfileInput struct {
	FullName string
	Email    string
	Phone    string
}

// Result is the outcome of a state transition: the record written and where to send the visitor.
type Result struct {
	Session *domain.Session
	Next    string
}

type UseCase struct {
	sessions repository.SessionRepository
	profiles ProfileWriter
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func New(sessions repository.SessionRepository, profiles ProfileWriter, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Login validates the form and writes either an admitted session (executives) or a pending
// record. Validation failures write nothing.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*Result, error) {
	form, err := validateLogin(in)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	session := &domain.Session{
		ID:         uc.newID(),
		Role:       form.role,
		EmployeeID: form.employeeID,
	}

	next := access.ProfileSetupPath
	if form.role.IsExecutive() {
		session.Admit(now)
		next = access.LandingPath(form.role)
	} else {
		session.State = domain.StatePending
		session.Department = form.department
		session.Manager = form.manager
		session.Touch(now)
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to save session", err)
	}
	if in.Replaces != "" && in.Replaces != session.ID {
		if err := uc.sessions.Delete(ctx, in.Replaces); err != nil {
			uc.logger.Warn("failed to drop replaced session", zap.Error(err))
		}
	}

	uc.logger.Info("login accepted",
		zap.String("employee_id", session.EmployeeID),
		zap.String("role", session.Role.String()),
		zap.String("state", string(session.State)))

	return &Result{Session: session, Next: next}, nil
}

// Pending returns the record awaiting profile setup.
func (uc *UseCase) Pending(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsPending() {
		return nil, domain.ErrNotPending
	}
	return session, nil
}

// CompleteProfile stores the directory entry and admits the pending visitor.
func (uc *UseCase) CompleteProfile(ctx context.Context, sessionID string, in ProfileInput) (*Result, error) {
	session, err := uc.Pending(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	profile, err := validateProfile(in)
	if err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		ID:              session.EmployeeID,
		Role:            session.Role,
		Department:      session.Department,
		Manager:         session.Manager,
		FullName:        profile.FullName,
		Email:           profile.Email,
		Phone:           profile.Phone,
		ProfileComplete: true,
	}
	if uc.profiles != nil {
		if _, err := uc.profiles.SaveProfile(ctx, employee); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "failed to save profile", err)
		}
	}

	session.Admit(uc.now().UTC())
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to save session", err)
	}

	uc.logger.Info("profile completed",
		zap.String("employee_id", session.EmployeeID),
		zap.String("role", session.Role.String()))
	return &Result{Session: session, Next: access.LandingPath(session.Role)}, nil
}

// SkipProfile admits the pending visitor with a restricted session.
func (uc *UseCase) SkipProfile(ctx context.Context, sessionID string) (*Result, error) {
	session, err := uc.Pending(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.AdmitRestricted(uc.now().UTC())
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to save session", err)
	}

	uc.logger.Info("profile setup skipped",
		zap.String("employee_id", session.EmployeeID),
		zap.String("role", session.Role.String()))
	return &Result{Session: session, Next: access.RestrictedLandingPath(session.Role)}, nil
}

// Logout removes the record. Unknown or empty ids are not an error.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return domain.WrapError(domain.ErrCodeInternal, "failed to delete session", err)
	}
	return nil
}

// Resolve returns the admitted session behind an id. Missing, partial and pending records all
// resolve to UNAUTHORIZED.
func (uc *UseCase) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Valid() {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to load session", err)
	}
	return session, nil
}

type loginForm struct {
	employeeID string
	role       domain.Role
	department string
	manager    string
}

func validateLogin(in LoginInput) (loginForm, error) {
	var form loginForm

	form.employeeID = cases.Upper(language.Und).String(strings.TrimSpace(in.EmployeeID))
	if form.employeeID == "" {
		return form, domain.Validation(MsgEmployeeID)
	}
	pin := strings.TrimSpace(in.PIN)
	if pin == "" {
		return form, domain.Validation(MsgPIN)
	}
	if utf8.RuneCountInString(pin) > MaxPINLength {
		return form, domain.Validation(MsgPINLength)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return form, domain.Validation(MsgRole)
	}
	form.role = role
	if role.IsExecutive() {
		return form, nil
	}

	department, ok := domain.CanonicalDepartment(in.Department)
	if !ok {
		return form, domain.Validation(MsgDepartment)
	}
	form.department = department
	form.manager = strings.Join(strings.Fields(in.Manager), " ")
	if form.manager == "" {
		return form, domain.Validation(MsgManager)
	}
	return form, nil
}

func validateProfile(in ProfileInput) (ProfileInput, error) {
	out := ProfileInput{
		FullName: strings.Join(strings.Fields(in.FullName), " "),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if out.FullName == "" {
		return out, domain.Validation(MsgFullName)
	}
	if out.Email == "" {
		return out, domain.Validation(MsgEmail)
	}
	if addr, err := mail.ParseAddress(out.Email); err != nil || addr.Address != out.Email {
		return out, domain.Validation(MsgEmailValid)
	}
	out.FullName = cases.Title(language.English, cases.NoLower).String(out.FullName)
	return out, nil
}
