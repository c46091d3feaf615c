package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dtroode/shareride-auth/internal/apperrors"
	"github.com/dtroode/shareride-auth/internal/logger"
	"github.com/dtroode/shareride-auth/internal/model"
	"github.com/dtroode/shareride-auth/internal/password"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

type registerInput struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
	Gender    string `validate:"required,gender"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6,bcryptlen"`
}

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Auth implements registration, login and session lifecycle.
type Auth struct {
	userStore    model.UserStore
	sessionStore model.SessionStore
	hasher       model.PasswordHasher
	throttle     *LoginThrottle
	validate     *validator.Validate
	queryTimeout time.Duration
	logger       *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuth creates the auth service. A nil throttle disables lockouts.
func NewAuth(
	userStore model.UserStore,
	sessionStore model.SessionStore,
	hasher model.PasswordHasher,
	throttle *LoginThrottle,
	queryTimeout time.Duration,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		sessionStore: sessionStore,
		hasher:       hasher,
		throttle:     throttle,
		validate:     newValidator(),
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		value := model.Gender(fl.Field().String())
		for _, g := range model.Genders {
			if g == value {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// blankAsEmpty keeps a password verbatim unless it is whitespace only.
func blankAsEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func (a *Auth) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.queryTimeout)
}

// Register validates the form, checks the email is free, hashes the password
// and inserts the user. It never creates a session.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	in := registerInput{
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		Gender:    strings.ToLower(strings.TrimSpace(params.Gender)),
		Email:     NormalizeEmail(params.Email),
		Password:  blankAsEmpty(params.Password),
	}

	a.logger.Debug("Auth service: starting user registration",
		"email", in.Email)

	if err := a.validate.Struct(in); err != nil {
		a.logger.Info("Auth service: registration input rejected",
			"email", in.Email,
			"error", err.Error())
		return model.User{}, registerValidationError(err)
	}

	lookupCtx, cancel := a.withTimeout(ctx)
	_, err := a.userStore.GetByEmail(lookupCtx, in.Email)
	cancel()
	switch {
	case err == nil, errors.Is(err, model.ErrAmbiguousEmail):
		a.logger.Info("Auth service: user already exists",
			"email", in.Email)
		return model.User{}, apperrors.NewErrEmailIsTaken()
	case !errors.Is(err, model.ErrNotFound):
		a.logger.Error("Auth service: failed to get user by email",
			"email", in.Email,
			"error", err.Error())
		return model.User{}, apperrors.NewErrInternalServerError(fmt.Errorf("failed to get user by email: %w", err))
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", in.Email,
			"error", err.Error())
		return model.User{}, apperrors.NewErrInternalServerError(err)
	}

	user := model.User{
		ID:           uuid.New(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Gender:       model.Gender(in.Gender),
		Email:        in.Email,
		PasswordHash: hash,
	}

	createCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	saved, err := a.userStore.Create(createCtx, user)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			a.logger.Info("Auth service: email taken by concurrent registration",
				"email", in.Email)
			return model.User{}, apperrors.NewErrEmailIsTaken()
		}
		a.logger.Error("Auth service: failed to create user",
			"email", in.Email,
			"error", err.Error())
		return model.User{}, apperrors.NewErrInternalServerError(fmt.Errorf("failed to create user: %w", err))
	}

	a.logger.Info("Auth service: user registered successfully",
		"email", saved.Email,
		"user_id", saved.ID)

	return saved, nil
}

// Login authenticates the user and opens a new session. Unknown email and
// wrong password fail with the same error.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (model.Session, error) {
	in := loginInput{
		Email:    NormalizeEmail(params.Email),
		Password: blankAsEmpty(params.Password),
	}

	a.logger.Debug("Auth service: processing login",
		"email", in.Email,
		"client_ip", params.ClientIP)

	if err := a.validate.Struct(in); err != nil {
		return model.Session{}, apperrors.NewErrValidation(apperrors.MsgCredentialsRequired)
	}

	if a.throttle != nil {
		if retryAfter := a.throttle.Check(params.ClientIP); retryAfter > 0 {
			a.logger.Warn("Auth service: login throttled",
				"client_ip", params.ClientIP,
				"retry_after", retryAfter)
			return model.Session{}, apperrors.NewErrTooManyAttempts(retryAfter)
		}
	}

	lookupCtx, cancel := a.withTimeout(ctx)
	user, err := a.userStore.GetByEmail(lookupCtx, in.Email)
	cancel()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrAmbiguousEmail) {
			a.compareDummy(in.Password)
			return model.Session{}, a.loginFailed(params.ClientIP, in.Email, err)
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", in.Email,
			"error", err.Error())
		return model.Session{}, apperrors.NewErrInternalServerError(fmt.Errorf("failed to get user by email: %w", err))
	}

	if err := a.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return model.Session{}, a.loginFailed(params.ClientIP, in.Email, err)
		}
		a.logger.Error("Auth service: failed to verify password",
			"email", in.Email,
			"error", err.Error())
		return model.Session{}, apperrors.NewErrInternalServerError(err)
	}

	if a.throttle != nil {
		a.throttle.Reset(params.ClientIP)
	}

	sessionCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	if params.CurrentToken != "" {
		if err := a.sessionStore.Destroy(sessionCtx, params.CurrentToken); err != nil {
			a.logger.Warn("Auth service: failed to destroy previous session",
				"user_id", user.ID,
				"error", err.Error())
		}
	}

	session, err := a.sessionStore.Create(sessionCtx, model.SessionData{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
	if err != nil {
		a.logger.Error("Auth service: failed to create session",
			"user_id", user.ID,
			"error", err.Error())
		return model.Session{}, apperrors.NewErrInternalServerError(fmt.Errorf("failed to create session: %w", err))
	}

	a.logger.Info("Auth service: user logged in successfully",
		"user_id", user.ID)

	return session, nil
}

// Logout destroys the session. An empty or unknown token is not an error.
func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.sessionStore.Destroy(ctx, token); err != nil {
		a.logger.Error("Auth service: failed to destroy session",
			"error", err.Error())
		return apperrors.NewErrInternalServerError(err)
	}

	a.logger.Debug("Auth service: session destroyed")
	return nil
}

// Session resolves token to a live session. Unknown, empty and expired tokens
// yield model.ErrSessionNotFound.
func (a *Auth) Session(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, model.ErrSessionNotFound
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	session, err := a.sessionStore.Get(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.Session{}, model.ErrSessionNotFound
		}
		a.logger.Error("Auth service: failed to load session",
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	return session, nil
}

func (a *Auth) loginFailed(clientIP, email string, cause error) error {
	remaining := -1
	if a.throttle != nil {
		remaining = a.throttle.Failure(clientIP)
	}
	a.logger.Info("Auth service: login failed",
		"email", email,
		"client_ip", clientIP,
		"remaining_attempts", remaining,
		"reason", cause.Error())
	return apperrors.NewErrInvalidCredentials()
}

// compareDummy spends the same bcrypt work as a real comparison so unknown
// emails cannot be told apart by response time.
func (a *Auth) compareDummy(pw string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(uuid.NewString())
		if err != nil {
			a.logger.Warn("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		_ = a.hasher.Compare(a.dummyHash, pw)
	}
}

// registerValidationError picks the message of the most basic failed rule.
func registerValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewErrInternalServerError(err)
	}

	best, bestRank := "", len(ruleRank)
	for _, fe := range verrs {
		rank, msg := classifyRule(fe)
		if rank < bestRank {
			best, bestRank = msg, rank
		}
	}
	if best == "" {
		best = apperrors.MsgAllFieldsRequired
	}
	return apperrors.NewErrValidation(best)
}

var ruleRank = []string{
	apperrors.MsgAllFieldsRequired,
	apperrors.MsgInvalidEmail,
	apperrors.MsgPasswordTooShort,
	apperrors.MsgPasswordTooLong,
	apperrors.MsgInvalidGender,
	apperrors.MsgNameTooLong,
}

func classifyRule(fe validator.FieldError) (int, string) {
	var msg string
	switch {
	case fe.Tag() == "required":
		msg = apperrors.MsgAllFieldsRequired
	case fe.Tag() == "email":
		msg = apperrors.MsgInvalidEmail
	case fe.Field() == "Password" && fe.Tag() == "min":
		msg = apperrors.MsgPasswordTooShort
	case fe.Tag() == "bcryptlen":
		msg = apperrors.MsgPasswordTooLong
	case fe.Tag() == "gender":
		msg = apperrors.MsgInvalidGender
	case fe.Tag() == "max":
		msg = apperrors.MsgNameTooLong
	default:
		return len(ruleRank), ""
	}
	for i, m := range ruleRank {
		if m == msg {
			return i, msg
		}
	}
	return len(ruleRank), ""
}
