package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/api/http/cookie"
	"github.com/dtroode/shareride-auth/internal/api/http/middleware"
	"github.com/dtroode/shareride-auth/internal/apperrors"
	"github.com/dtroode/shareride-auth/internal/logger"
	"github.com/dtroode/shareride-auth/internal/model"
)

// AuthService defines user registration, login and session operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.User, error)
	Login(ctx context.Context, params model.LoginParams) (model.Session, error)
	Logout(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (model.Session, error)
}

type registerForm struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Gender    string `form:"gender"`
	Email     string `form:"email"`
	Password  string `form:"password"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// Auth serves the landing, login, registration, home and logout pages.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	jar            cookie.Jar
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler. jar describes the session cookie.
func NewAuth(authService AuthService, contextManager model.ContextManager, jar cookie.Jar, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		jar:            jar,
		logger:         logger,
	}
}

// Index renders the landing page.
func (h *Auth) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
}

// LoginForm renders an empty login form.
func (h *Auth) LoginForm(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, "", "")
}

// Login authenticates the submitted credentials and starts a session.
func (h *Auth) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, http.StatusBadRequest, apperrors.MsgCredentialsRequired, "")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), model.LoginParams{
		Email:        form.Email,
		Password:     form.Password,
		ClientIP:     c.ClientIP(),
		CurrentToken: h.jar.Read(c),
	})
	if err != nil {
		h.logger.Debug("Auth handler: login rejected",
			"client_ip", c.ClientIP(),
			"error", err.Error())
		view := handleError(err)
		view.apply(c, err)
		if apperrors.IsKind(err, apperrors.KindAuthentication) {
			c.Header("Refresh", "2; url=/")
		}
		h.renderLogin(c, view.status, view.message, form.Email)
		return
	}

	h.jar.Set(c, session.Token)
	c.Redirect(http.StatusSeeOther, "/home")
}

// RegisterForm renders an empty registration form.
func (h *Auth) RegisterForm(c *gin.Context) {
	h.renderRegister(c, http.StatusOK, "", false, registerForm{})
}

// Register creates the account. The visitor is not logged in afterwards.
func (h *Auth) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, http.StatusBadRequest, apperrors.MsgAllFieldsRequired, false, registerForm{})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), model.RegisterParams{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Gender:    form.Gender,
		Email:     form.Email,
		Password:  form.Password,
	})
	if err != nil {
		h.logger.Debug("Auth handler: registration rejected",
			"error", err.Error())
		view := handleError(err)
		view.apply(c, err)
		form.Password = ""
		h.renderRegister(c, view.status, view.message, false, form)
		return
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", user.ID)

	c.Header("Refresh", "2; url=/login")
	h.renderRegister(c, http.StatusOK, apperrors.MsgRegistrationSucceeded, true, registerForm{})
}

// Home renders the protected page from the session's user snapshot.
func (h *Auth) Home(c *gin.Context) {
	session, ok := h.contextManager.GetSession(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":     "Home",
		"Name":      session.FullName(),
		"Email":     session.Email,
		"CSRFToken": middleware.CSRFToken(c),
	})
}

// Logout destroys the session and always clears the cookie.
func (h *Auth) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), h.jar.Read(c)); err != nil {
		h.logger.Error("Auth handler: logout failed",
			"error", err.Error())
		_ = c.Error(err)
	}

	h.jar.Clear(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Auth) renderLogin(c *gin.Context, status int, message, email string) {
	c.HTML(status, "login.html", gin.H{
		"Title":     "Login",
		"Message":   message,
		"Email":     email,
		"CSRFToken": middleware.CSRFToken(c),
	})
}

func (h *Auth) renderRegister(c *gin.Context, status int, message string, success bool, form registerForm) {
	c.HTML(status, "register.html", gin.H{
		"Title":     "Register",
		"Message":   message,
		"Success":   success,
		"Form":      form,
		"Genders":   model.Genders,
		"CSRFToken": middleware.CSRFToken(c),
	})
}
