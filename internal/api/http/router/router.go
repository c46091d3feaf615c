package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/api/http/cookie"
	"github.com/dtroode/shareride-auth/internal/api/http/handler"
	"github.com/dtroode/shareride-auth/internal/api/http/middleware"
	"github.com/dtroode/shareride-auth/internal/api/http/templates"
	"github.com/dtroode/shareride-auth/internal/logger"
	"github.com/dtroode/shareride-auth/internal/model"
)

// CSRFCookieName is the cookie carrying the form token.
const CSRFCookieName = "sr_csrf"

// Cookies configures the cookies the router issues.
type Cookies struct {
	Session cookie.Jar
	CSRF    cookie.Jar
}

// Router wires middleware and handlers into a gin engine.
type Router struct {
	authService    handler.AuthService
	readiness      handler.Readiness
	formTokens     model.FormTokenManager
	contextManager model.ContextManager
	cookies        Cookies
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	authService handler.AuthService,
	readiness handler.Readiness,
	formTokens model.FormTokenManager,
	contextManager model.ContextManager,
	cookies Cookies,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		readiness:      readiness,
		formTokens:     formTokens,
		contextManager: contextManager,
		cookies:        cookies,
		logger:         logger,
	}
}

// Register builds the engine with all routes.
//
// Page routes run logging, recovery, CSRF and session loading. Probes only
// run logging and recovery.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()
	// ClientIP keys login throttling, so forwarded headers are not trusted.
	_ = engine.SetTrustedProxies(nil)
	engine.SetHTMLTemplate(templates.Must())

	logging := middleware.NewLogging(r.logger)
	engine.Use(logging.Handle, gin.Recovery())

	r.registerHealthRoutes(engine)
	r.registerPageRoutes(engine)

	return engine
}

func (r *Router) registerHealthRoutes(engine *gin.Engine) {
	healthHandler := handler.NewHealth(r.readiness, r.logger)
	engine.GET("/healthz", healthHandler.Live)
	engine.GET("/readyz", healthHandler.Ready)
}

func (r *Router) registerPageRoutes(engine *gin.Engine) {
	csrf := middleware.NewCSRF(r.formTokens, r.cookies.CSRF, r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.cookies.Session, r.logger)
	authHandler := handler.NewAuth(r.authService, r.contextManager, r.cookies.Session, r.logger)

	pages := engine.Group("/", csrf.Handle)

	pages.GET("/", authHandler.Index)
	pages.GET("/login", authenticate.Load, authenticate.RedirectAuthenticated("/home"), authHandler.LoginForm)
	pages.POST("/login", authHandler.Login)
	pages.GET("/register", authHandler.RegisterForm)
	pages.POST("/register", authHandler.Register)
	pages.GET("/home", authenticate.Load, authenticate.RequireSession, authHandler.Home)
	pages.GET("/logout", authHandler.Logout)
	pages.POST("/logout", authHandler.Logout)
}
