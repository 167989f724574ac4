package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/staff-portal/api/handler"
	"github.com/fastygo/staff-portal/internal/middleware"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Portal *apiHandler.PortalHandler
	Health *apiHandler.HealthHandler
}

// Route is one registered endpoint, listed by the routes command.
type Route struct {
	Method string
	Path   string
	Gated  bool
}

// Routes is the HTTP surface in registration order.
var Routes = []Route{
	{Method: fasthttp.MethodGet, Path: "/health"},
	{Method: fasthttp.MethodGet, Path: "/login"},
	{Method: fasthttp.MethodPost, Path: "/login"},
	{Method: fasthttp.MethodGet, Path: "/profile-setup"},
	{Method: fasthttp.MethodPost, Path: "/profile-setup"},
	{Method: fasthttp.MethodPost, Path: "/profile-setup/skip"},
	{Method: fasthttp.MethodPost, Path: "/logout"},
	{Method: fasthttp.MethodGet, Path: "/portal/{page}", Gated: true},
	{Method: fasthttp.MethodGet, Path: "/api/v1/session", Gated: true},
}

func New(handlers Handlers, gate *middleware.Gate) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/login", handlers.Auth.LoginForm)
	r.POST("/login", handlers.Auth.Login)
	r.GET("/profile-setup", handlers.Auth.ProfileSetupForm)
	r.POST("/profile-setup", handlers.Auth.CompleteProfile)
	r.POST("/profile-setup/skip", handlers.Auth.SkipProfile)
	r.POST("/logout", handlers.Auth.Logout)

	// Gated routes
	r.GET("/portal/{page}", gate.Protect(middleware.PageParam("page"), handlers.Portal.Page))
	r.GET("/api/v1/session", gate.Protect(nil, handlers.Portal.Session))

	return r
}
