package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "papertrade/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	Web      *WebHandler
	API      *APIHandler
	Sessions custommiddleware.SessionResolver
}

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates a bound request struct. Callers map failures to the
// uniform response envelope.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	e.Validator = NewValidator()

	webAuth := custommiddleware.SessionAuth(config.Sessions, true)
	apiAuth := custommiddleware.SessionAuth(config.Sessions, false)

	// Web pages (HTML forms)
	e.GET("/", config.Web.HandleIndex, webAuth)
	e.GET("/register", config.Web.HandleRegister)
	e.POST("/register", config.Web.HandleRegisterPost)
	e.GET("/login", config.Web.HandleLogin)
	e.POST("/login", config.Web.HandleLoginPost)
	e.GET("/logout", config.Web.HandleLogout)
	e.POST("/logout", config.Web.HandleLogout)
	e.GET("/quote", config.Web.HandleQuote, webAuth)
	e.POST("/quote", config.Web.HandleQuotePost, webAuth)
	e.GET("/buy", config.Web.HandleBuy, webAuth)
	e.POST("/buy", config.Web.HandleBuyPost, webAuth)
	e.GET("/sell", config.Web.HandleSell, webAuth)
	e.POST("/sell", config.Web.HandleSellPost, webAuth)
	e.GET("/history", config.Web.HandleHistory, webAuth)

	// JSON API
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.API.Register)
		auth.POST("/login", config.API.Login)
		auth.POST("/logout", config.API.Logout)
	}

	// User routes (protected)
	user := api.Group("", apiAuth)
	{
		user.GET("/quote", config.API.Quote)
		user.GET("/portfolio", config.API.Portfolio)
		user.GET("/history", config.API.History)
		user.POST("/buy", config.API.Buy)
		user.POST("/sell", config.API.Sell)
	}
}
