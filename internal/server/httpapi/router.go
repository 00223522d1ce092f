// Package httpapi exposes the auth surface over HTTP using gin.
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/s-fanou/feed/internal/logging"
	"github.com/s-fanou/feed/internal/server/auth"
	"github.com/s-fanou/feed/internal/server/services"
)

// Options carries everything the router needs.
type Options struct {
	Users          *services.UserService
	Verifier       *auth.Verifier
	Logger         logging.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine. The gin mode is set by the caller.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(opts.Logger), ErrorResponder(opts.Logger))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	h := NewHandler(opts.Users)

	router.GET("/health", h.Health)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", h.Signup)
		authRoutes.PUT("/signup", h.Signup)
		authRoutes.POST("/login", h.Login)

		protected := authRoutes.Group("")
		protected.Use(RequireAuth(opts.Verifier))
		{
			protected.GET("/me", h.Me)
			protected.POST("/logout", h.Logout)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Message: "Not found."})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{
		http.MethodOptions, http.MethodGet, http.MethodPost,
		http.MethodPut, http.MethodPatch, http.MethodDelete,
	}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization"}
	return cfg
}
