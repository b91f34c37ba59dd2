package auth

import (
	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new auth router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers the public token exchange route
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/token", authRouter.controller.Token)
	}
}
