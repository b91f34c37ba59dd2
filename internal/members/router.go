package members

import "github.com/gin-gonic/gin"

// SetupCheckInRoutes registers the public QR check-in endpoint
func SetupCheckInRoutes(rg *gin.RouterGroup, controller Controller) {
	rg.GET("/checkin", controller.CheckIn)
}
