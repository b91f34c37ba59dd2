package whatsapp

import (
	"github.com/gin-gonic/gin"
)

func SetupWhatsAppRoutes(rg *gin.RouterGroup, controller Controller) {
	wa := rg.Group("/whatsapp")
	{
		wa.POST("/messages", controller.SendGroup)  // POST /api/v1/whatsapp/messages
		wa.POST("/status", controller.RecordStatus) // POST /api/v1/whatsapp/status
	}
}
