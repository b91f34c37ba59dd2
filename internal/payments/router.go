package payments

import (
	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller Controller) {
	payments := rg.Group("/payments")
	{
		payments.POST("", controller.CreatePayment) // POST /api/v1/payments
		payments.GET("", controller.ListPayments)   // GET /api/v1/payments?member_id=&status=&page=&page_size=
	}

	refunds := rg.Group("/refunds")
	{
		refunds.POST("", controller.CreateRefund) // POST /api/v1/refunds
		refunds.GET("", controller.ListRefunds)   // GET /api/v1/refunds?payment_id=&page=&page_size=
	}
}
