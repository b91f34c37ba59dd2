package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures booking lifecycle routes on an authenticated group
func SetupBookingRoutes(rg *gin.RouterGroup, controller Controller) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", controller.CreateBooking)              // POST /api/v1/bookings
		bookings.GET("", controller.ListBookings)                // GET /api/v1/bookings?event_id=&member_id=&status=&page=&page_size=
		bookings.GET("/:id", controller.GetBooking)              // GET /api/v1/bookings/:id
		bookings.POST("/:id/approve", controller.ApproveBooking) // POST /api/v1/bookings/:id/approve
		bookings.POST("/:id/cancel", controller.CancelBooking)   // POST /api/v1/bookings/:id/cancel
	}
}
