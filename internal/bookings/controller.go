package bookings

import (
	"net/http"

	"boxstudio/internal/shared/middleware"
	"boxstudio/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateBooking(c *gin.Context)
	ApproveBooking(c *gin.Context)
	CancelBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	ListBookings(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := ctrl.service.Create(c.Request.Context(), uuid.MustParse(req.EventID), uuid.MustParse(req.MemberID))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created successfully", ToBookingResponse(booking), nil)
}

func (ctrl *controller) ApproveBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	var req ApproveBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
			return
		}
	}
	// Fall back to the authenticated caller
	approvedBy := req.ApprovedBy
	if approvedBy == "" {
		approvedBy = c.GetString(middleware.ContextKeySubject)
	}

	booking, err := ctrl.service.Approve(c.Request.Context(), bookingID, approvedBy)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking approved successfully", ToBookingResponse(booking), nil)
}

func (ctrl *controller) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := ctrl.service.Cancel(c.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled successfully", ToBookingResponse(booking), nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := ctrl.service.Get(c.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", ToBookingResponse(booking), nil)
}

func (ctrl *controller) ListBookings(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	query := ListQuery{
		Status:   Status(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.EventID != "" {
		id := uuid.MustParse(req.EventID)
		query.EventID = &id
	}
	if req.MemberID != "" {
		id := uuid.MustParse(req.MemberID)
		query.MemberID = &id
	}

	page, err := ctrl.service.List(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	items := make([]BookingResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToBookingResponse(&page.Items[i]))
	}
	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", BookingListResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil)
}
