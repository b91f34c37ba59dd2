package payments

import (
	"net/http"

	"boxstudio/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreatePayment(c *gin.Context)
	ListPayments(c *gin.Context)
	CreateRefund(c *gin.Context)
	ListRefunds(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	payment, err := ctrl.service.CreatePayment(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Payment created successfully", payment, nil)
}

func (ctrl *controller) ListPayments(c *gin.Context) {
	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	query := PaymentQuery{Status: req.Status, Page: req.Page, PageSize: req.PageSize}
	if req.MemberID != "" {
		id := uuid.MustParse(req.MemberID)
		query.MemberID = &id
	}

	page, err := ctrl.service.ListPayments(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Payments retrieved successfully", page, nil)
}

func (ctrl *controller) CreateRefund(c *gin.Context) {
	var req CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	refund, err := ctrl.service.CreateRefund(c.Request.Context(), uuid.MustParse(req.PaymentID), *req.AmountCents, req.Reason)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Refund created successfully", refund, nil)
}

func (ctrl *controller) ListRefunds(c *gin.Context) {
	var req ListRefundsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	query := RefundQuery{Page: req.Page, PageSize: req.PageSize}
	if req.PaymentID != "" {
		id := uuid.MustParse(req.PaymentID)
		query.PaymentID = &id
	}

	page, err := ctrl.service.ListRefunds(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Refunds retrieved successfully", page, nil)
}
