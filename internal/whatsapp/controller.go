package whatsapp

import (
	"errors"
	"io"
	"net/http"

	"boxstudio/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

const maxCallbackBytes = 64 << 10

type Controller interface {
	SendGroup(c *gin.Context)
	RecordStatus(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) SendGroup(c *gin.Context) {
	var req SendGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	message, err := ctrl.service.SendGroup(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Message queued", message, nil)
}

func (ctrl *controller) RecordStatus(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBytes))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	payload, err := DecodeStatusPayload(body)
	if err != nil {
		msg := "Invalid request body"
		if errors.Is(err, ErrUnknownPayloadShape) {
			msg = "Unrecognized status payload shape"
		}
		response.RespondJSON(c, "error", http.StatusBadRequest, msg, nil, err.Error())
		return
	}

	event, err := ctrl.service.RecordStatus(c.Request.Context(), payload)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Status recorded", event, nil)
}
