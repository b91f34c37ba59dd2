package members

import (
	"net/http"

	"boxstudio/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type CheckInRequest struct {
	Token    string `form:"token" binding:"required"`
	MemberID string `form:"member_id" binding:"required"`
}

type CheckInResponse struct {
	OK              bool   `json:"ok"`
	MemberID        string `json:"member_id"`
	AttendanceCount int    `json:"attendance_count"`
}

type Controller interface {
	CheckIn(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "token and member_id are required", nil, err.Error())
		return
	}

	member, err := ctrl.service.CheckIn(c.Request.Context(), req.Token, req.MemberID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Checked in", CheckInResponse{
		OK:              true,
		MemberID:        member.ID.String(),
		AttendanceCount: member.AttendanceCount,
	}, nil)
}
