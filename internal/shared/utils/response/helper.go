package response

import (
	"boxstudio/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps an application error to its status code and safe message.
// Errors outside the apperror taxonomy are reported as 500 without leaking details.
func RespondError(c *gin.Context, err error) {
	code := apperror.StatusCode(err)
	RespondJSON(c, "error", code, apperror.SafeMessage(err), nil, gin.H{"code": apperror.Code(err)})
}
