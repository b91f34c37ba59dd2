package analytics

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// WindowRequest carries the inclusive bounds of a windowed query
type WindowRequest struct {
	Start string `form:"start" binding:"required,rfc3339"`
	End   string `form:"end" binding:"required,rfc3339"`
}

// Bounds parses both timestamps; validation has already accepted them
func (r WindowRequest) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

var registerOnce sync.Once

// RegisterValidations adds the rfc3339 tag to gin's validator
func RegisterValidations() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("rfc3339", validateRFC3339)
		}
	})
}

func validateRFC3339(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}
