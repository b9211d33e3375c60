package attendance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

var (
	statusTag  = "attstatus"
	statusText = "must be one of present, late, absent or excused"
)

func init() {
	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(statusTag, statusText)
}

// statusValidation checks that the provided attendance status is a known one.
func statusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range Statuses {
		if val == s {
			return true
		}
	}
	return false
}
