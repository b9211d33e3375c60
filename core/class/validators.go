package class

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

var (
	semesterTag  = "semester"
	semesterText = "must be one of Fall, Spring, Summer or Winter"
)

func init() {
	_ = core.Validate.RegisterValidation(semesterTag, semesterValidation)
	core.RegisterCustomTranslation(semesterTag, semesterText)
}

// semesterValidation checks that the provided semester is a known one.
func semesterValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range Semesters {
		if val == s {
			return true
		}
	}
	return false
}
