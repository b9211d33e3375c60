package grade

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classtrack/core"
)

var (
	categoryTag  = "gradecategory"
	categoryText = "must be one of Assignment, Quiz, Test, Project, Lab, Essay or Exam"
)

func init() {
	_ = core.Validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(categoryTag, categoryText)
}

// categoryValidation checks that the provided grade category is a known one.
func categoryValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, c := range Categories {
		if val == c {
			return true
		}
	}
	return false
}
