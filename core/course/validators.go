package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/katleho/brainhub/core"
)

var (
	gradeLevelTag  = "gradelevel"
	gradeLevelText = "grade level must be between 1 and 12"
)

func init() {
	_ = core.Validate.RegisterValidation(gradeLevelTag, gradeLevelValidation)
	core.RegisterCustomTranslation(gradeLevelTag, gradeLevelText)
}

// gradeLevelValidation checks that a grade level is in the schooling range 1 - 12.
func gradeLevelValidation(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n <= 12
}
