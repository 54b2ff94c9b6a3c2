package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ITI-GP-2025/examination-service/internal/errors"
	"github.com/ITI-GP-2025/examination-service/internal/models"
)

// Validator wraps go-playground/validator with the service's custom tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator instance with all custom tags registered.
func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate validates struct tags and converts field errors to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("student_status", validateStudentStatus)
	validate.RegisterValidation("caller_role", validateCallerRole)

	// Report the json field name in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.MultipleChoice,
		models.TrueFalse,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateStudentStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.StudentStatus{
		models.StudentActive,
		models.StudentGraduated,
		models.StudentNotGraduated,
		models.StudentOnLeave,
		models.StudentWithdrawn,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateCallerRole(fl validator.FieldLevel) bool {
	validRoles := []models.Role{
		models.RoleStudent,
		models.RoleInstructor,
		models.RoleManager,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}
