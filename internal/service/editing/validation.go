package editing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
)

var validate = validator.New()

var fieldLabels = map[string]string{
	"Name":      string(models.FieldName),
	"UnitPrice": string(models.FieldUnitPrice),
	"Category":  string(models.FieldCategory),
	"Quantity":  string(models.FieldQuantity),
}

// validateDraft checks that every field is present and within range.
func validateDraft(d models.Draft) *models.ErrorReport {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return models.NewErrorReport(models.ErrorValidation, err.Error())
	}

	problems := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		problems = append(problems, formatFieldError(e))
	}
	return models.NewErrorReport(models.ErrorValidation, "fill in all fields: "+strings.Join(problems, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field, ok := fieldLabels[e.Field()]
	if !ok {
		field = strings.ToLower(e.Field())
	}

	switch e.Tag() {
	case "required", "min":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
