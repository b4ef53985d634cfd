// Package validation содержит проверку входных данных API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError описывает отсутствующее или некорректное обязательное поле запроса.
type FieldError struct {
	Field string
}

// Error возвращает сообщение с именем поля в том виде, в каком оно приходит по API.
func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Validator проверяет структуры запросов по тегам validate.
type Validator struct {
	v *validator.Validate
}

// New создаёт валидатор, который в ошибках использует имена полей из json-тегов.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{v: v}
}

// Struct проверяет структуру запроса. Для первого нарушенного поля
// возвращается *FieldError с его wire-именем.
func (vl *Validator) Struct(s any) error {
	err := vl.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field()}
	}

	return err
}
