// Package validation проверяет входные данные запросов до обращения к хранилищу.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Normalizer реализуют входные структуры, которым нужна нормализация
// (trim, lower-case) перед проверкой.
type Normalizer interface {
	Normalize()
}

// Emptiable реализуют структуры частичного обновления: хотя бы одно поле обязательно.
type Emptiable interface {
	IsEmpty() bool
}

// Validator: обёртка над go-playground/validator с человекочитаемыми сообщениями.
type Validator struct {
	v *validator.Validate
}

// New создаёт Validator, который называет поля по их json-тегам.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct нормализует и проверяет структуру. Ошибка: *domain.ValidationError.
func (val *Validator) Struct(s any) error {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}

	var messages []string
	if e, ok := s.(Emptiable); ok && e.IsEmpty() {
		messages = append(messages, "at least one field must be provided")
	}

	if err := val.v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("ошибка проверки входных данных: %w", err)
		}
		for _, fe := range verrs {
			messages = append(messages, message(fe))
		}
	}

	if len(messages) > 0 {
		return &domain.ValidationError{Messages: messages}
	}
	return nil
}

// ParseID разбирает идентификатор из URL и возвращает ошибку валидации с сообщением для клиента.
func (val *Validator) ParseID(raw string) (domain.ID, error) {
	id, err := domain.ParseID(strings.TrimSpace(raw))
	if err != nil {
		return "", &domain.ValidationError{Messages: []string{"id must be a valid 24-character hex identifier"}}
	}
	return id, nil
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("%s does not match %s", field, jsonName(fe))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// jsonName переводит имя Go-поля из параметра eqfield в json-имя.
func jsonName(fe validator.FieldError) string {
	param := fe.Param()
	if param == "" {
		return param
	}
	return strings.ToLower(param[:1]) + param[1:]
}
