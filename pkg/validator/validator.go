package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Struct валидирует поля структуры по тегам validate; возвращает поле -> нарушенный тег
func Struct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			errs[e.Field()] = e.Tag()
		}
		return errs
	}
	errs[""] = err.Error()
	return errs
}

// Var проверяет одно значение по тегу, например "email" или "max=100"
func Var(value interface{}, tag string) error {
	return validate.Var(value, tag)
}
