package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mateusmacedo/go-reservas/pkg/domain"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// as mensagens usam o nome do campo no JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Bind decodifica o corpo JSON em dst e valida as tags `validate`. Falhas viram
// erro de validação com mensagens por campo.
func Bind(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewFieldError(typeErr.Field, fmt.Sprintf("O campo %s é inválido.", displayName(typeErr.Field)))
		}
		return domain.NewFieldError("body", "O corpo da requisição não é um JSON válido.")
	}
	return Validate(dst)
}

// Validate aplica as tags `validate` de v.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domain.NewInternalError(err)
	}

	fields := make(map[string][]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fe.Field()] = append(fields[fe.Field()], messageFor(fe))
	}
	return domain.NewValidationError(fields)
}

func displayName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func messageFor(fe validator.FieldError) string {
	name := displayName(fe.Field())
	kind := fe.Kind()
	if kind == reflect.Ptr {
		kind = fe.Type().Elem().Kind()
	}
	isString := kind == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("O campo %s é obrigatório.", name)
	case "email":
		return fmt.Sprintf("O campo %s deve ser um endereço de e-mail válido.", name)
	case "max":
		if isString {
			return fmt.Sprintf("O campo %s não pode ter mais de %s caracteres.", name, fe.Param())
		}
		return fmt.Sprintf("O campo %s não pode ser maior que %s.", name, fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("O campo %s deve ter pelo menos %s caracteres.", name, fe.Param())
		}
		return fmt.Sprintf("O campo %s deve ser pelo menos %s.", name, fe.Param())
	case "gte":
		return fmt.Sprintf("O campo %s deve ser maior ou igual a %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("O campo %s selecionado é inválido.", name)
	case "datetime":
		return fmt.Sprintf("O campo %s não é uma data válida.", name)
	case "uuid", "uuid4":
		return fmt.Sprintf("O campo %s deve ser um UUID válido.", name)
	default:
		return fmt.Sprintf("O campo %s é inválido.", name)
	}
}
