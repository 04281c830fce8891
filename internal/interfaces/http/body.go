package http

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// parseBody decodifica el JSON del cuerpo en dest y aplica las reglas validate.
func parseBody(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 {
		return fmt.Errorf("%w: cuerpo vacío", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(c.Body(), dest); err != nil {
		return fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrInvalidInput, err)
	}
	return validateStruct(dest)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fe.Field()+" "+validationMessage(fe))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("debe ser al menos %s", fe.Param())
	case "max":
		return fmt.Sprintf("debe tener como máximo %s", fe.Param())
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "email":
		return "debe ser un email válido"
	}
	return "es inválido"
}

// rejectKeys falla si el cuerpo JSON (objeto) contiene alguna de las claves indicadas.
func rejectKeys(body []byte, keys []string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrInvalidInput, err)
	}
	for _, k := range keys {
		if _, ok := raw[k]; ok {
			return fmt.Errorf("%w: %s no se puede editar; el stock solo cambia mediante movimientos", domain.ErrInvalidInput, k)
		}
	}
	return nil
}

// paramID lee un id numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s debe ser un entero positivo", domain.ErrInvalidInput, name)
	}
	return int64(id), nil
}
