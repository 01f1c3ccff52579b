// Package validator envuelve go-playground/validator para producir mensajes por campo
// con el nombre JSON del campo, listos para devolverse en el sobre de error 422.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors mensajes de validación agrupados por campo JSON.
type Errors map[string][]string

// Add agrega un mensaje al campo.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Validator valida structs con tags `validate`.
type Validator struct {
	v *validator.Validate
}

// New construye el validador usando el tag json como nombre de campo.
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

// Struct valida s y devuelve los errores por campo (nil si es válido).
func (val *Validator) Struct(s interface{}) Errors {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	out := Errors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("body", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// DecodeErrors traduce errores de decodificación JSON a mensajes por campo.
// Un campo numérico enviado como texto produce "<campo> debe ser un número".
func DecodeErrors(err error) Errors {
	out := Errors{}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		switch typeErr.Type.Kind() {
		case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
			out.Add(typeErr.Field, fmt.Sprintf("el campo %s debe ser un número", label(typeErr.Field)))
		default:
			out.Add(typeErr.Field, fmt.Sprintf("el campo %s debe ser texto", label(typeErr.Field)))
		}
		return out
	}
	out.Add("body", "cuerpo JSON inválido")
	return out
}

func message(fe validator.FieldError) string {
	field := label(fe.Field())
	numeric := isNumeric(fe.Kind())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("el campo %s es obligatorio", field)
	case "email":
		return fmt.Sprintf("el campo %s debe ser un email válido", field)
	case "min":
		if numeric {
			return fmt.Sprintf("el campo %s debe ser al menos %s", field, fe.Param())
		}
		return fmt.Sprintf("el campo %s debe tener al menos %s caracteres", field, fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("el campo %s no puede ser mayor que %s", field, fe.Param())
		}
		return fmt.Sprintf("el campo %s no puede superar %s caracteres", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("el campo %s debe ser uno de: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("el campo %s no es válido", field)
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// label "bean_type" -> "bean type".
func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
