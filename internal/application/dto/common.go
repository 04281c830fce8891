package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/obralink/obralink-api/internal/domain"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Mensaje string `json:"mensaje"`
}

// Formatos aceptados para fechas de negocio: ISO completo o solo fecha (hora local del servidor).
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"}

// ParseFecha interpreta una fecha opcional del cliente. Vacío = nil.
func ParseFecha(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: fecha %q no reconocida", domain.ErrInvalidInput, s)
}

// EndOfDay extiende una fecha sin hora hasta el final del día (filtros "hasta").
func EndOfDay(s string, t *time.Time) *time.Time {
	if t == nil || len(strings.TrimSpace(s)) != len("2006-01-02") {
		return t
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}

// FlexInt entero de request que acepta número JSON o string numérico ("5"), como envían los
// formularios del cliente web. "" y null equivalen a 0.
type FlexInt int64

// UnmarshalJSON implementa json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q no es un entero", domain.ErrInvalidInput, raw)
	}
	*f = FlexInt(n)
	return nil
}

// Int64 valor como int64.
func (f FlexInt) Int64() int64 { return int64(f) }

// OptionalID nil cuando el valor es 0 (id ausente).
func (f FlexInt) OptionalID() *int64 {
	if f == 0 {
		return nil
	}
	v := int64(f)
	return &v
}

// Int64Ptr convierte un *FlexInt opcional.
func Int64Ptr(f *FlexInt) *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}
