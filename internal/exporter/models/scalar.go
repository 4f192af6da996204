package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================
// Scalar values
// ============================================================

// Scalar хранит значение свойства элемента. Реализуют только Null, Bool,
// Number, Text и JSON.
type Scalar interface {
	scalar()
}

// Null означает отсутствующее значение (null/undefined на стороне клиента).
type Null struct{}

// Bool хранит логическое значение.
type Bool bool

// Number хранит числовое значение.
type Number float64

// Text хранит строковое значение.
type Text string

// JSON хранит вложенный объект или массив в компактной JSON-записи.
type JSON string

func (Null) scalar()   {}
func (Bool) scalar()   {}
func (Number) scalar() {}
func (Text) scalar()   {}
func (JSON) scalar()   {}

// ============================================================
// Props
// ============================================================

// Props содержит свободный набор бизнес-атрибутов элемента.
type Props map[string]Scalar

// UnmarshalJSON разбирает каждое значение один раз в Scalar.
func (p *Props) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("props: %w", err)
	}

	out := make(Props, len(raw))
	for key, value := range raw {
		s, err := parseScalar(value)
		if err != nil {
			return fmt.Errorf("props[%q]: %w", key, err)
		}
		out[key] = s
	}
	*p = out
	return nil
}

func parseScalar(raw json.RawMessage) (Scalar, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Null{}, nil
	}

	switch trimmed[0] {
	case 'n':
		return Null{}, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return Text(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return JSON(buf.String()), nil
	default:
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}
