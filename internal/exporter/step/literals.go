package step

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ============================================================
// Literals
// ============================================================

const (
	// Unset обозначает незаданный атрибут.
	Unset = "$"
	// Derived обозначает производный атрибут.
	Derived = "*"
)

var (
	utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf32be = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
)

// Ref возвращает ссылку на запись.
func Ref(id int) string {
	return "#" + strconv.Itoa(id)
}

// Refs возвращает список ссылок (#1,#2).
func Refs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = Ref(id)
	}
	return List(parts...)
}

// List оборачивает элементы в скобки через запятую.
func List(items ...string) string {
	return "(" + strings.Join(items, ",") + ")"
}

// Int возвращает целочисленный литерал.
func Int(v int) string {
	return strconv.Itoa(v)
}

// Bool возвращает .T. или .F.
func Bool(v bool) string {
	if v {
		return ".T."
	}
	return ".F."
}

// Enum возвращает перечисление .VALUE.
func Enum(v string) string {
	return "." + v + "."
}

// Typed оборачивает значение в тип: IFCREAL(1.5).
func Typed(typ, value string) string {
	return typ + "(" + value + ")"
}

// Round6 округляет до 6 знаков; NaN и бесконечности превращаются в 0.
func Round6(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := math.Round(v*1e6) / 1e6
	if math.IsNaN(r) || math.IsInf(r, 0) {
		// переполнение при умножении на 1e6
		return v
	}
	if r == 0 {
		return 0 // -0 → 0
	}
	return r
}

// Real возвращает вещественный литерал STEP: всегда с точкой, 6 знаков после округления.
func Real(v float64) string {
	s := strconv.FormatFloat(Round6(v), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}

// Point возвращает тройку координат (x,y,z).
func Point(x, y, z float64) string {
	return "(" + Real(x) + "," + Real(y) + "," + Real(z) + ")"
}

// String возвращает строковый литерал в одинарных кавычках.
// Апостроф и обратная косая черта удваиваются. Не-ASCII символы базовой плоскости
// кодируются как \X2\HHHH\X0\, символы за её пределами как \X4\HHHHHHHH\X0\.
func String(s string) string {
	var builder strings.Builder
	builder.WriteByte('\'')

	var wide []rune
	astral := false
	flush := func() {
		if len(wide) == 0 {
			return
		}
		directive, enc := `\X2\`, utf16be.NewEncoder()
		if astral {
			directive, enc = `\X4\`, utf32be.NewEncoder()
		}
		encoded, err := enc.String(string(wide))
		if err == nil {
			builder.WriteString(directive)
			builder.WriteString(strings.ToUpper(hex.EncodeToString([]byte(encoded))))
			builder.WriteString(`\X0\`)
		}
		wide = wide[:0]
	}

	for _, r := range s {
		if r >= 0x20 && r < 0x7F {
			flush()
			switch r {
			case '\'':
				builder.WriteString("''")
			case '\\':
				builder.WriteString(`\\`)
			default:
				builder.WriteRune(r)
			}
			continue
		}
		if r < 0x20 || r == 0x7F {
			// управляющие символы в STEP-строках недопустимы
			flush()
			builder.WriteByte(' ')
			continue
		}
		if isAstral := r > 0xFFFF; isAstral != astral {
			flush()
			astral = isAstral
		}
		wide = append(wide, r)
	}
	flush()

	builder.WriteByte('\'')
	return builder.String()
}
