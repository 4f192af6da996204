// Package step пишет граф пронумерованных записей ISO-10303-21.
package step

import (
	"strconv"
	"strings"
)

// ============================================================
// Writer
// ============================================================

// Entity хранит одну запись #ID=TYPE(ARGS);.
type Entity struct {
	ID   int
	Type string
	Args string
}

// Line возвращает запись в текстовом виде.
func (e Entity) Line() string {
	return "#" + strconv.Itoa(e.ID) + "=" + e.Type + "(" + e.Args + ");"
}

// Writer выдаёт номера записей строго по возрастанию и хранит их в порядке создания.
// Запись может ссылаться только на уже созданные записи: граф строится за один проход.
type Writer struct {
	seq      int
	entities []Entity
}

func NewWriter() *Writer {
	return &Writer{seq: 1}
}

// Add добавляет запись и возвращает её номер.
func (w *Writer) Add(typ, args string) int {
	id := w.seq
	w.seq++
	w.entities = append(w.entities, Entity{ID: id, Type: typ, Args: args})
	return id
}

// Len возвращает количество записей.
func (w *Writer) Len() int {
	return len(w.entities)
}

// Entities возвращает копию записей в порядке создания.
func (w *Writer) Entities() []Entity {
	out := make([]Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Text склеивает записи через перевод строки.
func (w *Writer) Text() string {
	var builder strings.Builder
	for i, e := range w.entities {
		if i > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(e.Line())
	}
	return builder.String()
}
