package dxf

import (
	"math"
	"strconv"
	"strings"
)

// tagWriter пишет пары "код группы / значение", каждое на своей строке.
type tagWriter struct {
	b strings.Builder
}

func (w *tagWriter) pair(code int, value string) {
	w.b.WriteString(strconv.Itoa(code))
	w.b.WriteByte('\n')
	w.b.WriteString(value)
	w.b.WriteByte('\n')
}

func (w *tagWriter) section(name string) {
	w.pair(0, "SECTION")
	w.pair(2, name)
}

func (w *tagWriter) endSection() {
	w.pair(0, "ENDSEC")
}

func (w *tagWriter) variable(name string) {
	w.pair(9, name)
}

// point пишет координаты с кодами 10+n, 20+n, 30+n.
func (w *tagWriter) point(n int, v vec3) {
	w.pair(10+n, formatNumber(v[0]))
	w.pair(20+n, formatNumber(v[1]))
	w.pair(30+n, formatNumber(v[2]))
}

func (w *tagWriter) String() string {
	return w.b.String()
}

// formatNumber округляет до 6 знаков и пишет без экспоненты.
func formatNumber(v float64) string {
	r := math.Round(v*1e6) / 1e6
	if math.IsInf(r, 0) || math.IsNaN(r) {
		r = v
	}
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
