// Package dxf пишет тесселированные элементы в DXF R12 как набор 3DFACE.
package dxf

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"cad-exporter/internal/exporter/models"
)

// ============================================================
// Options
// ============================================================

const (
	// DefaultVersion пишется в $ACADVER (R12).
	DefaultVersion = "AC1009"
	// DefaultInsUnits означает миллиметры.
	DefaultInsUnits = 4
	// DefaultLayer получают элементы без типа.
	DefaultLayer = "0"

	maxLayerName = 31
)

type Options struct {
	Version  string
	Scale    float64
	InsUnits *int
	Logger   *zap.Logger
}

// FromSettings собирает Options из настроек запроса/конфига.
func FromSettings(s models.DXFSettings) Options {
	return Options{
		Version:  s.Version,
		Scale:    s.Scale,
		InsUnits: s.InsUnits,
	}
}

func (o Options) normalized() Options {
	if strings.TrimSpace(o.Version) == "" {
		o.Version = DefaultVersion
	}
	if o.Scale == 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		o.Scale = 1
	}
	if o.InsUnits == nil {
		units := DefaultInsUnits
		o.InsUnits = &units
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ============================================================
// Build
// ============================================================

type vec3 [3]float64

type face struct {
	layer   string
	corners [3]vec3
}

// extents хранит габариты по всем записанным вершинам.
type extents struct {
	min, max vec3
	empty    bool
}

func newExtents() extents {
	return extents{empty: true}
}

func (e *extents) add(v vec3) {
	if e.empty {
		e.min, e.max, e.empty = v, v, false
		return
	}
	for i := 0; i < 3; i++ {
		e.min[i] = math.Min(e.min[i], v[i])
		e.max[i] = math.Max(e.max[i], v[i])
	}
}

// Build возвращает DXF документ. Треугольники с индексом за пределами массива
// координат или с нечисловыми координатами пропускаются. Ошибок не бывает.
func Build(elements []models.Element, opts Options) string {
	opts = opts.normalized()

	var faces []face
	ext := newExtents()
	dropped := 0
	withoutGeometry := 0

	for _, e := range elements {
		if !e.HasGeometry() {
			withoutGeometry++
			continue
		}
		layer := LayerName(e.IFCType)
		coords, _ := e.Geometry(true)

		for t := 0; t+2 < len(e.Indices); t += 3 {
			var corners [3]vec3
			ok := true
			for k := 0; k < 3 && ok; k++ {
				corners[k], ok = scaledVertex(coords, e.Indices[t+k], opts.Scale)
			}
			if !ok {
				dropped++
				continue
			}
			for _, c := range corners {
				ext.add(c)
			}
			faces = append(faces, face{layer: layer, corners: corners})
		}
	}

	if dropped > 0 {
		opts.Logger.Debug("dxf triangles dropped",
			zap.Int("dropped", dropped),
			zap.Int("faces", len(faces)))
	}

	if withoutGeometry > 0 {
		opts.Logger.Debug("dxf elements without geometry",
			zap.Int("skipped", withoutGeometry))
	}

	if ext.empty {
		ext.min, ext.max = vec3{}, vec3{}
	}

	w := &tagWriter{}
	w.section("HEADER")
	w.variable("$ACADVER")
	w.pair(1, opts.Version)
	w.variable("$INSUNITS")
	w.pair(70, strconv.Itoa(*opts.InsUnits))
	w.variable("$EXTMIN")
	w.point(0, ext.min)
	w.variable("$EXTMAX")
	w.point(0, ext.max)
	w.endSection()

	w.section("ENTITIES")
	for _, f := range faces {
		w.pair(0, "3DFACE")
		w.pair(8, f.layer)
		w.point(0, f.corners[0])
		w.point(1, f.corners[1])
		w.point(2, f.corners[2])
		w.point(3, f.corners[2])
	}
	w.endSection()
	w.pair(0, "EOF")

	return w.String()
}

// scaledVertex возвращает вершину, умноженную на scale. false: индекс вне массива
// или координата не является конечным числом.
func scaledVertex(coords []float64, idx uint32, scale float64) (vec3, bool) {
	i := int(idx)
	if i < 0 || 3*i+2 >= len(coords) {
		return vec3{}, false
	}
	v := vec3{coords[3*i] * scale, coords[3*i+1] * scale, coords[3*i+2] * scale}
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return vec3{}, false
		}
	}
	return v, true
}

// LayerName превращает IFC тип в допустимое имя слоя:
// символы вне [A-Za-z0-9_$-] заменяются на '_', длина не больше 31.
func LayerName(ifcType string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '$', r == '-':
			return r
		}
		return '_'
	}, strings.TrimSpace(ifcType))

	if runes := []rune(name); len(runes) > maxLayerName {
		name = string(runes[:maxLayerName])
	}
	if name == "" {
		return DefaultLayer
	}
	return name
}

// FileName возвращает имя .dxf файла для проекта.
func FileName(projectName string) string {
	return models.FileBase(projectName) + ".dxf"
}

// ============================================================
// Encoding
// ============================================================

// Encode переводит документ в Windows-1252, как ожидают читатели R12.
// Символы вне кодовой страницы заменяются на '?'.
func Encode(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}
