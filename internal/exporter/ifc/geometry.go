package ifc

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"cad-exporter/internal/exporter/step"
)

// ============================================================
// Closed shell detection
// ============================================================

type edge struct{ a, b uint32 }

// IsClosed проверяет, что каждое ребро входит ровно в два треугольника.
// Ориентация граней и связность не проверяются.
func IsClosed(indices []uint32) bool {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return false
	}

	counts := make(map[edge]int, len(indices))
	for t := 0; t < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		counts[newEdge(a, b)]++
		counts[newEdge(b, c)]++
		counts[newEdge(c, a)]++
	}

	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}

func newEdge(a, b uint32) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a: a, b: b}
}

// ============================================================
// Vertex access
// ============================================================

// vertexCount считает полные тройки координат.
func vertexCount(coords []float64) int {
	return len(coords) / 3
}

// vertex возвращает вершину по индексу; несуществующая вершина читается как начало координат.
func vertex(coords []float64, idx uint32) (x, y, z float64) {
	i := int(idx)
	if i >= vertexCount(coords) {
		return 0, 0, 0
	}
	return coords[3*i], coords[3*i+1], coords[3*i+2]
}

// ============================================================
// Tessellated face set
// ============================================================

// writeTessellated пишет IfcCartesianPointList3D и IfcTriangulatedFaceSet.
// Индексы в IFC начинаются с 1. Треугольники со ссылкой на несуществующую вершину отбрасываются.
func writeTessellated(w *step.Writer, coords []float64, indices []uint32) int {
	n := vertexCount(coords)

	points := make([]string, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, step.Point(coords[3*i], coords[3*i+1], coords[3*i+2]))
	}
	if len(points) == 0 {
		points = append(points, step.Point(0, 0, 0))
	}

	kept := make([]uint32, 0, len(indices))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if int(a) >= n || int(b) >= n || int(c) >= n {
			continue
		}
		kept = append(kept, a, b, c)
	}

	pointList := w.Add("IFCCARTESIANPOINTLIST3D", step.List(points...))
	return w.Add("IFCTRIANGULATEDFACESET", joinArgs(
		step.Ref(pointList),
		step.Unset,
		step.Bool(IsClosed(kept)),
		indexTriples(kept),
		step.Unset,
	))
}

// indexTriples переводит 0-based индексы в список ((1,2,3),...).
func indexTriples(indices []uint32) string {
	triples := make([]string, 0, len(indices)/3)
	for t := 0; t+2 < len(indices); t += 3 {
		triples = append(triples, "("+
			strconv.FormatUint(uint64(indices[t])+1, 10)+","+
			strconv.FormatUint(uint64(indices[t+1])+1, 10)+","+
			strconv.FormatUint(uint64(indices[t+2])+1, 10)+")")
	}
	return step.List(triples...)
}

// ============================================================
// Faceted B-rep
// ============================================================

// writeBrep пишет IfcFacetedBrep: на каждый угол треугольника своя точка,
// на каждый треугольник IfcPolyLoop → IfcFaceOuterBound → IfcFace.
func writeBrep(w *step.Writer, coords []float64, indices []uint32) int {
	faces := make([]int, 0, len(indices)/3)

	for t := 0; t+2 < len(indices); t += 3 {
		var corners [3]int
		for k := 0; k < 3; k++ {
			x, y, z := vertex(coords, indices[t+k])
			corners[k] = w.Add("IFCCARTESIANPOINT", step.Point(x, y, z))
		}
		loop := w.Add("IFCPOLYLOOP", step.Refs(corners[:]))
		bound := w.Add("IFCFACEOUTERBOUND", step.Ref(loop)+","+step.Bool(true))
		faces = append(faces, w.Add("IFCFACE", step.Refs([]int{bound})))
	}

	shell := w.Add("IFCCLOSEDSHELL", step.Refs(faces))
	return w.Add("IFCFACETEDBREP", step.Ref(shell))
}

// ============================================================
// Placement
// ============================================================

// minAxisLength ограничивает длину снизу при нормализации осей.
const minAxisLength = 1e-9

// writePlacement пишет IfcLocalPlacement элемента относительно этажа.
// Без матрицы или при bakeWorld размещение единичное. Иначе из matrixWorld
// берутся перенос (столбец 3) и оси X/Y (столбцы 0/1); Y и Z меняются местами (Y-up → Z-up).
func writePlacement(w *step.Writer, relativeTo, identityAxis int, matrix []float64, bakeWorld bool) int {
	if bakeWorld || len(matrix) != 16 {
		return w.Add("IFCLOCALPLACEMENT", step.Ref(relativeTo)+","+step.Ref(identityAxis))
	}

	var m mgl64.Mat4
	copy(m[:], matrix)

	translation := swapYZ(m.Col(3).Vec3())
	refDirection := swapYZ(unit(m.Col(0).Vec3()))
	axis := swapYZ(unit(m.Col(1).Vec3()))

	location := w.Add("IFCCARTESIANPOINT", step.Point(translation[0], translation[1], translation[2]))
	axisID := w.Add("IFCDIRECTION", step.Point(axis[0], axis[1], axis[2]))
	refID := w.Add("IFCDIRECTION", step.Point(refDirection[0], refDirection[1], refDirection[2]))
	placement := w.Add("IFCAXIS2PLACEMENT3D", joinArgs(step.Ref(location), step.Ref(axisID), step.Ref(refID)))

	return w.Add("IFCLOCALPLACEMENT", step.Ref(relativeTo)+","+step.Ref(placement))
}

func unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < minAxisLength {
		l = minAxisLength
	}
	return v.Mul(1 / l)
}

func swapYZ(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[2], v[1]}
}

func joinArgs(args ...string) string {
	return strings.Join(args, ",")
}
