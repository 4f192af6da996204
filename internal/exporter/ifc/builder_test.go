package ifc

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cad-exporter/internal/exporter/models"
)

// ============================================================
// Fixtures
// ============================================================

var fixedNow = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

func strPtr(s string) *string { return &s }

func cubePositions() []float64 {
	return []float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
		0, 0, 1,
		1, 0, 1,
		1, 1, 1,
		0, 1, 1,
	}
}

func cubeIndices() []uint32 {
	return []uint32{
		0, 2, 1, 0, 3, 2, // низ
		4, 5, 6, 4, 6, 7, // верх
		0, 1, 5, 0, 5, 4,
		3, 7, 6, 3, 6, 2,
		0, 4, 7, 0, 7, 3,
		1, 2, 6, 1, 6, 5,
	}
}

func cube(uuid string) models.Element {
	return models.Element{
		UUID:           uuid,
		Name:           strPtr("Wall " + uuid),
		IFCType:        "IfcWall",
		WorldPositions: cubePositions(),
		Indices:        cubeIndices(),
	}
}

func triangle(uuid string) models.Element {
	return models.Element{
		UUID:           uuid,
		IFCType:        "IfcSlab",
		WorldPositions: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:        []uint32{0, 1, 2},
	}
}

// ============================================================
// Parsing helpers
// ============================================================

var (
	entityLine = regexp.MustCompile(`(?m)^#(\d+)=([A-Z0-9_]+)\((.*)\);$`)
	refPattern = regexp.MustCompile(`#(\d+)`)
)

type parsed struct {
	id   int
	typ  string
	args string
}

func parseEntities(t *testing.T, text string) []parsed {
	t.Helper()
	var out []parsed
	for _, m := range entityLine.FindAllStringSubmatch(text, -1) {
		id, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		out = append(out, parsed{id: id, typ: m[2], args: m[3]})
	}
	return out
}

func ofType(entities []parsed, typ string) []parsed {
	var out []parsed
	for _, e := range entities {
		if e.typ == typ {
			out = append(out, e)
		}
	}
	return out
}

func build(t *testing.T, elements []models.Element, opts Options) string {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	text, err := BuildModel("Test", elements, opts)
	require.NoError(t, err)
	return text
}

// ============================================================
// End-to-end
// ============================================================

func TestBuildModelCube(t *testing.T) {
	text := build(t, []models.Element{cube("cube-1")}, Options{})
	entities := parseEntities(t, text)

	assert.Len(t, ofType(entities, "IFCPROJECT"), 1)
	assert.Len(t, ofType(entities, "IFCWALL"), 1)

	storeys := ofType(entities, "IFCBUILDINGSTOREY")
	require.Len(t, storeys, 1)
	assert.Contains(t, storeys[0].args, "'Ground'")

	faceSets := ofType(entities, "IFCTRIANGULATEDFACESET")
	require.Len(t, faceSets, 1)
	assert.Contains(t, faceSets[0].args, ",.T.,", "cube must be reported closed")

	assert.NoError(t, Validate(text))
	assert.True(t, strings.HasPrefix(text, "ISO-10303-21;\nHEADER;\n"))
	assert.Contains(t, text, "FILE_SCHEMA(('IFC4'));")
	assert.Contains(t, text, "FILE_NAME('Test.ifc','2026-10-19T12:00:00',")
	assert.True(t, strings.HasSuffix(text, "ENDSEC;\nEND-ISO-10303-21;\n"))
}

func TestRecordIDsOnlyReferenceEarlierRecords(t *testing.T) {
	elements := []models.Element{
		cube("a"),
		triangle("b"),
		{UUID: "c", IFCType: "IfcColumn", LocalPositions: cubePositions(), Indices: cubeIndices(),
			Storey:      strPtr("Level 2"),
			MatrixWorld: []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 6, 7, 1},
			Props:       models.Props{"fire": models.Text("EI60")}},
	}

	for _, format := range []Format{FormatTessellated, FormatBrep} {
		t.Run(string(format), func(t *testing.T) {
			text := build(t, elements, Options{Format: format})
			entities := parseEntities(t, text)
			require.NotEmpty(t, entities)

			for i, e := range entities {
				assert.Equal(t, i+1, e.id, "ids must be sequential")
				for _, m := range refPattern.FindAllStringSubmatch(e.args, -1) {
					ref, err := strconv.Atoi(m[1])
					require.NoError(t, err)
					assert.Less(t, ref, e.id, "#%d %s references #%d", e.id, e.typ, ref)
				}
			}
		})
	}
}

func TestIndexTranslationIsOneBased(t *testing.T) {
	text := build(t, []models.Element{triangle("tri")}, Options{})
	entities := parseEntities(t, text)

	faceSets := ofType(entities, "IFCTRIANGULATEDFACESET")
	require.Len(t, faceSets, 1)
	assert.True(t, strings.HasSuffix(faceSets[0].args, ",.F.,((1,2,3)),$"), faceSets[0].args)

	points := ofType(entities, "IFCCARTESIANPOINTLIST3D")
	require.Len(t, points, 1)
	assert.Equal(t, "((0.,0.,0.),(1.,0.,0.),(0.,1.,0.))", points[0].args)
}

func TestOutOfRangeTrianglesDroppedFromFaceSet(t *testing.T) {
	e := triangle("bad")
	e.Indices = []uint32{0, 1, 2, 0, 1, 9}

	text := build(t, []models.Element{e}, Options{})
	faceSets := ofType(parseEntities(t, text), "IFCTRIANGULATEDFACESET")
	require.Len(t, faceSets, 1)
	assert.True(t, strings.HasSuffix(faceSets[0].args, ",.F.,((1,2,3)),$"), faceSets[0].args)
}

func TestElementWithoutGeometryStaysValid(t *testing.T) {
	e := models.Element{UUID: "empty", IFCType: "IfcWall"}

	text := build(t, []models.Element{e}, Options{})
	points := ofType(parseEntities(t, text), "IFCCARTESIANPOINTLIST3D")
	require.Len(t, points, 1)
	assert.Equal(t, "((0.,0.,0.))", points[0].args)

	brep := build(t, []models.Element{e}, Options{Format: FormatBrep})
	shells := ofType(parseEntities(t, brep), "IFCCLOSEDSHELL")
	require.Len(t, shells, 1)
	assert.Equal(t, "()", shells[0].args)
}

func TestElementsWithoutGeometryAreCounted(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	elements := []models.Element{cube("a"), {UUID: "empty", IFCType: "IfcWall"}}
	_ = build(t, elements, Options{Logger: zap.New(core)})

	entries := logs.FilterMessage("ifc elements without geometry").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].ContextMap()["count"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["elements"])
}

// ============================================================
// Spatial hierarchy
// ============================================================

func TestStoreyIsCreatedOnce(t *testing.T) {
	a := cube("a")
	a.Storey = strPtr("Level 1")
	b := triangle("b")
	b.Props = models.Props{"storey": models.Text("Level 1")}

	text := build(t, []models.Element{a, b}, Options{})
	entities := parseEntities(t, text)

	storeys := ofType(entities, "IFCBUILDINGSTOREY")
	require.Len(t, storeys, 1)
	assert.Contains(t, storeys[0].args, "'Level 1'")

	// site + building + storey + два элемента
	assert.Len(t, ofType(entities, "IFCLOCALPLACEMENT"), 5)

	contained := ofType(entities, "IFCRELCONTAINEDINSPATIALSTRUCTURE")
	require.Len(t, contained, 1)

	wall := ofType(entities, "IFCWALL")[0]
	slab := ofType(entities, "IFCSLAB")[0]
	members := "(#" + strconv.Itoa(wall.id) + ",#" + strconv.Itoa(slab.id) + ")"
	assert.Contains(t, contained[0].args, members)
	assert.True(t, strings.HasSuffix(contained[0].args, "#"+strconv.Itoa(storeys[0].id)))
}

func TestStoreysAggregatedByBuilding(t *testing.T) {
	a := cube("a")
	a.Storey = strPtr("L1")
	b := cube("b")
	b.Storey = strPtr("L2")
	c := cube("c")

	text := build(t, []models.Element{a, b, c}, Options{})
	entities := parseEntities(t, text)

	storeys := ofType(entities, "IFCBUILDINGSTOREY")
	require.Len(t, storeys, 3)
	assert.Len(t, ofType(entities, "IFCRELCONTAINEDINSPATIALSTRUCTURE"), 3)

	building := ofType(entities, "IFCBUILDING")[0]
	aggregates := ofType(entities, "IFCRELAGGREGATES")
	require.Len(t, aggregates, 3)

	want := "#" + strconv.Itoa(building.id) + ",(#" + strconv.Itoa(storeys[0].id) +
		",#" + strconv.Itoa(storeys[1].id) + ",#" + strconv.Itoa(storeys[2].id) + ")"
	assert.True(t, strings.HasSuffix(aggregates[2].args, want), aggregates[2].args)
}

// ============================================================
// Schema / format
// ============================================================

func TestIFC2X3ForcesBrep(t *testing.T) {
	for _, format := range []Format{"", FormatTessellated, FormatBrep} {
		t.Run("format="+string(format), func(t *testing.T) {
			text := build(t, []models.Element{cube("c")}, Options{Schema: SchemaIFC2X3, Format: format})

			assert.NotContains(t, text, "IFCTRIANGULATEDFACESET")
			assert.NotContains(t, text, "IFCCARTESIANPOINTLIST3D")
			assert.Contains(t, text, "=IFCFACETEDBREP(")
			assert.Contains(t, text, "FILE_SCHEMA(('IFC2X3'));")
		})
	}
}

func TestBrepShape(t *testing.T) {
	text := build(t, []models.Element{cube("c")}, Options{Format: FormatBrep})
	entities := parseEntities(t, text)

	// 36 углов треугольников + общий начальный ноль
	assert.Len(t, ofType(entities, "IFCCARTESIANPOINT"), 37)
	assert.Len(t, ofType(entities, "IFCPOLYLOOP"), 12)
	assert.Len(t, ofType(entities, "IFCFACEOUTERBOUND"), 12)
	assert.Len(t, ofType(entities, "IFCFACE"), 12)
	assert.Len(t, ofType(entities, "IFCCLOSEDSHELL"), 1)
	assert.Len(t, ofType(entities, "IFCFACETEDBREP"), 1)

	shapes := ofType(entities, "IFCSHAPEREPRESENTATION")
	require.Len(t, shapes, 1)
	assert.Contains(t, shapes[0].args, "'Body','Brep'")
}

func TestSchemaSpecificAttributes(t *testing.T) {
	ifc4 := parseEntities(t, build(t, []models.Element{cube("c")}, Options{}))
	wall := ofType(ifc4, "IFCWALL")[0]
	assert.Len(t, strings.Split(wall.args, ","), 9)
	assert.Len(t, ofType(ifc4, "IFCMATERIAL"), 1)
	assert.Equal(t, "'IfcWall',$,$", ofType(ifc4, "IFCMATERIAL")[0].args)

	ifc2x3 := parseEntities(t, build(t, []models.Element{cube("c")}, Options{Schema: SchemaIFC2X3}))
	wall = ofType(ifc2x3, "IFCWALL")[0]
	assert.Len(t, strings.Split(wall.args, ","), 8)
	assert.Equal(t, "'IfcWall'", ofType(ifc2x3, "IFCMATERIAL")[0].args)
}

func TestTrailingAttributeCounts(t *testing.T) {
	tests := []struct {
		schema  Schema
		ifcType string
		want    int
	}{
		{SchemaIFC4, "IfcElementAssembly", 10},
		{SchemaIFC4, "IfcPipeSegment", 9},
		{SchemaIFC4, "IfcDuctSegment", 9},
		{SchemaIFC4, "IfcMechanicalFastener", 11},
		{SchemaIFC4, "IfcStairFlight", 13},
		{SchemaIFC4, "IfcWindow", 13},
		{SchemaIFC4, "IfcFlowSegment", 8},
		{SchemaIFC2X3, "IfcElementAssembly", 10},
		{SchemaIFC2X3, "IfcTransportElement", 11},
		{SchemaIFC2X3, "IfcBeam", 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.schema)+"/"+tt.ifcType, func(t *testing.T) {
			e := cube("c")
			e.IFCType = tt.ifcType
			entities := parseEntities(t, build(t, []models.Element{e}, Options{Schema: tt.schema}))

			elements := ofType(entities, strings.ToUpper(tt.ifcType))
			require.Len(t, elements, 1)
			assert.Len(t, strings.Split(elements[0].args, ","), tt.want)
		})
	}

	assert.Equal(t, []string{"$", ".NOTDEFINED."}, trailingFor(SchemaIFC2X3, "IFCELEMENTASSEMBLY"))
}

func TestCompatRootContextForBody(t *testing.T) {
	text := build(t, []models.Element{cube("c")}, Options{Compat: Compat{UseRootContextForBody: true}})
	entities := parseEntities(t, text)

	assert.Empty(t, ofType(entities, "IFCGEOMETRICREPRESENTATIONSUBCONTEXT"))
	root := ofType(entities, "IFCGEOMETRICREPRESENTATIONCONTEXT")[0]
	shape := ofType(entities, "IFCSHAPEREPRESENTATION")[0]
	assert.True(t, strings.HasPrefix(shape.args, "#"+strconv.Itoa(root.id)+","))

	text = build(t, []models.Element{cube("c")}, Options{})
	entities = parseEntities(t, text)
	sub := ofType(entities, "IFCGEOMETRICREPRESENTATIONSUBCONTEXT")
	require.Len(t, sub, 1)
	shape = ofType(entities, "IFCSHAPEREPRESENTATION")[0]
	assert.True(t, strings.HasPrefix(shape.args, "#"+strconv.Itoa(sub[0].id)+","))
}

// ============================================================
// Identity, types, properties
// ============================================================

func TestElementIdentifiersAreDeterministic(t *testing.T) {
	e := cube("stable-uuid")
	e.Props = models.Props{"height": models.Number(3)}

	first := parseEntities(t, build(t, []models.Element{e}, Options{}))
	second := parseEntities(t, build(t, []models.Element{e}, Options{}))

	assert.Equal(t, ofType(first, "IFCWALL")[0].args, ofType(second, "IFCWALL")[0].args)
	assert.Equal(t,
		strings.SplitN(ofType(first, "IFCPROPERTYSET")[0].args, ",", 2)[0],
		strings.SplitN(ofType(second, "IFCPROPERTYSET")[0].args, ",", 2)[0])

	// проект получает новый идентификатор при каждой выгрузке
	assert.NotEqual(t, ofType(first, "IFCPROJECT")[0].args, ofType(second, "IFCPROJECT")[0].args)
}

func TestInvalidTypeBecomesProxy(t *testing.T) {
	e := cube("x")
	e.IFCType = "wall; DROP"

	entities := parseEntities(t, build(t, []models.Element{e}, Options{}))
	assert.Len(t, ofType(entities, "IFCBUILDINGELEMENTPROXY"), 1)
	assert.Equal(t, "'IfcBuildingElementProxy',$,$", ofType(entities, "IFCMATERIAL")[0].args)
}

func TestPropertySet(t *testing.T) {
	e := cube("p")
	e.Props = models.Props{
		"width":       models.Number(0.25),
		"loadBearing": models.Bool(true),
		"comment":     models.Text("it's fine"),
		"removed":     models.Null{},
		"dims":        models.JSON(`{"a":1}`),
	}

	entities := parseEntities(t, build(t, []models.Element{e}, Options{}))
	values := ofType(entities, "IFCPROPERTYSINGLEVALUE")
	require.Len(t, values, 5)

	// ключи отсортированы
	assert.Equal(t, "'comment',$,IFCTEXT('it''s fine'),$", values[0].args)
	assert.Equal(t, `'dims',$,IFCTEXT('{"a":1}'),$`, values[1].args)
	assert.Equal(t, "'loadBearing',$,IFCBOOLEAN(.T.),$", values[2].args)
	assert.Equal(t, "'removed',$,$,$", values[3].args)
	assert.Equal(t, "'width',$,IFCREAL(0.25),$", values[4].args)

	psets := ofType(entities, "IFCPROPERTYSET")
	require.Len(t, psets, 1)
	assert.Contains(t, psets[0].args, "'"+PropertySetName+"'")

	rels := ofType(entities, "IFCRELDEFINESBYPROPERTIES")
	require.Len(t, rels, 1)
	wall := ofType(entities, "IFCWALL")[0]
	assert.True(t, strings.HasSuffix(rels[0].args, "(#"+strconv.Itoa(wall.id)+"),#"+strconv.Itoa(psets[0].id)))
}

func TestNoPropertySetWithoutProps(t *testing.T) {
	entities := parseEntities(t, build(t, []models.Element{cube("np")}, Options{}))
	assert.Empty(t, ofType(entities, "IFCPROPERTYSET"))
	assert.Len(t, ofType(entities, "IFCRELASSOCIATESMATERIAL"), 1)
}

// ============================================================
// Placement
// ============================================================

func TestPlacementFromMatrix(t *testing.T) {
	e := cube("m")
	e.LocalPositions = cubePositions()
	// масштаб 2 по X и Y, перенос (1,2,3)
	e.MatrixWorld = []float64{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 1, 0,
		1, 2, 3, 1,
	}

	entities := parseEntities(t, build(t, []models.Element{e}, Options{}))
	axes := ofType(entities, "IFCAXIS2PLACEMENT3D")
	require.Len(t, axes, 2)

	byID := make(map[int]parsed, len(entities))
	for _, p := range entities {
		byID[p.id] = p
	}
	refs := refPattern.FindAllStringSubmatch(axes[1].args, -1)
	require.Len(t, refs, 3)
	get := func(m []string) parsed {
		id, _ := strconv.Atoi(m[1])
		return byID[id]
	}

	assert.Equal(t, "(1.,3.,2.)", get(refs[0]).args) // Y и Z поменяны местами
	assert.Equal(t, "(0.,0.,1.)", get(refs[1]).args) // ось Y → Z, единичная длина
	assert.Equal(t, "(1.,0.,0.)", get(refs[2]).args)
}

func TestPlacementIgnoresMatrixWhenBaked(t *testing.T) {
	e := cube("m")
	e.MatrixWorld = []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 9, 9, 9, 1}

	entities := parseEntities(t, build(t, []models.Element{e}, Options{BakeWorld: true}))
	assert.Len(t, ofType(entities, "IFCAXIS2PLACEMENT3D"), 1)
	assert.NotContains(t, strings.Join(argsOf(entities), "\n"), "9.")
}

func TestMatrixNotAppliedToWorldCoordinates(t *testing.T) {
	e := models.Element{
		UUID:           "w",
		IFCType:        "IfcSlab",
		WorldPositions: []float64{10, 0, 0, 11, 0, 0, 10, 1, 0},
		Indices:        []uint32{0, 1, 2},
		MatrixWorld:    []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 10, 0, 0, 1},
	}

	entities := parseEntities(t, build(t, []models.Element{e}, Options{}))

	axes := ofType(entities, "IFCAXIS2PLACEMENT3D")
	require.Len(t, axes, 1, "world coordinates already include matrixWorld")

	slab := ofType(entities, "IFCSLAB")
	require.Len(t, slab, 1)
	placements := ofType(entities, "IFCLOCALPLACEMENT")
	last := placements[len(placements)-1]
	assert.True(t, strings.HasSuffix(last.args, ",#"+strconv.Itoa(axes[0].id)), last.args)

	points := ofType(entities, "IFCCARTESIANPOINTLIST3D")
	require.Len(t, points, 1)
	assert.Equal(t, "((10.,0.,0.),(11.,0.,0.),(10.,1.,0.))", points[0].args)
	assert.NotContains(t, strings.Join(argsOf(entities), "\n"), "20.")
}

func TestDegenerateMatrixDoesNotBreakOutput(t *testing.T) {
	e := cube("z")
	e.LocalPositions = cubePositions()
	e.MatrixWorld = make([]float64, 16)

	text := build(t, []models.Element{e}, Options{})
	assert.Contains(t, text, "IFCDIRECTION((0.,0.,0.))")
	assert.NoError(t, Validate(text))
}

func argsOf(entities []parsed) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.args
	}
	return out
}

// ============================================================
// Validation
// ============================================================

func TestEmptyModelFailsValidation(t *testing.T) {
	_, err := BuildModel("Empty", nil, Options{Now: fixedNow})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, CheckShapeRepresentation, verr.Check)
	assert.Equal(t, []string{CheckShapeRepresentation}, FailedChecks(err))
}

func TestValidateReportsEveryFailedCheck(t *testing.T) {
	err := Validate("not a step file")
	assert.Equal(t, []string{
		CheckFileDescription,
		CheckFileName,
		CheckFileSchema,
		CheckProject,
		CheckShapeRepresentation,
		CheckEntity,
		CheckEndMarker,
	}, FailedChecks(err))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Test.ifc", FileName("Test"))
	assert.Equal(t, "Project.ifc", FileName("  "))
	assert.Equal(t, "a_b_c.ifc", FileName("a/b:c"))
}
