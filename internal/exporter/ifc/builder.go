// Package ifc собирает модель ISO-10303-21 (IFC4 / IFC2X3) из тесселированных элементов.
package ifc

import (
	"strings"

	"go.uber.org/zap"

	"cad-exporter/internal/exporter/guid"
	"cad-exporter/internal/exporter/models"
	"cad-exporter/internal/exporter/step"
)

// ============================================================
// Builder
// ============================================================

type builder struct {
	w    *step.Writer
	opts Options

	units        int
	axis         int
	worldContext int
	bodyContext  int
	ownerHistory int

	project           int
	site              int
	building          int
	buildingPlacement int

	storeys *hierarchy

	// без координат: такие элементы пишутся с вырожденной геометрией
	withoutGeometry int
}

// BuildModel собирает полный STEP-документ. Единственная возможная ошибка:
// *ValidationError (или несколько через multierr), если документ не прошёл проверку.
func BuildModel(projectName string, elements []models.Element, opts Options) (string, error) {
	opts = opts.normalized()
	projectName = models.ProjectName(projectName)

	b := &builder{
		w:    step.NewWriter(),
		opts: opts,
	}

	b.writeUnitsAndContext()
	b.writeOwnerHistory()
	b.writeSpatialRoot(projectName)

	for _, e := range elements {
		b.writeElement(e)
	}

	b.storeys.relate(b.project, b.site, b.building)

	if b.withoutGeometry > 0 {
		opts.Logger.Debug("ifc elements without geometry",
			zap.Int("count", b.withoutGeometry),
			zap.Int("elements", len(elements)))
	}

	text := b.document(projectName)
	if err := Validate(text); err != nil {
		opts.Logger.Warn("ifc validation failed",
			zap.Strings("checks", FailedChecks(err)),
			zap.Int("elements", len(elements)))
		return "", err
	}

	opts.Logger.Debug("ifc model built",
		zap.String("schema", string(opts.Schema)),
		zap.String("format", string(opts.Format)),
		zap.Int("elements", len(elements)),
		zap.Int("storeys", len(b.storeys.order)),
		zap.Int("entities", b.w.Len()))

	return text, nil
}

// ============================================================
// Stages
// ============================================================

func (b *builder) writeUnitsAndContext() {
	units := []int{
		b.w.Add("IFCSIUNIT", joinArgs(step.Derived, step.Enum("LENGTHUNIT"), step.Unset, step.Enum("METRE"))),
		b.w.Add("IFCSIUNIT", joinArgs(step.Derived, step.Enum("AREAUNIT"), step.Unset, step.Enum("SQUARE_METRE"))),
		b.w.Add("IFCSIUNIT", joinArgs(step.Derived, step.Enum("VOLUMEUNIT"), step.Unset, step.Enum("CUBIC_METRE"))),
		b.w.Add("IFCSIUNIT", joinArgs(step.Derived, step.Enum("PLANEANGLEUNIT"), step.Unset, step.Enum("RADIAN"))),
	}
	b.units = b.w.Add("IFCUNITASSIGNMENT", step.Refs(units))

	origin := b.w.Add("IFCCARTESIANPOINT", step.Point(0, 0, 0))
	zAxis := b.w.Add("IFCDIRECTION", step.Point(0, 0, 1))
	xAxis := b.w.Add("IFCDIRECTION", step.Point(1, 0, 0))
	b.axis = b.w.Add("IFCAXIS2PLACEMENT3D", joinArgs(step.Ref(origin), step.Ref(zAxis), step.Ref(xAxis)))

	b.worldContext = b.w.Add("IFCGEOMETRICREPRESENTATIONCONTEXT", joinArgs(
		step.Unset,
		step.String("Model"),
		step.Int(3),
		step.Real(1e-5),
		step.Ref(b.axis),
		step.Unset,
	))

	if b.opts.Compat.UseRootContextForBody {
		b.bodyContext = b.worldContext
		return
	}
	b.bodyContext = b.w.Add("IFCGEOMETRICREPRESENTATIONSUBCONTEXT", joinArgs(
		step.String("Body"),
		step.String("Model"),
		step.Derived,
		step.Derived,
		step.Derived,
		step.Derived,
		step.Ref(b.worldContext),
		step.Unset,
		step.Enum("MODEL_VIEW"),
		step.Unset,
	))
}

func (b *builder) writeOwnerHistory() {
	app := b.opts.Application

	person := b.w.Add("IFCPERSON", joinArgs(step.Unset, step.Unset, step.String(""), step.Unset, step.Unset, step.Unset, step.Unset, step.Unset))
	org := b.w.Add("IFCORGANIZATION", joinArgs(step.Unset, step.String(app), step.Unset, step.Unset, step.Unset))
	personOrg := b.w.Add("IFCPERSONANDORGANIZATION", joinArgs(step.Ref(person), step.Ref(org), step.Unset))
	application := b.w.Add("IFCAPPLICATION", joinArgs(step.Ref(org), step.String("1.0"), step.String(app), step.String(app)))

	b.ownerHistory = b.w.Add("IFCOWNERHISTORY", joinArgs(
		step.Ref(personOrg),
		step.Ref(application),
		step.Unset,
		step.Enum("ADDED"),
		step.Unset,
		step.Unset,
		step.Unset,
		step.Int(int(b.opts.Now().Unix())),
	))
}

func (b *builder) writeSpatialRoot(projectName string) {
	b.project = b.w.Add("IFCPROJECT", joinArgs(
		step.String(guid.New()),
		step.Ref(b.ownerHistory),
		step.String(projectName),
		step.Unset,
		step.Unset,
		step.Unset,
		step.Unset,
		step.Refs([]int{b.worldContext}),
		step.Ref(b.units),
	))

	sitePlacement := b.w.Add("IFCLOCALPLACEMENT", joinArgs(step.Unset, step.Ref(b.axis)))
	b.site = b.w.Add("IFCSITE", joinArgs(
		step.String(guid.New()),
		step.Ref(b.ownerHistory),
		step.String("Site"),
		step.Unset,
		step.Unset,
		step.Ref(sitePlacement),
		step.Unset,
		step.Unset,
		step.Enum("ELEMENT"),
		step.Unset,
		step.Unset,
		step.Unset,
		step.Unset,
		step.Unset,
	))

	b.buildingPlacement = b.w.Add("IFCLOCALPLACEMENT", joinArgs(step.Ref(sitePlacement), step.Ref(b.axis)))
	b.building = b.w.Add("IFCBUILDING", joinArgs(
		step.String(guid.New()),
		step.Ref(b.ownerHistory),
		step.String("Building"),
		step.Unset,
		step.Unset,
		step.Ref(b.buildingPlacement),
		step.Unset,
		step.Unset,
		step.Enum("ELEMENT"),
		step.Unset,
		step.Unset,
		step.Unset,
	))

	b.storeys = newHierarchy(b.w, b.ownerHistory, b.buildingPlacement, b.axis)
}

// writeElement пишет размещение, геометрию, сам элемент, свойства и материал.
func (b *builder) writeElement(e models.Element) {
	storey := b.storeys.storey(e.StoreyName())

	if !e.HasGeometry() {
		b.withoutGeometry++
	}

	// мировые координаты уже содержат matrixWorld
	coords, local := e.Geometry(b.opts.BakeWorld)
	matrix := e.MatrixWorld
	if !local {
		matrix = nil
	}
	placement := writePlacement(b.w, storey.placementID, b.axis, matrix, b.opts.BakeWorld)

	var item int
	var repType string
	switch b.opts.Format {
	case FormatBrep:
		item = writeBrep(b.w, coords, e.Indices)
		repType = "Brep"
	default:
		item = writeTessellated(b.w, coords, e.Indices)
		repType = "Tessellation"
	}

	shape := b.w.Add("IFCSHAPEREPRESENTATION", joinArgs(
		step.Ref(b.bodyContext),
		step.String("Body"),
		step.String(repType),
		step.Refs([]int{item}),
	))
	definition := b.w.Add("IFCPRODUCTDEFINITIONSHAPE", joinArgs(step.Unset, step.Unset, step.Refs([]int{shape})))

	entityType := e.EntityType()
	entity := strings.ToUpper(entityType)

	name := step.Unset
	if e.Name != nil {
		name = step.String(*e.Name)
	}
	tag := step.Unset
	if e.UUID != "" {
		tag = step.String(e.UUID)
	}

	args := []string{
		step.String(b.elementGUID(e, "")),
		step.Ref(b.ownerHistory),
		name,
		step.Unset,
		step.Unset,
		step.Ref(placement),
		step.Ref(definition),
		tag,
	}
	args = append(args, trailingFor(b.opts.Schema, entity)...)

	elementID := b.w.Add(entity, joinArgs(args...))
	storey.members = append(storey.members, elementID)

	b.writeProperties(elementID, e)
	b.writeMaterial(elementID, entityType)
}

// elementGUID выводит GlobalId из uuid элемента; без uuid id случайный.
func (b *builder) elementGUID(e models.Element, suffix string) string {
	if e.UUID == "" {
		return guid.New()
	}
	return guid.Deterministic(e.UUID + suffix)
}

// ============================================================
// Document
// ============================================================

func (b *builder) document(projectName string) string {
	app := b.opts.Application
	timestamp := b.opts.Now().UTC().Format("2006-01-02T15:04:05")

	var out strings.Builder
	out.WriteString("ISO-10303-21;\n")
	out.WriteString("HEADER;\n")
	out.WriteString("FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');\n")
	out.WriteString("FILE_NAME(" + joinArgs(
		step.String(FileName(projectName)),
		step.String(timestamp),
		"("+step.String("")+")",
		"("+step.String("")+")",
		step.String(app),
		step.String(app),
		step.String(""),
	) + ");\n")
	out.WriteString("FILE_SCHEMA((" + step.String(string(b.opts.Schema)) + "));\n")
	out.WriteString("ENDSEC;\n")
	out.WriteString("DATA;\n")
	if b.w.Len() > 0 {
		out.WriteString(b.w.Text())
		out.WriteString("\n")
	}
	out.WriteString("ENDSEC;\n")
	out.WriteString("END-ISO-10303-21;\n")
	return out.String()
}

// FileName возвращает имя .ifc файла для проекта.
func FileName(projectName string) string {
	return models.FileBase(projectName) + ".ifc"
}
