package ifc

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"cad-exporter/internal/exporter/models"
)

// ============================================================
// Options
// ============================================================

// Schema задаёт версию схемы IFC в FILE_SCHEMA.
type Schema string

const (
	SchemaIFC4   Schema = "IFC4"
	SchemaIFC2X3 Schema = "IFC2X3"
)

// Format задаёт способ кодирования геометрии.
type Format string

const (
	// FormatTessellated пишет IfcTriangulatedFaceSet (только IFC4).
	FormatTessellated Format = "tfs"
	// FormatBrep пишет IfcFacetedBrep из отдельных граней.
	FormatBrep Format = "brep"
)

// DefaultApplication пишется в заголовок и IfcApplication.
const DefaultApplication = "cad-exporter"

// Compat хранит флаги совместимости.
type Compat struct {
	// UseRootContextForBody привязывает геометрию к корневому контексту вместо подконтекста Body.
	UseRootContextForBody bool
}

type Options struct {
	Schema      Schema
	Format      Format
	BakeWorld   bool
	Compat      Compat
	Application string
	Now         func() time.Time
	Logger      *zap.Logger
}

// FromSettings собирает Options из настроек запроса/конфига.
func FromSettings(s models.IFCSettings) Options {
	opts := Options{
		Schema: Schema(strings.ToUpper(strings.TrimSpace(s.Schema))),
		Format: Format(strings.ToLower(strings.TrimSpace(s.Format))),
	}
	if s.BakeWorld != nil {
		opts.BakeWorld = *s.BakeWorld
	}
	if s.Compat.UseRootContextForBody != nil {
		opts.Compat.UseRootContextForBody = *s.Compat.UseRootContextForBody
	}
	return opts
}

// normalized заполняет значения по умолчанию. IFC2X3 всегда пишется как brep:
// IfcTriangulatedFaceSet в этой схеме нет.
func (o Options) normalized() Options {
	switch Schema(strings.ToUpper(string(o.Schema))) {
	case SchemaIFC2X3:
		o.Schema = SchemaIFC2X3
	default:
		o.Schema = SchemaIFC4
	}

	switch Format(strings.ToLower(string(o.Format))) {
	case FormatBrep:
		o.Format = FormatBrep
	default:
		o.Format = FormatTessellated
	}
	if o.Schema == SchemaIFC2X3 {
		o.Format = FormatBrep
	}

	if o.Application == "" {
		o.Application = DefaultApplication
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
