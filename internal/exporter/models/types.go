package models

import (
	"regexp"
	"strings"
)

// ============================================================
// Element
// ============================================================

const (
	// DefaultStorey получают элементы без явного этажа.
	DefaultStorey = "Ground"
	// ProxyType подставляется вместо некорректного IFC-типа.
	ProxyType = "IfcBuildingElementProxy"
	// DefaultProjectName подставляется, если имя проекта пустое.
	DefaultProjectName = "Project"
)

var ifcTypePattern = regexp.MustCompile(`^Ifc[A-Za-z0-9_]+$`)

// Element описывает тесселированный строительный элемент, пришедший от клиента.
type Element struct {
	UUID           string    `json:"uuid"`
	Name           *string   `json:"name,omitempty"`
	IFCType        string    `json:"ifcType"`
	Props          Props     `json:"props,omitempty"`
	WorldPositions []float64 `json:"worldPositions,omitempty"`
	Positions      []float64 `json:"positions,omitempty"` // старое имя worldPositions
	LocalPositions []float64 `json:"localPositions,omitempty"`
	Indices        []uint32  `json:"indices"`
	Storey         *string   `json:"storey,omitempty"`
	MatrixWorld    []float64 `json:"matrixWorld,omitempty"`
}

// World возвращает мировые координаты (worldPositions ?? positions).
func (e Element) World() []float64 {
	if len(e.WorldPositions) > 0 {
		return e.WorldPositions
	}
	return e.Positions
}

// Geometry выбирает массив координат для записи.
// При bakeWorld предпочитаются мировые координаты, иначе локальные.
// local сообщает, что возвращены localPositions: только к ним применима matrixWorld.
func (e Element) Geometry(bakeWorld bool) (coords []float64, local bool) {
	world := e.World()
	if bakeWorld {
		if len(world) > 0 {
			return world, false
		}
		return e.LocalPositions, len(e.LocalPositions) > 0
	}
	if len(e.LocalPositions) > 0 {
		return e.LocalPositions, true
	}
	return world, false
}

// HasGeometry сообщает, есть ли у элемента хотя бы один массив координат.
func (e Element) HasGeometry() bool {
	return len(e.World()) > 0 || len(e.LocalPositions) > 0
}

// StoreyName: props.storey → storey → "Ground".
func (e Element) StoreyName() string {
	if v, ok := e.Props["storey"]; ok {
		if s, ok := v.(Text); ok && s != "" {
			return string(s)
		}
	}
	if e.Storey != nil && *e.Storey != "" {
		return *e.Storey
	}
	return DefaultStorey
}

// EntityType возвращает IFC-тип элемента или ProxyType, если имя некорректно.
func (e Element) EntityType() string {
	if ValidIFCType(e.IFCType) {
		return e.IFCType
	}
	return ProxyType
}

// ValidIFCType проверяет имя типа по шаблону Ifc[A-Za-z0-9_]+.
func ValidIFCType(name string) bool {
	return ifcTypePattern.MatchString(name)
}

// ============================================================
// Export settings
// ============================================================

// CompatSettings хранит флаги совместимости со старыми просмотрщиками.
type CompatSettings struct {
	UseRootContextForBody *bool `json:"useRootContextForBody,omitempty" yaml:"use_root_context_for_body"`
}

// IFCSettings задаёт параметры STEP/IFC выгрузки из запроса или конфига.
type IFCSettings struct {
	Schema    string         `json:"schema,omitempty" yaml:"schema"`
	Format    string         `json:"format,omitempty" yaml:"format"`
	BakeWorld *bool          `json:"bakeWorld,omitempty" yaml:"bake_world"`
	Compat    CompatSettings `json:"compat,omitempty" yaml:"compat"`
}

// DXFSettings задаёт параметры DXF выгрузки из запроса или конфига.
type DXFSettings struct {
	Version  string  `json:"dxfVersion,omitempty" yaml:"version"`
	Scale    float64 `json:"scale,omitempty" yaml:"scale"`
	InsUnits *int    `json:"insunits,omitempty" yaml:"insunits"`
}

// Merge накладывает заданные в override поля поверх s.
func (s IFCSettings) Merge(override IFCSettings) IFCSettings {
	if override.Schema != "" {
		s.Schema = override.Schema
	}
	if override.Format != "" {
		s.Format = override.Format
	}
	if override.BakeWorld != nil {
		s.BakeWorld = override.BakeWorld
	}
	if override.Compat.UseRootContextForBody != nil {
		s.Compat.UseRootContextForBody = override.Compat.UseRootContextForBody
	}
	return s
}

// Merge накладывает заданные в override поля поверх s.
func (s DXFSettings) Merge(override DXFSettings) DXFSettings {
	if override.Version != "" {
		s.Version = override.Version
	}
	if override.Scale != 0 {
		s.Scale = override.Scale
	}
	if override.InsUnits != nil {
		s.InsUnits = override.InsUnits
	}
	return s
}

// ProjectName возвращает имя проекта или DefaultProjectName.
func ProjectName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultProjectName
	}
	return name
}

// FileBase возвращает имя проекта без символов, недопустимых в именах файлов.
func FileBase(projectName string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, ProjectName(projectName))
}

// ============================================================
// Export request
// ============================================================

// ExportRequest описывает тело запроса сервиса экспорта и входной файл CLI.
type ExportRequest struct {
	ProjectName string      `json:"projectName"`
	Elements    []Element   `json:"elements"`
	IFC         IFCSettings `json:"ifc,omitempty"`
	DXF         DXFSettings `json:"dxf,omitempty"`
}
