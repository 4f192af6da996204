package ifc

import (
	"sort"

	"cad-exporter/internal/exporter/guid"
	"cad-exporter/internal/exporter/models"
	"cad-exporter/internal/exporter/step"
)

// ============================================================
// Property sets
// ============================================================

// PropertySetName используется как имя набора свойств с props элемента.
const PropertySetName = "Pset_ElementProperties"

// propertyValue переводит Scalar в значение IfcPropertySingleValue.
func propertyValue(v models.Scalar) string {
	switch val := v.(type) {
	case models.Number:
		return step.Typed("IFCREAL", step.Real(float64(val)))
	case models.Bool:
		return step.Typed("IFCBOOLEAN", step.Bool(bool(val)))
	case models.Text:
		return step.Typed("IFCTEXT", step.String(string(val)))
	case models.JSON:
		return step.Typed("IFCTEXT", step.String(string(val)))
	default:
		return step.Unset
	}
}

// writeProperties пишет IfcPropertySet со всеми props и связь с элементом.
// Ключи сортируются, чтобы выгрузка была воспроизводимой.
func (b *builder) writeProperties(elementID int, e models.Element) {
	if len(e.Props) == 0 {
		return
	}

	keys := make([]string, 0, len(e.Props))
	for k := range e.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]int, 0, len(keys))
	for _, k := range keys {
		props = append(props, b.w.Add("IFCPROPERTYSINGLEVALUE", joinArgs(
			step.String(k),
			step.Unset,
			propertyValue(e.Props[k]),
			step.Unset,
		)))
	}

	pset := b.w.Add("IFCPROPERTYSET", joinArgs(
		step.String(b.elementGUID(e, ":pset")),
		step.Ref(b.ownerHistory),
		step.String(PropertySetName),
		step.Unset,
		step.Refs(props),
	))

	b.w.Add("IFCRELDEFINESBYPROPERTIES", joinArgs(
		step.String(guid.New()),
		step.Ref(b.ownerHistory),
		step.Unset,
		step.Unset,
		step.Refs([]int{elementID}),
		step.Ref(pset),
	))
}

// ============================================================
// Materials
// ============================================================

// writeMaterial создаёт материал по имени типа элемента. Материалы не переиспользуются:
// на каждый элемент свой IfcMaterial.
func (b *builder) writeMaterial(elementID int, entityType string) {
	args := step.String(entityType)
	if b.opts.Schema == SchemaIFC4 {
		args = joinArgs(args, step.Unset, step.Unset)
	}
	material := b.w.Add("IFCMATERIAL", args)

	b.w.Add("IFCRELASSOCIATESMATERIAL", joinArgs(
		step.String(guid.New()),
		step.Ref(b.ownerHistory),
		step.Unset,
		step.Unset,
		step.Refs([]int{elementID}),
		step.Ref(material),
	))
}
