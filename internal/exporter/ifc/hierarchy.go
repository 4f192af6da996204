package ifc

import (
	"cad-exporter/internal/exporter/guid"
	"cad-exporter/internal/exporter/step"
)

// ============================================================
// Spatial hierarchy
// ============================================================

// storeyNode хранит этаж и элементы, которые в нём лежат.
type storeyNode struct {
	name        string
	recordID    int
	placementID int
	members     []int
}

// hierarchy создаёт этажи по мере появления имён.
// Project → Site → Building → Storey; размещение каждого этажа совпадает
// с началом координат здания, отметки уровней не учитываются.
type hierarchy struct {
	w                 *step.Writer
	ownerHistory      int
	buildingPlacement int
	axis              int

	nodes map[string]*storeyNode
	order []*storeyNode
}

func newHierarchy(w *step.Writer, ownerHistory, buildingPlacement, axis int) *hierarchy {
	return &hierarchy{
		w:                 w,
		ownerHistory:      ownerHistory,
		buildingPlacement: buildingPlacement,
		axis:              axis,
		nodes:             make(map[string]*storeyNode),
	}
}

// storey возвращает существующий этаж или создаёт его.
func (h *hierarchy) storey(name string) *storeyNode {
	if node, ok := h.nodes[name]; ok {
		return node
	}

	placement := h.w.Add("IFCLOCALPLACEMENT", step.Ref(h.buildingPlacement)+","+step.Ref(h.axis))
	record := h.w.Add("IFCBUILDINGSTOREY", joinArgs(
		step.String(guid.New()),
		step.Ref(h.ownerHistory),
		step.String(name),
		step.Unset,
		step.Unset,
		step.Ref(placement),
		step.Unset,
		step.Unset,
		step.Enum("ELEMENT"),
		step.Real(0),
	))

	node := &storeyNode{name: name, recordID: record, placementID: placement}
	h.nodes[name] = node
	h.order = append(h.order, node)
	return node
}

// relate пишет связи агрегации и включения после обработки всех элементов.
func (h *hierarchy) relate(project, site, building int) {
	h.aggregate(project, []int{site})
	h.aggregate(site, []int{building})

	if len(h.order) == 0 {
		return
	}

	storeys := make([]int, len(h.order))
	for i, node := range h.order {
		storeys[i] = node.recordID
	}
	h.aggregate(building, storeys)

	for _, node := range h.order {
		if len(node.members) == 0 {
			continue
		}
		h.w.Add("IFCRELCONTAINEDINSPATIALSTRUCTURE", joinArgs(
			step.String(guid.New()),
			step.Ref(h.ownerHistory),
			step.Unset,
			step.Unset,
			step.Refs(node.members),
			step.Ref(node.recordID),
		))
	}
}

func (h *hierarchy) aggregate(parent int, children []int) {
	h.w.Add("IFCRELAGGREGATES", joinArgs(
		step.String(guid.New()),
		step.Ref(h.ownerHistory),
		step.Unset,
		step.Unset,
		step.Ref(parent),
		step.Refs(children),
	))
}
