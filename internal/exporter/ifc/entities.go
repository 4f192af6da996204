package ifc

// ============================================================
// Element attributes
// ============================================================

var (
	// только PredefinedType
	predefined = []string{"$"}
	// IfcDoor/IfcWindow: OverallHeight, OverallWidth, PredefinedType, OperationType, UserDefinedOperationType
	openingFill = []string{"$", "$", "$", "$", "$"}
)

// trailingAttributes перечисляет атрибуты конкретных типов после восьми общих атрибутов IfcElement.
// Для типов вне таблицы пишутся только общие атрибуты.
var trailingAttributes = map[Schema]map[string][]string{
	SchemaIFC4: {
		// строительные элементы
		"IFCBEAM":                 predefined,
		"IFCBEAMSTANDARDCASE":     predefined,
		"IFCBUILDINGELEMENTPART":  predefined,
		"IFCBUILDINGELEMENTPROXY": predefined,
		"IFCCHIMNEY":              predefined,
		"IFCCOLUMN":               predefined,
		"IFCCOLUMNSTANDARDCASE":   predefined,
		"IFCCOVERING":             predefined,
		"IFCCURTAINWALL":          predefined,
		"IFCDOOR":                 openingFill,
		"IFCDOORSTANDARDCASE":     openingFill,
		"IFCFOOTING":              predefined,
		"IFCMEMBER":               predefined,
		"IFCMEMBERSTANDARDCASE":   predefined,
		"IFCPILE":                 {"$", "$"},
		"IFCPLATE":                predefined,
		"IFCPLATESTANDARDCASE":    predefined,
		"IFCRAILING":              predefined,
		"IFCRAMP":                 predefined,
		"IFCRAMPFLIGHT":           predefined,
		"IFCROOF":                 predefined,
		"IFCSHADINGDEVICE":        predefined,
		"IFCSLAB":                 predefined,
		"IFCSLABELEMENTEDCASE":    predefined,
		"IFCSLABSTANDARDCASE":     predefined,
		"IFCSTAIR":                predefined,
		"IFCSTAIRFLIGHT":          {"$", "$", "$", "$", "$"},
		"IFCWALL":                 predefined,
		"IFCWALLELEMENTEDCASE":    predefined,
		"IFCWALLSTANDARDCASE":     predefined,
		"IFCWINDOW":               openingFill,
		"IFCWINDOWSTANDARDCASE":   openingFill,

		// сборки и крепёж
		"IFCELEMENTASSEMBLY":    {"$", "$"},
		"IFCDISCRETEACCESSORY":  predefined,
		"IFCFASTENER":           predefined,
		"IFCMECHANICALFASTENER": {"$", "$", "$"},

		// мебель и прочее
		"IFCFURNITURE":              predefined,
		"IFCSYSTEMFURNITUREELEMENT": predefined,
		"IFCGEOGRAPHICELEMENT":      predefined,
		"IFCTRANSPORTELEMENT":       predefined,
		"IFCOPENINGELEMENT":         predefined,

		// инженерные сети: сегменты и фитинги
		"IFCCABLECARRIERFITTING": predefined,
		"IFCCABLECARRIERSEGMENT": predefined,
		"IFCCABLEFITTING":        predefined,
		"IFCCABLESEGMENT":        predefined,
		"IFCDUCTFITTING":         predefined,
		"IFCDUCTSEGMENT":         predefined,
		"IFCJUNCTIONBOX":         predefined,
		"IFCPIPEFITTING":         predefined,
		"IFCPIPESEGMENT":         predefined,

		// оборудование и оконечные устройства
		"IFCAIRTERMINAL":             predefined,
		"IFCBOILER":                  predefined,
		"IFCDAMPER":                  predefined,
		"IFCELECTRICAPPLIANCE":       predefined,
		"IFCFAN":                     predefined,
		"IFCFIRESUPPRESSIONTERMINAL": predefined,
		"IFCLAMP":                    predefined,
		"IFCLIGHTFIXTURE":            predefined,
		"IFCOUTLET":                  predefined,
		"IFCPUMP":                    predefined,
		"IFCSANITARYTERMINAL":        predefined,
		"IFCSPACEHEATER":             predefined,
		"IFCSWITCHINGDEVICE":         predefined,
		"IFCTANK":                    predefined,
		"IFCVALVE":                   predefined,
		"IFCWASTETERMINAL":           predefined,

		// управление
		"IFCACTUATOR":   predefined,
		"IFCALARM":      predefined,
		"IFCCONTROLLER": predefined,
		"IFCSENSOR":     predefined,
	},
	SchemaIFC2X3: {
		"IFCBUILDINGELEMENTPROXY": {"$"},
		"IFCCOVERING":             {"$"},
		"IFCDOOR":                 {"$", "$"},
		"IFCELEMENTASSEMBLY":      {"$", ".NOTDEFINED."},
		"IFCFOOTING":              {".NOTDEFINED."},
		"IFCMECHANICALFASTENER":   {"$", "$"},
		"IFCPILE":                 {".NOTDEFINED.", "$"},
		"IFCRAILING":              {"$"},
		"IFCRAMP":                 {".NOTDEFINED."},
		"IFCROOF":                 {".NOTDEFINED."},
		"IFCSLAB":                 {"$"},
		"IFCSTAIR":                {".NOTDEFINED."},
		"IFCTRANSPORTELEMENT":     {"$", "$", "$"},
		"IFCWINDOW":               {"$", "$"},
	},
}

func trailingFor(schema Schema, entity string) []string {
	return trailingAttributes[schema][entity]
}
