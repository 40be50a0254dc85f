package domain

// IfcComponent is a typed element of an IFC building model.
type IfcComponent struct {
	// GlobalID is the IFC GUID. Components without one are not graphed.
	GlobalID string `json:"global_id"`

	Name string `json:"name"`

	// Type is the IFC entity name, e.g. IFCWALL.
	Type string `json:"type"`

	// PropertySets maps set name to property name to value.
	PropertySets map[string]map[string]any `json:"psets"`
}
