package facility

// Relationship is a directed edge between two rooms of the same layout.
// ADJACENT_TO edges are read symmetrically by consumers.
type Relationship struct {
	ID            string        `json:"id"`
	Type          RelationType  `json:"type"`
	Source        string        `json:"source"`
	Target        string        `json:"target"`
	Priority      int           `json:"priority"`
	Reason        string        `json:"reason,omitempty"`
	FlowDirection FlowDirection `json:"flow_direction,omitempty"`
	FlowType      string        `json:"flow_type,omitempty"`
}

// Touches reports whether the relationship has id as an endpoint.
func (r Relationship) Touches(id string) bool {
	return r.Source == id || r.Target == id
}

// Other returns the endpoint opposite to id. The second result is false when
// id is not an endpoint.
func (r Relationship) Other(id string) (string, bool) {
	switch id {
	case r.Source:
		return r.Target, true
	case r.Target:
		return r.Source, true
	}
	return "", false
}

// Connects reports whether the relationship links a and b, honouring
// symmetry for ADJACENT_TO.
func (r Relationship) Connects(a, b string) bool {
	if r.Source == a && r.Target == b {
		return true
	}
	return r.Type.Symmetric() && r.Source == b && r.Target == a
}
