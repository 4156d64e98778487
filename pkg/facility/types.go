package facility

import (
	"strings"
)

// Category is the functional family of a room.
type Category string

const (
	CategoryProduction     Category = "Production"
	CategoryQualityControl Category = "Quality Control"
	CategoryWarehouse      Category = "Warehouse"
	CategoryUtilities      Category = "Utilities"
	CategoryPersonnel      Category = "Personnel"
	CategorySupport        Category = "Support"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryProduction,
	CategoryQualityControl,
	CategoryWarehouse,
	CategoryUtilities,
	CategoryPersonnel,
	CategorySupport,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category name case-insensitively. Short aliases
// such as "qc" are accepted.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production":
		return CategoryProduction, true
	case "quality control", "qc", "quality_control":
		return CategoryQualityControl, true
	case "warehouse", "storage":
		return CategoryWarehouse, true
	case "utilities", "utility":
		return CategoryUtilities, true
	case "personnel":
		return CategoryPersonnel, true
	case "support":
		return CategorySupport, true
	}
	return "", false
}

// CleanroomClass is the GMP air-cleanliness grade of a room.
// The zero value means the room is not a cleanroom.
type CleanroomClass string

const (
	ClassNone CleanroomClass = ""
	ClassA    CleanroomClass = "A"
	ClassB    CleanroomClass = "B"
	ClassC    CleanroomClass = "C"
	ClassD    CleanroomClass = "D"
	// ClassCNC is Controlled-Not-Classified.
	ClassCNC CleanroomClass = "CNC"
)

// Rank orders classes from strictest (A=1) to unclassified (5).
func (c CleanroomClass) Rank() int {
	switch c {
	case ClassA:
		return 1
	case ClassB:
		return 2
	case ClassC:
		return 3
	case ClassD:
		return 4
	default:
		return 5
	}
}

// Classified reports whether c is one of the graded classes A–D.
func (c CleanroomClass) Classified() bool { return c.Rank() < 5 }

// Aseptic reports whether c is grade A or B.
func (c CleanroomClass) Aseptic() bool { return c == ClassA || c == ClassB }

// StricterThan reports whether c demands cleaner air than o.
func (c CleanroomClass) StricterThan(o CleanroomClass) bool { return c.Rank() < o.Rank() }

// Valid reports whether c is a known class or empty.
func (c CleanroomClass) Valid() bool {
	switch c {
	case ClassNone, ClassA, ClassB, ClassC, ClassD, ClassCNC:
		return true
	}
	return false
}

// ParseClass resolves a class name. "Grade B", "b" and "cnc" are accepted.
func ParseClass(s string) (CleanroomClass, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "GRADE ")
	v = strings.TrimPrefix(v, "CLASS ")
	switch v {
	case "":
		return ClassNone, true
	case "A", "B", "C", "D":
		return CleanroomClass(v), true
	case "CNC", "CONTROLLED-NOT-CLASSIFIED", "CONTROLLED NOT CLASSIFIED":
		return ClassCNC, true
	}
	return "", false
}

// RelationType is the kind of a directed relationship between two rooms.
type RelationType string

const (
	AdjacentTo         RelationType = "ADJACENT_TO"
	RequiresAccess     RelationType = "REQUIRES_ACCESS"
	ProhibitedNear     RelationType = "PROHIBITED_NEAR"
	SharesUtility      RelationType = "SHARES_UTILITY"
	MaterialFlow       RelationType = "MATERIAL_FLOW"
	PersonnelFlow      RelationType = "PERSONNEL_FLOW"
	WorkflowSuggestion RelationType = "WORKFLOW_SUGGESTION"
)

// RelationTypes lists every known relationship type.
var RelationTypes = []RelationType{
	AdjacentTo,
	RequiresAccess,
	ProhibitedNear,
	SharesUtility,
	MaterialFlow,
	PersonnelFlow,
	WorkflowSuggestion,
}

// Valid reports whether t is a known relationship type.
func (t RelationType) Valid() bool {
	for _, k := range RelationTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Symmetric reports whether consumers read the relationship in both
// directions.
func (t RelationType) Symmetric() bool { return t == AdjacentTo }

// IsFlow reports whether t is a material or personnel flow.
func (t RelationType) IsFlow() bool { return t == MaterialFlow || t == PersonnelFlow }

// FlowDirection qualifies flow relationships.
type FlowDirection string

const (
	Unidirectional FlowDirection = "unidirectional"
	Bidirectional  FlowDirection = "bidirectional"
)

// DefaultPriority is assigned to relationships created without one.
const DefaultPriority = 5
