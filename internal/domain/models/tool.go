package models

import "time"

// Condition is the wear classification of a tool.
type Condition string

const (
	ConditionOK      Condition = "OK"
	ConditionWarn    Condition = "WARN"
	ConditionReplace Condition = "REPLACE"
)

// Conditions lists every condition in severity order.
var Conditions = []Condition{ConditionOK, ConditionWarn, ConditionReplace}

var conditionLabels = map[Condition]string{
	ConditionOK:      "OK",
	ConditionWarn:    "Atenção!",
	ConditionReplace: "Trocar Ferramenta (TF)",
}

// Label returns the text shown to shop-floor operators.
func (c Condition) Label() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return string(c)
}

// Warning reports whether the condition needs attention.
func (c Condition) Warning() bool {
	return c != ConditionOK
}

// ProductionEntry is one production report appended to a tool's ledger.
type ProductionEntry struct {
	Pieces int64
	Date   Date
}

// Tool is a wearing part mounted on a mold.
type Tool struct {
	ID                    string
	MoldID                string
	ToolID                string
	UsefulLife            int64
	AccumulatedProduction int64
	Condition             Condition
	Warning               bool
	Notes                 string
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ProductionHistory     []ProductionEntry
}
