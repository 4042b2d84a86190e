package classify

// Category identifies which vocabulary a sentence matched.
type Category string

const (
	CategoryCapacity   Category = "capacity"
	CategoryConnection Category = "connection"
	CategoryConstraint Category = "constraint"
	CategoryInvestment Category = "investment"
)

// ConnectionType is the closed set of connection classifications.
type ConnectionType string

const (
	ConnectionInternational ConnectionType = "International Connection"
	ConnectionTransmission  ConnectionType = "Transmission Connection"
	ConnectionRegional      ConnectionType = "Regional Connection"
	ConnectionDistribution  ConnectionType = "Distribution Connection"
	ConnectionGeneral       ConnectionType = "General Connection"
)

// ConstraintType is the closed set of constraint classifications.
type ConstraintType string

const (
	ConstraintThermal    ConstraintType = "Thermal Constraint"
	ConstraintVoltage    ConstraintType = "Voltage Constraint"
	ConstraintCongestion ConstraintType = "Congestion"
	ConstraintBottleneck ConstraintType = "Bottleneck"
	ConstraintGeneral    ConstraintType = "General Constraint"
)

// CapacityRecord is one capacity-vocabulary sentence match. ValueMW is
// nil when the sentence carried no numeric+unit pair; when set, the value
// has already been normalized to MW.
type CapacityRecord struct {
	Source      string   `json:"document_source"`
	Page        int      `json:"page_number"`
	ValueMW     *float64 `json:"capacity_mw"`
	Unit        string   `json:"capacity_unit,omitempty"`
	Description string   `json:"description"`
	ProjectName *string  `json:"project_name"`
	Location    *string  `json:"location"`
	Status      string   `json:"status,omitempty"`
}

// ConnectionRecord is one connection-vocabulary sentence match.
type ConnectionRecord struct {
	Source      string         `json:"document_source"`
	Page        int            `json:"page_number"`
	Type        ConnectionType `json:"connection_type"`
	Description string         `json:"description"`
}

// ConstraintRecord is one constraint-vocabulary sentence match.
type ConstraintRecord struct {
	Source      string         `json:"document_source"`
	Page        int            `json:"page_number"`
	Type        ConstraintType `json:"constraint_type"`
	Description string         `json:"description"`
	Location    *string        `json:"location"`
	Impact      *string        `json:"impact"`
}

// InvestmentRecord is one investment-vocabulary sentence match. Amount,
// Currency and Timeline are best-effort extractions and may be nil.
type InvestmentRecord struct {
	Source      string   `json:"document_source"`
	Page        int      `json:"page_number"`
	Description string   `json:"description"`
	Amount      *float64 `json:"investment_amount"`
	Currency    *string  `json:"currency"`
	Timeline    *string  `json:"timeline"`
}

// Result collects everything the classifier produced for one document.
type Result struct {
	Source         string
	PagesProcessed int
	Capacity       []CapacityRecord
	Connections    []ConnectionRecord
	Constraints    []ConstraintRecord
	Investments    []InvestmentRecord
}

// RecordCount returns the total typed records across all categories.
func (r *Result) RecordCount() int {
	return len(r.Capacity) + len(r.Connections) + len(r.Constraints) + len(r.Investments)
}
