package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldTripID     = "trip_id"
	FieldReason     = "reason"
	FieldTransfers  = "transfers"
	FieldTotalSpent = "total_spent"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentLedger = "ledger"
	ComponentWorker = "worker"
	ComponentExport = "export"
)

// Operations defines standard operation names
const (
	OpCompute = "compute"
	OpExport  = "export"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithTrip adds trip ID field
func (f LogFields) WithTrip(tripID string) LogFields {
	f[FieldTripID] = tripID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithReport adds report summary fields
func (f LogFields) WithReport(tripID string, totalSpent float64, transfers int) LogFields {
	f[FieldTripID] = tripID
	f[FieldTotalSpent] = totalSpent
	f[FieldTransfers] = transfers
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
