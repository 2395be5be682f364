package fanout

// Field is one of the values a downstream target can receive.
type Field string

const (
	FieldReference  Field = "reference"
	FieldEmail      Field = "email"
	FieldIdentityID Field = "identity_id"
)

// Mapping says which fields a target receives and in which column order.
// A field whose value is empty is written as an empty cell, except when
// it is the RequireField: then the whole row is skipped for that entry.
type Mapping struct {
	Columns      []Field
	RequireField Field
}

// The per-target mappings are a fixed enumerated table, matching the
// agreed column layout of each downstream intake sheet. New targets get
// a new entry here, not data-driven dispatch.
var mappingsByClass = map[string]Mapping{
	"FormStack":  {Columns: []Field{FieldReference, FieldEmail}},
	"TempPen":    {Columns: []Field{FieldEmail, FieldReference}},
	"Zuora":      {Columns: []Field{FieldEmail, FieldReference}},
	"EventBrite": {Columns: []Field{FieldEmail, FieldReference}},
	"BigQuery":   {Columns: []Field{FieldReference, FieldIdentityID}, RequireField: FieldIdentityID},
	"DataLake":   {Columns: []Field{FieldReference, FieldIdentityID}, RequireField: FieldIdentityID},
	"OneOff":     {Columns: []Field{FieldReference, FieldIdentityID}, RequireField: FieldIdentityID},
	"Braze":      {Columns: []Field{FieldReference, FieldIdentityID, FieldEmail}},
}

// MappingFor looks up the mapping for a target class.
func MappingFor(class string) (Mapping, bool) {
	m, ok := mappingsByClass[class]
	return m, ok
}
