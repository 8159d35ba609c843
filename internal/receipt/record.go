package receipt

// minPopulated is the smallest number of entries, the document id
// included, a document half needs to count as a receipt
const minPopulated = 2

// Record is the parsed content of one document half
type Record struct {
	DocumentID string
	values     map[string][]string
}

// NewRecord creates an empty Record for documentID
func NewRecord(documentID string) *Record {
	return &Record{DocumentID: documentID, values: make(map[string][]string)}
}

// Set stores a single value for field, replacing any earlier one
func (r *Record) Set(field Field, value string) {
	r.values[field.Name] = []string{value}
}

// SetAll stores an ordered list of values for a monetary field
func (r *Record) SetAll(field Field, values ...string) {
	r.values[field.Name] = append([]string(nil), values...)
}

// Get returns the first value of name, or "" when unpopulated
func (r *Record) Get(name string) string {
	if v := r.values[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns a copy of every value stored for name
func (r *Record) Values(name string) []string {
	return append([]string(nil), r.values[name]...)
}

// Has reports whether name is populated
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Len counts populated entries, the document id included
func (r *Record) Len() int {
	return len(r.values) + 1
}

// Blank reports whether the record is too sparse to be a receipt
func (r *Record) Blank() bool {
	return r.Len() < minPopulated
}
