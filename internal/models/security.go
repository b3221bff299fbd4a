package models

// InstrumentType classifies the kind of financial instrument a security represents.
type InstrumentType string

const (
	InstrumentBond   InstrumentType = "bond"
	InstrumentEquity InstrumentType = "equity"
	InstrumentFund   InstrumentType = "fund"
	InstrumentOther  InstrumentType = "other"
)

// Security represents one financial instrument mentioned in a document.
// Numeric fields are pointers because absence is distinct from zero: a bond
// position with no reported price is not a bond priced at zero.
type Security struct {
	// Name is the free-text label found next to the identifier. It is not
	// unique; several securities may share a display name.
	Name string `json:"name"`

	// Identifier is the 12-character security identifier (2 letters, 9
	// alphanumerics, 1 check digit), or nil when none was found. The
	// extractor never stores a malformed identifier.
	Identifier *string `json:"identifier,omitempty"`

	InstrumentType InstrumentType `json:"instrument_type"`

	Quantity   *float64 `json:"quantity,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// HasIdentifier reports whether the security carries an identifier.
func (s *Security) HasIdentifier() bool {
	return s.Identifier != nil && *s.Identifier != ""
}

// Table is one extracted tabular structure. The chat core treats tables as
// opaque beyond their presence; only the extractor reads the cells.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// EntityStore is the extracted, queryable representation of one document's
// financial content. It is built once per document and never mutated: a
// reprocessed document gets a brand-new store that replaces the old one
// wholesale, so concurrent readers can never observe a half-built store.
type EntityStore struct {
	DocumentID string     `json:"document_id"`
	RawText    string     `json:"raw_text"`
	Tables     []Table    `json:"tables"`
	Securities []Security `json:"securities"`
}

// SecuritiesWithIdentifiers returns the securities that carry an identifier,
// in insertion order.
func (e *EntityStore) SecuritiesWithIdentifiers() []Security {
	var out []Security
	for _, sec := range e.Securities {
		if sec.HasIdentifier() {
			out = append(out, sec)
		}
	}
	return out
}
