package extraction

import (
	"reflect"
	"testing"

	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

func newTestExtractor() *Extractor {
	return New(logger.New("extraction_test", "", ""))
}

func TestValidIdentifier(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"XS2761230684", true},
		{"XS2631782468", true},
		{"US0378331005", true},  // well-known listed equity code
		{"XS2761230685", false}, // bad check digit
		{"XS27612306", false},   // too short
		{"xs2761230684", false}, // lowercase country code
		{"1S2761230684", false}, // digit in country code
		{"XS276123068A", false}, // letter check digit
		{"", false},
	}

	for _, c := range cases {
		if got := ValidIdentifier(c.in); got != c.valid {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", c.in, got, c.valid)
		}
	}
}

func TestExtractIdentifierWithAdjacentName(t *testing.T) {
	e := newTestExtractor()
	text := "Portfolio Holdings\nLUMINIS XS2761230684 1,000 99.50 99,500.00 12.5%\n"

	store := e.Extract("doc-1", text, nil)

	if len(store.Securities) != 1 {
		t.Fatalf("expected 1 security, got %d", len(store.Securities))
	}
	sec := store.Securities[0]
	if sec.Name != "LUMINIS" {
		t.Errorf("Name = %q, want LUMINIS", sec.Name)
	}
	if !sec.HasIdentifier() || *sec.Identifier != "XS2761230684" {
		t.Errorf("Identifier = %v, want XS2761230684", sec.Identifier)
	}
	if sec.Quantity == nil || *sec.Quantity != 1000 {
		t.Errorf("Quantity = %v, want 1000", sec.Quantity)
	}
	if sec.Price == nil || *sec.Price != 99.50 {
		t.Errorf("Price = %v, want 99.50", sec.Price)
	}
	if sec.Value == nil || *sec.Value != 99500 {
		t.Errorf("Value = %v, want 99500", sec.Value)
	}
	if sec.Percentage == nil || *sec.Percentage != 12.5 {
		t.Errorf("Percentage = %v, want 12.5", sec.Percentage)
	}
}

func TestExtractSkipsIdentifierLabelInName(t *testing.T) {
	e := newTestExtractor()
	store := e.Extract("doc-1", "Aurora Global Fund ISIN XS2631782468\n", nil)

	if len(store.Securities) != 1 {
		t.Fatalf("expected 1 security, got %d", len(store.Securities))
	}
	if got := store.Securities[0].Name; got != "Aurora Global Fund" {
		t.Errorf("Name = %q, want Aurora Global Fund", got)
	}
	if store.Securities[0].InstrumentType != models.InstrumentFund {
		t.Errorf("InstrumentType = %q, want fund", store.Securities[0].InstrumentType)
	}
}

func TestMalformedIdentifiersAreDropped(t *testing.T) {
	e := newTestExtractor()
	// Bad check digit, too short, lowercase: none may surface as an identifier.
	text := "LUMINIS XS2761230685 500\nLUMINIS XS27612306\nluminis xs2761230684\n"

	store := e.Extract("doc-1", text, nil)

	for _, sec := range store.Securities {
		if sec.HasIdentifier() {
			t.Errorf("unexpected identifier %q emitted from malformed input", *sec.Identifier)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := newTestExtractor()
	text := "LUMINIS FLOATING NOTE XS2761230684 250 101.2\nAURORA EQUITY XS2631782468 90\n"
	tables := []models.Table{{
		Headers: []string{"Security Name", "Quantity", "Market Value"},
		Rows:    [][]string{{"Borealis Income Fund", "250", "12,500.00"}},
	}}

	first := e.Extract("doc-1", text, tables)
	second := e.Extract("doc-1", text, tables)

	if !reflect.DeepEqual(first.Securities, second.Securities) {
		t.Error("extraction is not idempotent: runs produced different securities")
	}
	if len(first.Securities) != 3 {
		t.Fatalf("expected 3 securities, got %d", len(first.Securities))
	}
}

func TestDuplicateIdentifierOccurrencesArePreserved(t *testing.T) {
	e := newTestExtractor()
	text := "LUMINIS SENIOR XS2761230684 100\nLUMINIS JUNIOR XS2761230684 200\n"

	store := e.Extract("doc-1", text, nil)

	if len(store.Securities) != 2 {
		t.Fatalf("expected 2 entries for duplicate identifier, got %d", len(store.Securities))
	}
	if store.Securities[0].Name == store.Securities[1].Name {
		t.Error("expected the two occurrences to keep their distinct names")
	}
}

func TestTableRowWithoutIdentifier(t *testing.T) {
	e := newTestExtractor()
	tables := []models.Table{{
		Headers: []string{"Security Name", "Quantity", "Market Value", "Weight %"},
		Rows: [][]string{
			{"Aurora Global Fund", "250", "12,500.00", "3.2"},
			{"", "", "", ""}, // blank row must not be emitted
		},
	}}

	store := e.Extract("doc-1", "", tables)

	if len(store.Securities) != 1 {
		t.Fatalf("expected 1 security, got %d", len(store.Securities))
	}
	sec := store.Securities[0]
	if sec.Identifier != nil {
		t.Errorf("Identifier = %v, want nil", *sec.Identifier)
	}
	if sec.Name != "Aurora Global Fund" {
		t.Errorf("Name = %q, want Aurora Global Fund", sec.Name)
	}
	if sec.Quantity == nil || *sec.Quantity != 250 {
		t.Errorf("Quantity = %v, want 250", sec.Quantity)
	}
	if sec.Value == nil || *sec.Value != 12500 {
		t.Errorf("Value = %v, want 12500", sec.Value)
	}
	if sec.Percentage == nil || *sec.Percentage != 3.2 {
		t.Errorf("Percentage = %v, want 3.2", sec.Percentage)
	}
}

func TestTableRowWithIdentifierColumn(t *testing.T) {
	e := newTestExtractor()
	tables := []models.Table{{
		Headers: []string{"ISIN", "Security Name", "Quantity"},
		Rows: [][]string{
			{"XS2761230684", "Luminis Note", "1000"},
			{"XS2761230685", "Broken Checksum Bond", "10"}, // invalid code, kept without identifier
		},
	}}

	store := e.Extract("doc-1", "", tables)

	if len(store.Securities) != 2 {
		t.Fatalf("expected 2 securities, got %d", len(store.Securities))
	}
	if !store.Securities[0].HasIdentifier() || *store.Securities[0].Identifier != "XS2761230684" {
		t.Errorf("first row identifier = %v, want XS2761230684", store.Securities[0].Identifier)
	}
	if store.Securities[1].HasIdentifier() {
		t.Error("second row must not carry a malformed identifier")
	}
}

func TestAmbiguousTextIsNotEmitted(t *testing.T) {
	e := newTestExtractor()
	store := e.Extract("doc-1", "This report was prepared on 12 March.\nNothing to see here.\n", nil)

	if len(store.Securities) != 0 {
		t.Errorf("expected no securities from prose, got %d", len(store.Securities))
	}
}

func TestExtractDoesNotMutateInputs(t *testing.T) {
	e := newTestExtractor()
	rows := [][]string{{"Aurora Global Fund", "250"}}
	tables := []models.Table{{Headers: []string{"Name", "Quantity"}, Rows: rows}}

	e.Extract("doc-1", "LUMINIS XS2761230684\n", tables)

	if rows[0][0] != "Aurora Global Fund" || rows[0][1] != "250" {
		t.Error("extraction mutated its table input")
	}
}
