package extraction

import (
	"strconv"
	"strings"
	"unicode"

	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

// Extractor derives an EntityStore from a document's parsed content. It is a
// pure transformation: the same text and tables always produce the same
// store, and the inputs are never mutated.
type Extractor struct {
	log *logger.Logger
}

// New creates a new Extractor.
func New(log *logger.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract scans the raw text and tables for securities and returns a fully
// populated EntityStore. Candidate identifiers that fail the check digit are
// dropped, never stored. Duplicate identifiers with different surrounding
// context produce separate entries; extraction does not deduplicate.
func (e *Extractor) Extract(documentID, rawText string, tables []models.Table) *models.EntityStore {
	store := &models.EntityStore{
		DocumentID: documentID,
		RawText:    rawText,
		Tables:     tables,
	}

	store.Securities = append(store.Securities, e.scanText(rawText)...)
	for _, table := range tables {
		store.Securities = append(store.Securities, e.scanTable(table)...)
	}

	e.log.WithPayload(map[string]interface{}{
		"document_id": documentID,
		"securities":  len(store.Securities),
		"tables":      len(tables),
	}).Debug("entity extraction finished")

	return store
}

// scanText walks the text line by line, emitting one Security per valid
// identifier occurrence.
func (e *Extractor) scanText(rawText string) []models.Security {
	var securities []models.Security

	for _, line := range strings.Split(rawText, "\n") {
		matches := identifierPattern.FindAllStringIndex(line, -1)
		for i, match := range matches {
			candidate := line[match[0]:match[1]]
			if !ValidIdentifier(candidate) {
				// Looks like an identifier but fails the pattern or check
				// digit: drop it silently, it must never reach the store.
				e.log.WithPayload(map[string]interface{}{"candidate": candidate}).
					Debug("dropping malformed identifier candidate")
				continue
			}

			sec := models.Security{
				Name:           precedingName(line[:match[0]]),
				InstrumentType: inferInstrumentType(line),
			}
			id := candidate
			sec.Identifier = &id

			// Numeric context is taken from the segment between this
			// identifier and the next one on the same line, so each
			// occurrence associates at most one of each figure.
			segEnd := len(line)
			if i+1 < len(matches) {
				segEnd = matches[i+1][0]
			}
			assignFigures(&sec, line[match[1]:segEnd])

			securities = append(securities, sec)
		}
	}

	return securities
}

// scanTable emits securities from rows that look like instrument line items:
// a name cell plus an identifier or at least one numeric cell. Rows that
// match neither pattern are skipped.
func (e *Extractor) scanTable(table models.Table) []models.Security {
	roles := detectColumns(table.Headers)
	var securities []models.Security

	for _, row := range table.Rows {
		sec, ok := e.rowSecurity(row, roles)
		if ok {
			securities = append(securities, sec)
		}
	}
	return securities
}

// columnRoles maps semantic roles to column indexes; -1 means not present.
type columnRoles struct {
	name, identifier, quantity, price, value, percentage int
}

func detectColumns(headers []string) columnRoles {
	roles := columnRoles{name: -1, identifier: -1, quantity: -1, price: -1, value: -1, percentage: -1}
	for i, h := range headers {
		switch l := strings.ToLower(strings.TrimSpace(h)); {
		case roles.identifier < 0 && (strings.Contains(l, "isin") || strings.Contains(l, "identifier") || strings.Contains(l, "code")):
			roles.identifier = i
		case roles.name < 0 && (strings.Contains(l, "name") || strings.Contains(l, "security") || strings.Contains(l, "instrument") || strings.Contains(l, "description") || strings.Contains(l, "holding")):
			roles.name = i
		case roles.quantity < 0 && (strings.Contains(l, "quantity") || strings.Contains(l, "qty") || strings.Contains(l, "units") || strings.Contains(l, "shares") || strings.Contains(l, "nominal")):
			roles.quantity = i
		case roles.price < 0 && strings.Contains(l, "price"):
			roles.price = i
		case roles.value < 0 && (strings.Contains(l, "value") || strings.Contains(l, "amount") || strings.Contains(l, "market")):
			roles.value = i
		case roles.percentage < 0 && (strings.Contains(l, "%") || strings.Contains(l, "percent") || strings.Contains(l, "weight") || strings.Contains(l, "allocation")):
			roles.percentage = i
		}
	}
	return roles
}

func (e *Extractor) rowSecurity(row []string, roles columnRoles) (models.Security, bool) {
	sec := models.Security{InstrumentType: models.InstrumentOther}

	// Identifier: prefer the dedicated column, otherwise any cell that holds
	// a valid identifier. Malformed candidates leave the identifier nil.
	cellAt := func(idx int) string {
		if idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	if cand := cellAt(roles.identifier); cand != "" {
		if ValidIdentifier(cand) {
			id := cand
			sec.Identifier = &id
		} else {
			e.log.WithPayload(map[string]interface{}{"candidate": cand}).
				Debug("dropping malformed identifier candidate")
		}
	} else if roles.identifier < 0 {
		for _, cell := range row {
			if cand := strings.TrimSpace(cell); ValidIdentifier(cand) {
				id := cand
				sec.Identifier = &id
				break
			}
		}
	}

	// Name: the dedicated column, or the first capitalized non-identifier cell.
	if name := cellAt(roles.name); name != "" {
		sec.Name = name
	} else if roles.name < 0 {
		for _, cell := range row {
			c := strings.TrimSpace(cell)
			if c == "" || ValidIdentifier(c) {
				continue
			}
			if r := []rune(c)[0]; unicode.IsUpper(r) {
				sec.Name = c
				break
			}
		}
	}

	if roles.quantity >= 0 || roles.price >= 0 || roles.value >= 0 || roles.percentage >= 0 {
		sec.Quantity = parseNumberCell(cellAt(roles.quantity))
		sec.Price = parseNumberCell(cellAt(roles.price))
		sec.Value = parseNumberCell(cellAt(roles.value))
		sec.Percentage = parseNumberCell(cellAt(roles.percentage))
	} else {
		// Headerless table: fall back to positional association over the
		// numeric cells in reading order.
		var cells []string
		for _, cell := range row {
			c := strings.TrimSpace(cell)
			if c != "" && !ValidIdentifier(c) && c != sec.Name {
				cells = append(cells, c)
			}
		}
		assignFigures(&sec, strings.Join(cells, " "))
	}

	sec.InstrumentType = inferInstrumentType(strings.Join(row, " "))

	// A row qualifies as a line item only with a name and either an
	// identifier or a numeric figure. Anything else is not emitted.
	hasFigure := sec.Quantity != nil || sec.Price != nil || sec.Value != nil || sec.Percentage != nil
	if sec.Name == "" || (!sec.HasIdentifier() && !hasFigure) {
		return models.Security{}, false
	}
	return sec, true
}

// precedingName returns the longest run of capitalized tokens immediately
// preceding the identifier on the same line.
func precedingName(prefix string) string {
	fields := strings.Fields(prefix)
	var run []string
	for i := len(fields) - 1; i >= 0; i-- {
		token := strings.Trim(fields[i], ",;:()|")
		if !isNameToken(token) {
			break
		}
		run = append([]string{token}, run...)
	}

	// Labels like "ISIN" that commonly sit between a name and its code are
	// not part of the name.
	for len(run) > 0 && isIdentifierLabel(run[len(run)-1]) {
		run = run[:len(run)-1]
	}
	return strings.Join(run, " ")
}

func isNameToken(token string) bool {
	if token == "" {
		return false
	}
	runes := []rune(token)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("&.-'", r) {
			return false
		}
	}
	return true
}

func isIdentifierLabel(token string) bool {
	switch strings.ToUpper(token) {
	case "ISIN", "CODE", "IDENTIFIER", "ID":
		return true
	}
	return false
}

// assignFigures parses the numeric tokens of a text segment and associates at
// most one of each figure with the security: a percent-suffixed token becomes
// the percentage, the remaining numbers are quantity, price and value in
// reading order.
func assignFigures(sec *models.Security, segment string) {
	var plain []float64
	for _, token := range strings.Fields(segment) {
		token = strings.Trim(token, ",;:()|")
		if token == "" {
			continue
		}
		if strings.HasSuffix(token, "%") {
			if sec.Percentage == nil {
				if v, ok := parseNumber(strings.TrimSuffix(token, "%")); ok {
					sec.Percentage = &v
				}
			}
			continue
		}
		if v, ok := parseNumber(token); ok {
			plain = append(plain, v)
		}
	}

	if len(plain) > 0 && sec.Quantity == nil {
		sec.Quantity = &plain[0]
	}
	if len(plain) > 1 && sec.Price == nil {
		sec.Price = &plain[1]
	}
	if len(plain) > 2 && sec.Value == nil {
		sec.Value = &plain[2]
	}
}

// parseNumberCell parses a single table cell as a number, treating a percent
// suffix the same as a plain number.
func parseNumberCell(cell string) *float64 {
	if cell == "" {
		return nil
	}
	cell = strings.TrimSuffix(strings.Trim(cell, ",;:()|"), "%")
	if v, ok := parseNumber(cell); ok {
		return &v
	}
	return nil
}

// parseNumber parses a numeric token, tolerating thousands separators and a
// leading currency symbol.
func parseNumber(token string) (float64, bool) {
	token = strings.TrimLeft(token, "$€£")
	token = strings.ReplaceAll(token, ",", "")
	if token == "" || !strings.ContainsAny(token, "0123456789") {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// inferInstrumentType guesses the instrument kind from vocabulary on the
// same line; "other" when nothing matches.
func inferInstrumentType(line string) models.InstrumentType {
	l := strings.ToLower(line)
	switch {
	case strings.Contains(l, "bond") || strings.Contains(l, "note") || strings.Contains(l, "debenture"):
		return models.InstrumentBond
	case strings.Contains(l, "equity") || strings.Contains(l, "share") || strings.Contains(l, "stock"):
		return models.InstrumentEquity
	case strings.Contains(l, "fund") || strings.Contains(l, "etf") || strings.Contains(l, "sicav") || strings.Contains(l, "ucits"):
		return models.InstrumentFund
	default:
		return models.InstrumentOther
	}
}
