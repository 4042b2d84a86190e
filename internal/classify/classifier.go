package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/gridintel/internal/config"
	"github.com/dgallion1/gridintel/internal/extract"
)

var (
	capacityValueRe = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(MW|GW|MVA)`)
	yearRe          = regexp.MustCompile(`20\d{2}`)
	costRe          = regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(million|billion|M€|B€)`)
)

// Classifier tags sentences against the rule set's vocabularies and
// builds typed records. It holds no mutable state and is safe to share.
type Classifier struct {
	rules          *config.Rules
	mvaPowerFactor float64
}

// New builds a classifier from an immutable rule set. mvaPowerFactor is
// the assumed power factor for the approximate MVA to MW conversion.
func New(rules *config.Rules, mvaPowerFactor float64) *Classifier {
	if mvaPowerFactor <= 0 || mvaPowerFactor > 1 {
		mvaPowerFactor = 0.95
	}
	return &Classifier{rules: rules, mvaPowerFactor: mvaPowerFactor}
}

// Document classifies every page of an extracted document. Pages with no
// text contribute zero sentences and zero records.
func (c *Classifier) Document(doc *extract.Document) *Result {
	res := &Result{
		Source:         doc.Filename,
		PagesProcessed: len(doc.Pages),
	}
	for _, page := range doc.Pages {
		c.Page(res, page)
	}
	return res
}

// Page classifies one page's text into res. A sentence matching more
// than one vocabulary yields one record per matched vocabulary.
func (c *Classifier) Page(res *Result, page extract.Page) {
	for _, sentence := range SplitSentences(page.Text) {
		if matchesAny(sentence, c.rules.Vocabularies.Capacity) {
			res.Capacity = append(res.Capacity, c.capacityRecord(res.Source, page.Number, sentence))
		}
		if matchesAny(sentence, c.rules.Vocabularies.Connection) {
			res.Connections = append(res.Connections, ConnectionRecord{
				Source:      res.Source,
				Page:        page.Number,
				Type:        ClassifyConnectionType(sentence),
				Description: sentence,
			})
		}
		if matchesAny(sentence, c.rules.Vocabularies.Constraint) {
			res.Constraints = append(res.Constraints, ConstraintRecord{
				Source:      res.Source,
				Page:        page.Number,
				Type:        ClassifyConstraintType(sentence),
				Description: sentence,
				Location:    c.extractLocation(sentence),
			})
		}
		if matchesAny(sentence, c.rules.Vocabularies.Investment) {
			res.Investments = append(res.Investments, c.investmentRecord(res.Source, page.Number, sentence))
		}
	}
}

func (c *Classifier) capacityRecord(source string, page int, sentence string) CapacityRecord {
	rec := CapacityRecord{
		Source:      source,
		Page:        page,
		Description: sentence,
		ProjectName: c.extractProjectName(sentence),
		Location:    c.extractLocation(sentence),
	}

	// First numeric+unit pair wins; no pair means a null value, which is
	// still a valid capacity record.
	if m := capacityValueRe.FindStringSubmatch(sentence); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			mw := c.NormalizeToMW(v, m[2])
			rec.ValueMW = &mw
			rec.Unit = "MW"
		}
	}
	return rec
}

func (c *Classifier) investmentRecord(source string, page int, sentence string) InvestmentRecord {
	rec := InvestmentRecord{
		Source:      source,
		Page:        page,
		Description: sentence,
	}

	if m := costRe.FindStringSubmatch(sentence); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			rec.Amount = &v
			currency := m[2]
			rec.Currency = &currency
		}
	}

	if years := yearRe.FindAllString(sentence, -1); len(years) > 0 {
		timeline := strings.Join(years, "-")
		rec.Timeline = &timeline
	}
	return rec
}

// NormalizeToMW converts a capacity value to MW. GW scale by 1000; MVA
// scale by the configured power factor (apparent to real power); MW pass
// through. Unknown units pass through unchanged.
func (c *Classifier) NormalizeToMW(value float64, unit string) float64 {
	switch strings.ToUpper(unit) {
	case "GW":
		return value * 1000
	case "MVA":
		return value * c.mvaPowerFactor
	default:
		return value
	}
}

// extractProjectName takes a window of two words either side of the
// first indicator term found. Returns nil when no indicator matches.
func (c *Classifier) extractProjectName(sentence string) *string {
	lower := strings.ToLower(sentence)
	for _, indicator := range c.rules.ProjectIndicators {
		ind := strings.ToLower(indicator)
		if !strings.Contains(lower, ind) {
			continue
		}
		words := strings.Fields(sentence)
		for i, word := range words {
			if strings.Contains(strings.ToLower(word), ind) {
				start := max(0, i-2)
				end := min(len(words), i+3)
				name := strings.Join(words[start:end], " ")
				return &name
			}
		}
	}
	return nil
}

// extractLocation matches the sentence against the gazetteer. Returns
// nil when no place name matches.
func (c *Classifier) extractLocation(sentence string) *string {
	lower := strings.ToLower(sentence)
	for _, place := range c.rules.Gazetteer {
		if strings.Contains(lower, strings.ToLower(place)) {
			p := place
			return &p
		}
	}
	return nil
}

// ClassifyConnectionType maps a sentence to a connection type by ordered
// keyword rules, falling through to General.
func ClassifyConnectionType(sentence string) ConnectionType {
	lower := strings.ToLower(sentence)
	switch {
	case strings.Contains(lower, "cross-border") || strings.Contains(lower, "international"):
		return ConnectionInternational
	case strings.Contains(lower, "transmission"):
		return ConnectionTransmission
	case strings.Contains(lower, "regional"):
		return ConnectionRegional
	case strings.Contains(lower, "distribution"):
		return ConnectionDistribution
	default:
		return ConnectionGeneral
	}
}

// ClassifyConstraintType maps a sentence to a constraint type by ordered
// keyword rules, falling through to General.
func ClassifyConstraintType(sentence string) ConstraintType {
	lower := strings.ToLower(sentence)
	switch {
	case strings.Contains(lower, "thermal"):
		return ConstraintThermal
	case strings.Contains(lower, "voltage"):
		return ConstraintVoltage
	case strings.Contains(lower, "congestion"):
		return ConstraintCongestion
	case strings.Contains(lower, "bottleneck"):
		return ConstraintBottleneck
	default:
		return ConstraintGeneral
	}
}

// SplitSentences breaks text into sentence-like units on terminal
// punctuation. Empty and whitespace-only units are dropped.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var sentences []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func matchesAny(sentence string, vocabulary []string) bool {
	lower := strings.ToLower(sentence)
	for _, term := range vocabulary {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
