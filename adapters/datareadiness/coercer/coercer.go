package coercer

import (
	"math"
	"strconv"
	"strings"
)

// ColumnType is the inferred type of a raw column
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnEmpty       ColumnType = "empty" // every cell missing
)

// DefaultMissingTokens mirrors the NA markers common CSV tooling treats as missing
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// TypeCoercer handles deterministic missing-value detection and numeric parsing
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold" mapstructure:"numeric_threshold"` // share of present cells that must parse
	MissingTokens    []string `json:"missing_tokens" mapstructure:"missing_tokens"`
	LenientNumbers   bool     `json:"lenient_numbers" mapstructure:"lenient_numbers"` // accept currency, %, (123), 1,234.5
}

// DefaultCoercionConfig returns strict defaults: a column is numeric only when
// every present cell is a plain number.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		MissingTokens:    DefaultMissingTokens,
		LenientNumbers:   false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.NumericThreshold <= 0 || config.NumericThreshold > 1 {
		config.NumericThreshold = 1.0
	}
	missing := make(map[string]struct{}, len(config.MissingTokens)+1)
	missing[""] = struct{}{}
	for _, tok := range config.MissingTokens {
		missing[tok] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether a raw cell counts as a missing value
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[strings.TrimSpace(raw)]
	return ok
}

// ParseNumeric parses a present cell as a finite float
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}
	if c.config.LenientNumbers {
		clean = normalizeNumber(clean)
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// AnalyzeColumn counts how the cells of a raw column coerce
func (c *TypeCoercer) AnalyzeColumn(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		if c.IsMissing(raw) {
			analysis.MissingCount++
			continue
		}
		analysis.PresentCount++
		if _, ok := c.ParseNumeric(raw); ok {
			analysis.NumericCount++
		}
	}

	if analysis.PresentCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.PresentCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

// determineRecommendedType chooses the column type from the analysis
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) ColumnType {
	if analysis.PresentCount == 0 {
		return ColumnEmpty
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return ColumnNumeric
	}
	return ColumnCategorical
}

// normalizeNumber strips currency symbols and thousands separators and turns
// accounting negatives (123) into -123.
func normalizeNumber(s string) string {
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSpace(s)

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	switch {
	case hasComma && hasPeriod && strings.LastIndex(s, ",") > strings.LastIndex(s, "."):
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	s = strings.ReplaceAll(s, " ", "")

	if isNegative {
		s = "-" + s
	}
	return s
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int        `json:"total_count"`
	MissingCount    int        `json:"missing_count"`
	PresentCount    int        `json:"present_count"`
	NumericCount    int        `json:"numeric_count"`
	NumericRatio    float64    `json:"numeric_ratio"`
	RecommendedType ColumnType `json:"recommended_type"`
}
