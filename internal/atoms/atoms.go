// Package atoms implements deterministic parsing of probe output:
// sizes, percentages, and unit names. No floats, no heuristics — size
// parsing uses exact rational arithmetic with half-up rounding.
package atoms

import (
	"math/big"
	"strconv"
	"strings"
)

// ParseErrorReason is a closed enumeration of why a parse failed.
// Kept as a tagged variant (never a bare string) per spec §9.
type ParseErrorReason struct {
	Kind   ReasonKind
	Detail string // UnknownSuffix suffix text, or PercentOutOfRange value
}

// ReasonKind names one parse-failure category.
type ReasonKind int

const (
	NegativeValue ReasonKind = iota
	EmptyNumber
	InvalidNumber
	UnknownSuffix
	Overflow
	PercentOutOfRange
	MissingColumn
	MalformedRow
	MissingSection
)

func (r ParseErrorReason) Error() string {
	switch r.Kind {
	case NegativeValue:
		return "negative value"
	case EmptyNumber:
		return "empty number"
	case InvalidNumber:
		return "invalid number"
	case UnknownSuffix:
		return "unknown suffix: " + r.Detail
	case Overflow:
		return "overflow"
	case PercentOutOfRange:
		return "percent out of range: " + r.Detail
	case MissingColumn:
		return "missing column: " + r.Detail
	case MalformedRow:
		return "malformed row"
	case MissingSection:
		return "missing section: " + r.Detail
	default:
		return "parse error"
	}
}

func reason(k ReasonKind) ParseErrorReason           { return ParseErrorReason{Kind: k} }
func reasonDetail(k ReasonKind, d string) ParseErrorReason { return ParseErrorReason{Kind: k, Detail: d} }

// ParseError carries the probe that produced a failure alongside the reason.
type ParseError struct {
	ProbeID string
	LineNum *int
	Raw     string
	Reason  ParseErrorReason
}

func (e *ParseError) Error() string {
	return e.ProbeID + ": " + e.Reason.Error() + ": " + strconv.Quote(e.Raw)
}

func NewParseError(probeID string, reason ParseErrorReason, raw string) *ParseError {
	return &ParseError{ProbeID: probeID, Raw: raw, Reason: reason}
}

func (e *ParseError) WithLine(n int) *ParseError {
	e.LineNum = &n
	return e
}

var binaryMultipliers = map[string]int64{
	"K": 1024, "KI": 1024, "KIB": 1024,
	"M": 1024 * 1024, "MI": 1024 * 1024, "MIB": 1024 * 1024,
	"G": 1024 * 1024 * 1024, "GI": 1024 * 1024 * 1024, "GIB": 1024 * 1024 * 1024,
	"T": 1024 * 1024 * 1024 * 1024, "TI": 1024 * 1024 * 1024 * 1024, "TIB": 1024 * 1024 * 1024 * 1024,
	"B": 1, "": 1,
}

var displayMultipliers = map[string]int64{
	"KB": 1024, "MB": 1024 * 1024, "GB": 1024 * 1024 * 1024, "TB": 1024 * 1024 * 1024 * 1024,
}

// ParseSize parses a size string like "4.2G" into exact bytes, rounding
// half up. Accepts binary prefixes K/Ki, M/Mi, G/Gi, T/Ti (all base-2);
// no suffix means bytes.
func ParseSize(s string) (uint64, ParseErrorReason, bool) {
	return parseSizeWith(s, binaryMultipliers)
}

// ParseDisplaySize is a superset of ParseSize that also accepts
// display-style suffixes (GB, MB, KB), treated identically to their
// binary counterparts. Used when extracting sizes from LLM prose.
func ParseDisplaySize(s string) (uint64, ParseErrorReason, bool) {
	merged := make(map[string]int64, len(binaryMultipliers)+len(displayMultipliers))
	for k, v := range binaryMultipliers {
		merged[k] = v
	}
	for k, v := range displayMultipliers {
		merged[k] = v
	}
	return parseSizeWith(s, merged)
}

func parseSizeWith(s string, multipliers map[string]int64) (uint64, ParseErrorReason, bool) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		return 0, reason(NegativeValue), false
	}
	if strings.HasPrefix(s, "+") {
		return 0, reason(InvalidNumber), false
	}

	numStr, suffix := splitNumericSuffix(s)
	if numStr == "" || numStr == "." {
		return 0, reason(EmptyNumber), false
	}

	mult, ok := multipliers[strings.ToUpper(suffix)]
	if !ok {
		return 0, reasonDetail(UnknownSuffix, suffix), false
	}

	num, den, rr, ok := parseDecimalRational(numStr)
	if !ok {
		return 0, rr, false
	}

	multiplier := big.NewInt(mult)
	scaled := new(big.Int).Mul(num, multiplier)

	doubledScaled := new(big.Int).Mul(scaled, big.NewInt(2))
	doubledDenom := new(big.Int).Mul(den, big.NewInt(2))
	numerator := new(big.Int).Add(doubledScaled, den)
	bytesBig := new(big.Int).Div(numerator, doubledDenom)

	maxU64 := new(big.Int).SetUint64(^uint64(0))
	if bytesBig.Sign() < 0 || bytesBig.Cmp(maxU64) > 0 {
		return 0, reason(Overflow), false
	}

	return bytesBig.Uint64(), ParseErrorReason{}, true
}

// splitNumericSuffix splits "4.2G" into ("4.2", "G"). Input is assumed
// already trimmed.
func splitNumericSuffix(s string) (string, string) {
	idx := strings.IndexFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	if idx == -1 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

// parseDecimalRational turns "4.2" into (42, 10), "500" into (500, 1).
func parseDecimalRational(s string) (*big.Int, *big.Int, ParseErrorReason, bool) {
	if strings.HasPrefix(s, "-") {
		return nil, nil, reason(NegativeValue), false
	}
	if s == "" {
		return nil, nil, reason(EmptyNumber), false
	}

	if intPart, fracPart, found := strings.Cut(s, "."); found {
		if intPart == "" && fracPart == "" {
			return nil, nil, reason(EmptyNumber), false
		}
		intVal := big.NewInt(0)
		if intPart != "" {
			v, ok := new(big.Int).SetString(intPart, 10)
			if !ok {
				return nil, nil, reason(InvalidNumber), false
			}
			intVal = v
		}
		fracVal := big.NewInt(0)
		if fracPart != "" {
			v, ok := new(big.Int).SetString(fracPart, 10)
			if !ok {
				return nil, nil, reason(InvalidNumber), false
			}
			fracVal = v
		}
		denominator := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
		numerator := new(big.Int).Mul(intVal, denominator)
		numerator.Add(numerator, fracVal)
		return numerator, denominator, ParseErrorReason{}, true
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, nil, reason(InvalidNumber), false
	}
	return v, big.NewInt(1), ParseErrorReason{}, true
}

// ParsePercent parses a percent string like "85%" into 0-100.
func ParsePercent(s string) (uint8, ParseErrorReason, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")

	if strings.HasPrefix(s, "-") {
		return 0, reason(NegativeValue), false
	}
	if s == "" {
		return 0, reason(EmptyNumber), false
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, reason(InvalidNumber), false
	}
	if val > 100 || val < 0 {
		return 0, reasonDetail(PercentOutOfRange, strconv.Itoa(val)), false
	}
	return uint8(val), ParseErrorReason{}, true
}

var knownUnitSuffixes = []string{
	".service", ".socket", ".timer", ".mount", ".target", ".path",
	".slice", ".scope", ".device", ".automount", ".swap",
}

// NormalizeServiceName appends ".service" unless the name already
// carries a known systemd unit suffix.
func NormalizeServiceName(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range knownUnitSuffixes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return name + ".service"
}
