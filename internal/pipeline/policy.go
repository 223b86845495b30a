package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/util"
)

// datePattern is the literal D/M/Y shape the strict preset insists on.
var datePattern = regexp.MustCompile(`^\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*$`)

// Policy bundles the tunable knobs of the header heuristic. The two source
// report generations disagreed on all three, so they live behind named
// presets instead of duplicated code paths.
type Policy struct {
	// DateCellThreshold is the minimum count of date-like cells a row needs
	// to be taken as the date header.
	DateCellThreshold int
	// StrictDates requires the literal D/M/Y pattern for date-likeness
	// instead of semantic parsing with a year sanity range.
	StrictDates bool
	// Decimal selects the separator convention for numeric cells.
	Decimal util.DecimalStyle
}

// Semantic is the default preset: lenient date detection with a year range
// of [1900, 2100], a low threshold, comma-decimal numbers with periods kept
// so scientific notation survives.
func Semantic() Policy {
	return Policy{DateCellThreshold: 3, StrictDates: false, Decimal: util.DecimalComma}
}

// Strict is the older preset: pattern-matched dates, a higher threshold and
// period-grouped thousands.
func Strict() Policy {
	return Policy{DateCellThreshold: 5, StrictDates: true, Decimal: util.GroupedPeriods}
}

// PolicyByName resolves a preset name from config or the --policy flag.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "semantic":
		return Semantic(), nil
	case "strict":
		return Strict(), nil
	default:
		return Policy{}, fmt.Errorf("unknown policy preset: %q (want semantic or strict)", name)
	}
}
