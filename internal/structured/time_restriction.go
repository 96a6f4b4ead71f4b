package structured

// Dates used for open interval sides. CQL date comparisons against these
// sentinels behave like unbounded sides for any clinically plausible date.
const (
	earliestDate = "1900-01-01"
	latestDate   = "2100-12-31"
)

// TimeRestriction bounds a criterion to a date period. Either bound may be
// empty; an empty bound leaves that side of the interval open.
type TimeRestriction struct {
	AfterDate  string `json:"afterDate,omitempty"`
	BeforeDate string `json:"beforeDate,omitempty"`
}

// toModifier converts the restriction into a modifier over the given
// resource-specific date path.
func (t TimeRestriction) toModifier(timeRestrictionPath string) (Modifier, error) {
	if timeRestrictionPath == "" {
		return nil, NewUnsupportedModifierError(
			"time restriction on a mapping without a time restriction path")
	}
	after := t.AfterDate
	if after == "" {
		after = earliestDate
	}
	before := t.BeforeDate
	if before == "" {
		before = latestDate
	}
	return NewTimeRestrictionModifier(timeRestrictionPath, after, before), nil
}
