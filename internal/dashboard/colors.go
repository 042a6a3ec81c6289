package dashboard

// ColorRule colors a row whose value is below UpTo.
type ColorRule struct {
	UpTo   float64 `json:"upTo"`
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Suffix string  `json:"suffix"`
}

// Colors overrides the default colors of a row. Empty fields mean no override.
type Colors struct {
	Label  string `json:"label,omitempty"`
	Value  string `json:"value,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// ResolveColors walks rules in order and picks the first one whose UpTo is
// above v. A value that is not below any bucket gets the last rule.
func ResolveColors(v Value, rules []ColorRule) Colors {
	if len(rules) == 0 {
		return Colors{}
	}

	n := v.threshold()
	var picked ColorRule
	for _, r := range rules {
		picked = r
		if n < r.UpTo {
			break
		}
	}
	return Colors{Label: picked.Label, Value: picked.Value, Suffix: picked.Suffix}
}
