package availability

// Service tags recognized by the duration estimator.
const (
	ServiceNails         = "Nails"
	ServiceWash          = "Wash"
	ServiceCut           = "Cut"
	ServiceDeshedding    = "Deshedding"
	ServiceTickTreatment = "Tick Treatment"
)

// EstimateDuration maps a selected set of service tags to a duration in
// minutes. The rule chain is ordered and first-match-wins; matching itself
// is order-insensitive over the set. Returns ok=false when no rule matches
// (caller must require manual entry).
func EstimateDuration(services []string) (minutes int, ok bool) {
	set := make(map[string]bool, len(services))
	for _, s := range services {
		set[s] = true
	}

	switch {
	case len(set) == 1 && set[ServiceNails]:
		return 15, true
	case set[ServiceDeshedding] || set[ServiceTickTreatment] || len(set) >= 5:
		return 60, true
	case set[ServiceWash] && set[ServiceCut]:
		return 45, true
	case set[ServiceWash] || set[ServiceCut] || len(set) >= 2:
		return 30, true
	default:
		return 0, false
	}
}
