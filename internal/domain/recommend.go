package domain

// Recommendation thresholds on the success rate (percent).
const (
	TargetSuccessRate    = 90.0
	ExcellentSuccessRate = 95.0
)

// Recommendations derives the report's action items from a summary.
func Recommendations(s Summary) []string {
	var recs []string
	rate := s.SuccessRate()
	if s.InvalidCount > 0 {
		recs = append(recs, "Fix or replace invalid links immediately")
	}
	if s.PlaceholderCount > 0 {
		recs = append(recs, "Replace placeholder URLs with real sources")
	}
	if rate < TargetSuccessRate {
		recs = append(recs, "Improve overall link quality - target 90%+ success rate")
	}
	if rate >= ExcellentSuccessRate {
		recs = append(recs, "Excellent link quality! Keep up the good work!")
	}
	return recs
}
