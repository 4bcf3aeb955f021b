package calendar

// Streak counts consecutive days ending at today that appear in dates.
// It is zero unless today itself is present.
func Streak(dates map[string]struct{}, today string) int {
	streak := 0
	cur := today
	for {
		if _, ok := dates[cur]; !ok {
			return streak
		}
		streak++
		prev, err := PrevDay(cur)
		if err != nil {
			return streak
		}
		cur = prev
	}
}

// DateSet builds the lookup Streak expects.
func DateSet(dates []string) map[string]struct{} {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}
