package stats

// Achievement is a badge unlocked once its predicate holds for a player's stats.
type Achievement struct {
	ID       string
	Icon     string
	Unlocked func(Stats) bool `json:"-"`
}

// Catalog is the fixed list of achievements, in display order.
var Catalog = []Achievement{
	{ID: "first_win", Icon: "🏆", Unlocked: func(s Stats) bool { return s.TotalWins >= 1 }},
	{ID: "five_wins", Icon: "⭐", Unlocked: func(s Stats) bool { return s.TotalWins >= 5 }},
	{ID: "ten_wins", Icon: "👑", Unlocked: func(s Stats) bool { return s.TotalWins >= 10 }},
	{ID: "perfect_game", Icon: "💯", Unlocked: func(s Stats) bool { return s.PerfectGames >= 1 }},
	{ID: "streak_master", Icon: "🔥", Unlocked: func(s Stats) bool { return s.MaxStreak >= 5 }},
	{ID: "hint_master", Icon: "💡", Unlocked: func(s Stats) bool { return s.HintsUsed >= 10 }},
	{ID: "points_collector", Icon: "💰", Unlocked: func(s Stats) bool { return s.TotalPoints >= 1000 }},
}

// Evaluate returns the catalog entries whose predicate holds for s.
func Evaluate(s Stats) []Achievement {
	out := []Achievement{}
	for _, a := range Catalog {
		if a.Unlocked(s) {
			out = append(out, a)
		}
	}
	return out
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
