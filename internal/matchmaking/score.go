package matchmaking

// Compatibility levels of a direct swap.
const (
	CompatibilityHigh   = "high"
	CompatibilityMedium = "medium"
	CompatibilityLow    = "low"
)

// Compatibility rates how strongly both sides of a direct swap want it.
type Compatibility struct {
	Points int    `json:"points"`
	Level  string `json:"level"`
}

func rankPoints(rank int) int {
	switch rank {
	case 1:
		return 3
	case 2:
		return 2
	case 3:
		return 1
	}
	return 0
}

// CompatibilityScore sums 3/2/1 points for a rank 1/2/3 wish on each side.
// Five points or more is high, three or more is medium. Only direct swaps are
// scored; ok is false for longer cycles.
func CompatibilityScore(c Cycle) (Compatibility, bool) {
	if c.Length() != 2 {
		return Compatibility{}, false
	}
	points := rankPoints(c.Members[0].Rank) + rankPoints(c.Members[1].Rank)
	level := CompatibilityLow
	switch {
	case points >= 5:
		level = CompatibilityHigh
	case points >= 3:
		level = CompatibilityMedium
	}
	return Compatibility{Points: points, Level: level}, true
}
