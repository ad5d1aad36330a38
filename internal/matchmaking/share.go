package matchmaking

import (
	"fmt"
	"net/url"
	"strings"
)

const shareBase = "https://wa.me/?text="

// ShareLink builds a WhatsApp share link carrying text.
func ShareLink(text string) string {
	return shareBase + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

var cycleNames = map[int]string{2: "Direct swap", 3: "Triangulation", 4: "Quadrangulation"}

// ShareText is a plain-text summary of the cycle.
func (c Cycle) ShareText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s found*\n\nSequence: *%s*\n", cycleNames[c.Length()], c.Sequence)
	for _, m := range c.Members {
		fmt.Fprintf(&b, "- %s (%s)\n", m.Participant.Name, m.Participant.Origin)
	}
	return b.String()
}

// ShareText is a plain-text summary of the gap asking for the missing participant.
func (g Gap) ShareText() string {
	if g.Length == 2 {
		return fmt.Sprintf("*Participant awaiting a match*\n\nRoute: *%s*\nMissing: *%s*\n\nKnow someone at %s? Share this!",
			g.Sequence, g.Description, g.Missing.From)
	}
	return fmt.Sprintf("*Almost complete %s*\n\nSequence: *%s*\nMissing: *%s*\n\n%d participants already fit. Only one more is needed to close the cycle!",
		strings.ToLower(cycleNames[g.Length]), g.Sequence, g.Description, len(g.Known))
}

// ShareText summarises every participant waiting on the route.
func (rg RouteGroup) ShareText() string {
	return fmt.Sprintf("*Participants awaiting a match*\n\nRoute: *%s*\n%d participant(s) from %s want to move to %s, but nobody from %s has asked for %s yet.\n\nKnow someone at %s? Share this!",
		rg.Route, len(rg.Gaps), rg.Origin, rg.Destination, rg.Destination, rg.Origin, rg.Destination)
}
