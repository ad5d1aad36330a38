package http

import (
	"net/http"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/matchmaking"
)

// searchRequest is the body of the cycle and gap searches. Seen carries the
// keys the client already holds from earlier pages.
type searchRequest struct {
	Origin       court.Court       `json:"origin"`
	Destination  court.Court       `json:"destination"`
	Length       int               `json:"length"`
	PriorityOnly bool              `json:"priority_only"`
	Limit        *int              `json:"limit,omitempty"`
	Seen         []matchmaking.Key `json:"seen,omitempty"`
}

func (s *Server) query(req searchRequest) matchmaking.Query {
	limit := s.Cfg.Search.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	return matchmaking.Query{
		Origin:       req.Origin,
		Destination:  req.Destination,
		Length:       req.Length,
		PriorityOnly: req.PriorityOnly,
		Limit:        limit,
	}
}

type cycleView struct {
	matchmaking.Cycle
	Compatibility *matchmaking.Compatibility `json:"compatibility,omitempty"`
	ShareLink     string                     `json:"share_link"`
}

type cycleSearchResponse struct {
	Cycles    []cycleView       `json:"cycles"`
	Truncated bool              `json:"truncated"`
	Keys      []matchmaking.Key `json:"keys"`
}

type gapView struct {
	matchmaking.Gap
	ShareLink string `json:"share_link"`
}

type gapSearchResponse struct {
	Gaps      []gapView         `json:"gaps"`
	Truncated bool              `json:"truncated"`
	Keys      []matchmaking.Key `json:"keys"`
}

type routeGroupView struct {
	matchmaking.RouteGroup
	ShareLink string `json:"share_link"`
}

type unpairedResponse struct {
	Groups    []routeGroupView `json:"groups"`
	Total     int              `json:"total"`
	Truncated bool             `json:"truncated"`
}

func publicCycle(c matchmaking.Cycle) cycleView {
	members := make([]matchmaking.Member, len(c.Members))
	for i, m := range c.Members {
		members[i] = matchmaking.Member{Participant: public(m.Participant), Rank: m.Rank}
	}
	c.Members = members
	view := cycleView{Cycle: c, ShareLink: matchmaking.ShareLink(c.ShareText())}
	if score, ok := matchmaking.CompatibilityScore(c); ok {
		view.Compatibility = &score
	}
	return view
}

func publicGap(g matchmaking.Gap) matchmaking.Gap {
	g.Known = publicAll(g.Known)
	return g
}

func (s *Server) SearchCyclesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := s.Search.Cycles(r.Context(), s.query(req), req.Seen)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := cycleSearchResponse{Cycles: make([]cycleView, len(res.Cycles)), Truncated: res.Truncated, Keys: res.Keys()}
		for i, c := range res.Cycles {
			out.Cycles[i] = publicCycle(c)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) SearchGapsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		res, err := s.Search.Gaps(r.Context(), s.query(req), req.Seen)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := gapSearchResponse{Gaps: make([]gapView, len(res.Gaps)), Truncated: res.Truncated, Keys: res.Keys()}
		for i, g := range res.Gaps {
			out.Gaps[i] = gapView{Gap: publicGap(g), ShareLink: matchmaking.ShareLink(g.ShareText())}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) UnpairedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin, err := courtParam(r, "origin")
		if err != nil {
			writeError(w, r, err)
			return
		}
		destination, err := courtParam(r, "destination")
		if err != nil {
			writeError(w, r, err)
			return
		}
		limit, ok := intParam(r, "limit", 0)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "limit must be an integer")
			return
		}

		res, err := s.Search.Unpaired(r.Context(), origin, destination, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := unpairedResponse{Groups: make([]routeGroupView, len(res.Groups)), Total: res.Total, Truncated: res.Truncated}
		for i, group := range res.Groups {
			for j := range group.Gaps {
				group.Gaps[j] = publicGap(group.Gaps[j])
			}
			out.Groups[i] = routeGroupView{RouteGroup: group, ShareLink: matchmaking.ShareLink(group.ShareText())}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// InterestedHandler lists who wants to move to ?court=, defaulting to the
// caller's origin.
func (s *Server) InterestedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := courtParam(r, "court")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if c == "" {
			me, err := s.caller(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			c = me.Origin
		}
		interested, err := s.Search.Interested(r.Context(), c)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := make([]graph.Interest, len(interested))
		for i, in := range interested {
			out[i] = graph.Interest{Participant: public(in.Participant), Rank: in.Rank}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) DestinationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.caller(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		available, err := s.Search.Destinations(r.Context(), *me)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, publicAll(available))
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		top, ok := intParam(r, "top", 10)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "top must be an integer")
			return
		}
		stats, err := s.Search.Stats(r.Context(), top)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
