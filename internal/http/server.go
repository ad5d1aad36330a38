package http

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/mauv0809/permutatum/internal/config"
)

func NewServer(cfg config.Config, services Services) *Server {
	server := &Server{
		Services: services,
		Cfg:      cfg,
		Router:   http.NewServeMux(),
	}
	if cfg.Search.RateLimit > 0 {
		burst := cfg.Search.RateBurst
		if burst < 1 {
			burst = 1
		}
		server.limiter = NewIPRateLimiter(rate.Limit(cfg.Search.RateLimit), burst)
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, s.adminMiddleware)
	searching := []Middleware{paramsMiddleware}
	if s.limiter != nil {
		searching = append(searching, RateLimitMiddleware(s.limiter))
	}

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/courts", Chain(s.ListCourtsHandler(), paramsMiddleware))

	s.Router.Handle("GET /api/participants", Chain(s.ListParticipantsHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/participants/recent", Chain(s.RecentParticipantsHandler(), searching...))
	s.Router.Handle("POST /api/participants", Chain(s.RegisterHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/me", Chain(s.MeHandler(), paramsMiddleware))
	s.Router.Handle("PUT /api/me", Chain(s.EditMeHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /api/me", Chain(s.DeleteMeHandler(), paramsMiddleware))
	s.Router.Handle("PUT /api/admin/participants/{id}/email", Chain(s.ChangeEmailHandler(), paramsMiddleware, s.adminMiddleware))

	s.Router.Handle("POST /api/search/cycles", Chain(s.SearchCyclesHandler(), searching...))
	s.Router.Handle("POST /api/search/gaps", Chain(s.SearchGapsHandler(), searching...))
	s.Router.Handle("GET /api/search/unpaired", Chain(s.UnpairedHandler(), searching...))
	s.Router.Handle("GET /api/search/interested", Chain(s.InterestedHandler(), searching...))
	s.Router.Handle("GET /api/search/destinations", Chain(s.DestinationsHandler(), searching...))
	s.Router.Handle("GET /api/stats", Chain(s.StatsHandler(), searching...))

	s.Router.Handle("GET /api/notifications", Chain(s.ListNotificationsHandler(), paramsMiddleware))
	s.Router.Handle("POST /api/notifications/read", Chain(s.MarkNotificationsReadHandler(), paramsMiddleware))
	s.Router.Handle("POST /api/refresh", Chain(s.RefreshHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/usage", Chain(s.UsageHandler(), paramsMiddleware))

	s.Router.Handle("POST /events/participant-changed", Chain(s.ParticipantChangedHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
