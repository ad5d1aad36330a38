package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/mauv0809/permutatum/internal/search"
)

// participantRequest is the registration and self-service edit payload.
type participantRequest struct {
	Name         string             `json:"name"`
	Grade        participant.Grade  `json:"grade"`
	Origin       court.Court        `json:"origin"`
	Rank1        court.Court        `json:"rank1"`
	Rank2        court.Court        `json:"rank2"`
	Rank3        court.Court        `json:"rank3"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	PhoneVisible bool               `json:"phone_visible"`
	Status       participant.Status `json:"status"`
}

func (req participantRequest) participant() participant.Participant {
	return participant.Participant{
		Name:         req.Name,
		Grade:        req.Grade,
		Origin:       req.Origin,
		Rank1:        req.Rank1,
		Rank2:        req.Rank2,
		Rank3:        req.Rank3,
		Email:        req.Email,
		Phone:        req.Phone,
		PhoneVisible: req.PhoneVisible,
		Status:       req.Status,
	}
}

type courtInfo struct {
	Court  court.Court `json:"court"`
	Domain string      `json:"domain"`
}

// caller resolves the participant named by the X-Participant-Email header.
func (s *Server) caller(r *http.Request) (*participant.Participant, error) {
	email := strings.TrimSpace(r.Header.Get(callerHeader))
	if email == "" {
		return nil, errNoCaller
	}
	return s.Participants.GetByEmail(r.Context(), email)
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListCourtsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courts := court.All()
		out := make([]courtInfo, len(courts))
		for i, c := range courts {
			out[i] = courtInfo{Court: c, Domain: c.Domain()}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ListParticipantsHandler returns the active snapshot searches run on.
func (s *Server) ListParticipantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := s.Snapshots.Load(r.Context())
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %w", search.ErrStoreUnavailable, err))
			return
		}
		writeJSON(w, http.StatusOK, publicAll(snapshot))
	}
}

func (s *Server) RecentParticipantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, ok := intParam(r, "days", search.DefaultRecentDays)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		recent, err := s.Search.Recent(r.Context(), days)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, publicAll(recent))
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req participantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		created, err := s.Registry.Register(r.Context(), req.participant())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !court.IsInstitutionalEmail(created.Email) {
			log.FromContext(r.Context()).Info("Participant registered with a non-institutional email", "id", created.ID)
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.caller(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, me)
	}
}

func (s *Server) EditMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.caller(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req participantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		updated, err := s.Registry.Edit(r.Context(), me.ID, req.participant())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.caller(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.Registry.Delete(r.Context(), me.ID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ChangeEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		id := r.PathValue("id")
		if err := s.Registry.ChangeEmail(r.Context(), id, req.Email); err != nil {
			writeError(w, r, err)
			return
		}
		updated, err := s.Participants.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ListNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.caller(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		unread, err := s.Inbox.ListUnread(r.Context(), me.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, unread)
	}
}

func (s *Server) MarkNotificationsReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.caller(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		marked, err := s.Inbox.MarkAllRead(r.Context(), me.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
	}
}

// RefreshHandler drops the cached snapshot so the next search reads the store.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Snapshots.Invalidate(r.Context())
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Snapshot cache cleared!")
	}
}

func (s *Server) UsageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Usage.GetAll()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, counters)
	}
}
