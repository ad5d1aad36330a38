package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/participant"
)

const (
	callerHeader     = "X-Participant-Email"
	adminTokenHeader = "X-Admin-Token"
	maxBodyBytes     = 1 << 20

	// statusClientClosedRequest is nginx's code for a client that went away
	// before the response was ready.
	statusClientClosedRequest = 499
)

var errNoCaller = errors.New("missing " + callerHeader + " header")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response to JSON", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps domain errors to status codes. Anything unrecognised comes
// from the participant store and is reported as unavailable.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		logger.Error("Request failed", "error", err)
		message = "participant store unavailable, try again later"
	case statusClientClosedRequest:
		logger.Debug("Client went away before the response was ready", "error", err)
		message = "request canceled"
	}
	writeMessage(w, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoCaller):
		return http.StatusUnauthorized
	case errors.Is(err, court.ErrInvalidSelection),
		errors.Is(err, matchmaking.ErrInvalidLength),
		errors.Is(err, participant.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, participant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, participant.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	}
	return http.StatusServiceUnavailable
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		log.FromContext(r.Context()).Debug("Invalid request body", "error", err)
		writeMessage(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// courtParam parses an optional court query parameter.
func courtParam(r *http.Request, name string) (court.Court, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", nil
	}
	c, err := court.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", court.ErrInvalidSelection, err)
	}
	return c, nil
}

// public hides the phone number of participants who chose not to show it.
func public(p participant.Participant) participant.Participant {
	p.Phone = p.VisiblePhone()
	return p
}

func publicAll(ps []participant.Participant) []participant.Participant {
	out := make([]participant.Participant, len(ps))
	for i, p := range ps {
		out[i] = public(p)
	}
	return out
}
