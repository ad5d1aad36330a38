package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

// pushEnvelope is the body Google Cloud Pub/Sub posts to push endpoints.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"` // base64-encoded msgpack payload
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// ParticipantChangedHandler receives participant-changed events pushed by
// Pub/Sub and runs the notification hook. Hook failures are logged by the
// processor and still acknowledged.
func (s *Server) ParticipantChangedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			logger.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		logger.Debug("Received participant-changed message", "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			logger.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			logger.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		if err := s.Processor.HandleMessage(r.Context(), rawData); err != nil {
			logger.Error("Rejected participant-changed message", "error", err, "messageId", envelope.Message.MessageID)
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		w.Write([]byte("OK"))
	}
}
