package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/wordsanctuary/training-portal/internal/application/transfer"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

const maxReceiverBody = 64 << 10

// ReceiverHandler accepts profile payloads posted by the central frontend
// and parks them in the transfer channel for the receiver page.
type ReceiverHandler struct {
	channel *transfer.Channel
	logger  *slog.Logger
}

func NewReceiverHandler(channel *transfer.Channel, logger *slog.Logger) *ReceiverHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiverHandler{channel: channel, logger: logger}
}

func (h *ReceiverHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReceiverBody))
	var payload any
	if err == nil {
		err = json.Unmarshal(body, &payload)
	}
	if err == nil {
		err = h.channel.Publish(jar.FromRequest(w, r), payload)
	}
	if err != nil {
		h.logger.Warn("data receiver", "error", err)
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Del("Access-Control-Allow-Credentials")
		hdr.Del("Access-Control-Allow-Methods")
		hdr.Del("Access-Control-Allow-Headers")
		writeJSON(w, http.StatusInternalServerError, ReceiverEnvelope{Message: "Failed to process JSON data"})
		return
	}
	writeJSON(w, http.StatusOK, ReceiverEnvelope{Success: true})
}
