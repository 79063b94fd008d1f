package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/wordsanctuary/training-portal/internal/application/bootstrap"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/transport/http/view"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// ReceiverEnvelope is the inbound data-receiver reply.
type ReceiverEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Renderer draws a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data view.Page) error
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}

// statusFor maps a domain error to the page's HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func render(w http.ResponseWriter, views Renderer, status int, page string, data view.Page) {
	if err := views.Render(w, status, page, data); err != nil {
		slog.Error("render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// refresh schedules a client-side navigation. The delay is rounded up to
// whole seconds.
func refresh(w http.ResponseWriter, nav *bootstrap.Navigation) {
	secs := int(math.Ceil(nav.After.Seconds()))
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", secs, nav.To))
}

// respond turns a bootstrap outcome into a redirect or a rendered page.
// Immediate and external navigations redirect; delayed ones render page
// with a Refresh directive.
func respond(w http.ResponseWriter, r *http.Request, views Renderer, page string, data any, out bootstrap.Outcome) {
	if out.Next != nil && (out.Next.External || out.Next.After <= 0) {
		http.Redirect(w, r, out.Next.To, http.StatusSeeOther)
		return
	}
	p := view.Page{Message: out.Message, IsError: !out.OK(), Data: data}
	if out.Next != nil {
		refresh(w, out.Next)
		p.Redirecting = true
	}
	render(w, views, statusFor(out.Err), page, p)
}
