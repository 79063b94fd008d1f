// Package transfer hands a profile payload from the inbound data-receiver
// endpoint to the page that consumes it. The payload rides in a short-lived,
// single-slot cookie and is read at most once.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

const Cookie = "profile_data"

var (
	ErrNoPayload      = fmt.Errorf("no transfer payload: %w", domain.ErrNotFound)
	ErrInvalidPayload = errors.New("transfer payload is not a json object")
)

type Channel struct {
	maxAge time.Duration
}

// New returns a channel whose payloads expire after maxAge.
func New(maxAge time.Duration) *Channel {
	return &Channel{maxAge: maxAge}
}

// Publish serializes payload into the slot, replacing any previous payload.
func (c *Channel) Publish(j jar.Jar, payload any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode transfer payload: %w", err)
	}
	j.Set(&http.Cookie{
		Name:     Cookie,
		Value:    url.QueryEscape(string(buf)),
		Path:     "/",
		MaxAge:   int(c.maxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Consume reads and deletes the payload. The slot is emptied whether or not
// the payload parses.
func (c *Channel) Consume(j jar.Jar) (domain.Profile, error) {
	raw, ok := j.Get(Cookie)
	if !ok {
		return nil, ErrNoPayload
	}
	j.Delete(Cookie)

	text, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(text), &p); err != nil || p == nil {
		return nil, ErrInvalidPayload
	}
	return p, nil
}
