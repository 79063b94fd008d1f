// Package jar abstracts the cookie-like client storage the portal keeps its
// state in. HTTP binds a jar to one request/response pair; Memory keeps
// cookies in process and enforces max-age against a clock.
package jar

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Jar reads and writes named cookies. Get reports absent for missing,
// expired and empty cookies alike.
type Jar interface {
	Get(name string) (string, bool)
	Set(c *http.Cookie)
	Delete(name string)
}

// HTTP is a Jar over an incoming request and its response. Writes are
// visible to later reads in the same request, and only the last write per
// cookie name is sent to the client.
type HTTP struct {
	w       http.ResponseWriter
	r       *http.Request
	pending map[string]*http.Cookie
}

func FromRequest(w http.ResponseWriter, r *http.Request) *HTTP {
	return &HTTP{w: w, r: r, pending: make(map[string]*http.Cookie)}
}

func (j *HTTP) Get(name string) (string, bool) {
	if c, ok := j.pending[name]; ok {
		if c.MaxAge < 0 || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
	if j.r == nil {
		return "", false
	}
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (j *HTTP) Set(c *http.Cookie) {
	if c == nil {
		return
	}
	j.pending[c.Name] = c
	if j.w == nil {
		return
	}
	dropSetCookie(j.w.Header(), c.Name)
	http.SetCookie(j.w, c)
}

// Delete expires the cookie at path "/".
func (j *HTTP) Delete(name string) {
	j.Set(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
}

func dropSetCookie(h http.Header, name string) {
	values := h.Values("Set-Cookie")
	if len(values) == 0 {
		return
	}
	prefix := name + "="
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}

// Memory is an in-process Jar. Cookies with a positive MaxAge expire once
// the clock passes their lifetime.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	cookie  http.Cookie
	expires time.Time
}

// NewMemory returns an empty jar. A nil clock uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now, entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(name string) (string, bool) {
	c, ok := m.Cookie(name)
	if !ok || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Cookie returns the live cookie with all its attributes.
func (m *Memory) Cookie(name string) (*http.Cookie, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, name)
		return nil, false
	}
	c := e.cookie
	return &c, true
}

func (m *Memory) Set(c *http.Cookie) {
	if c == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.MaxAge < 0 {
		delete(m.entries, c.Name)
		return
	}
	e := memoryEntry{cookie: *c}
	switch {
	case c.MaxAge > 0:
		e.expires = m.now().Add(time.Duration(c.MaxAge) * time.Second)
	case !c.Expires.IsZero():
		e.expires = c.Expires
	}
	m.entries[c.Name] = e
}

func (m *Memory) Delete(name string) {
	m.Set(&http.Cookie{Name: name, MaxAge: -1})
}
