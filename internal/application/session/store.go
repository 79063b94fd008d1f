// Package session holds the client-side session: the signed-in user's token,
// pending OTP email, profile, leadership level and role. State lives in the
// client's cookies; the token is mirrored into a separate credential cookie
// that the route guard reads.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

const (
	CredentialCookie = "auth_token"
	StateCookie      = "portal_state"
)

type Options struct {
	MaxAge time.Duration
	Secure bool
	Logger *slog.Logger // nil uses slog.Default()
}

// Store is the session of one client. It is not safe for concurrent use; each
// request loads its own.
type Store struct {
	jar       jar.Jar
	opts      Options
	state     domain.Session
	listeners []func(level string)
}

// Load restores the session persisted in j. A malformed state cookie yields
// an empty session. The credential mirror is authoritative for the token.
func Load(j jar.Jar, opts Options) *Store {
	s := &Store{jar: j, opts: opts}
	if raw, ok := j.Get(StateCookie); ok {
		if err := decodeState(raw, &s.state); err != nil {
			s.state = domain.Session{}
		}
	}
	mirror, _ := j.Get(CredentialCookie)
	s.state.Token = mirror
	return s
}

// HasCredential reports whether the credential cookie is present in j.
func HasCredential(j jar.Jar) bool {
	_, ok := j.Get(CredentialCookie)
	return ok
}

// Session returns a snapshot of the current state.
func (s *Store) Session() domain.Session { return s.state }

// OnLevelChange registers fn to run whenever the leadership level changes to
// a new non-empty value.
func (s *Store) OnLevelChange(fn func(level string)) {
	s.listeners = append(s.listeners, fn)
}

// SetToken updates the token and its credential mirror.
func (s *Store) SetToken(token string) {
	s.setToken(token)
	s.save()
}

func (s *Store) SetEmail(email string) {
	s.state.Email = email
	s.save()
}

func (s *Store) SetProfile(p domain.Profile) {
	s.state.Profile = p
	s.save()
}

func (s *Store) SetLeadershipLevel(level string) {
	s.setLevel(level)
	s.save()
}

func (s *Store) SetRole(role string) {
	s.state.Role = role
	s.save()
}

// Commit applies an add-user result: token (with mirror), profile,
// leadership level, role, then persists.
func (s *Store) Commit(acc domain.Account) {
	s.setToken(acc.Token)
	s.state.Profile = acc.User
	user := acc.User.Lookup()
	if lvl := user.LeadershipLevel(); lvl != "" {
		s.setLevel(lvl)
	}
	if role := user.String(domain.PathRole); role != "" {
		s.state.Role = role
	}
	s.save()
}

// Reset clears the whole session, including the credential mirror.
func (s *Store) Reset() {
	s.state = domain.Session{}
	s.jar.Delete(StateCookie)
	s.jar.Delete(CredentialCookie)
}

func (s *Store) setToken(token string) {
	s.state.Token = token
	if token == "" {
		s.jar.Delete(CredentialCookie)
		return
	}
	s.jar.Set(s.cookie(CredentialCookie, token))
}

func (s *Store) setLevel(level string) {
	if s.state.LeadershipLevel == level {
		return
	}
	s.state.LeadershipLevel = level
	if level == "" {
		return
	}
	for _, fn := range s.listeners {
		fn(level)
	}
}

func (s *Store) save() {
	persisted := s.state
	persisted.Token = ""
	if isEmpty(persisted) {
		s.jar.Delete(StateCookie)
		return
	}
	raw, err := encodeState(persisted)
	if err != nil {
		s.logger().Error("encode session state", "error", err)
		return
	}
	s.jar.Set(s.cookie(StateCookie, raw))
}

func (s *Store) logger() *slog.Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}
	return slog.Default()
}

func (s *Store) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.opts.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func isEmpty(sess domain.Session) bool {
	return sess.Email == "" && len(sess.Profile) == 0 && sess.LeadershipLevel == "" && sess.Role == ""
}

func encodeState(sess domain.Session) (string, error) {
	buf, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func decodeState(raw string, out *domain.Session) error {
	buf, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, out)
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the request's session store.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Store)
	return s, ok
}
