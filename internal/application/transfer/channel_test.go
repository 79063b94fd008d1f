package transfer

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

func TestPublishConsume_OnceOnly(t *testing.T) {
	j := jar.NewMemory(nil)
	ch := New(600 * time.Second)

	require.NoError(t, ch.Publish(j, map[string]any{"name": "Ada Lovelace", "cached_bio": map[string]any{"gender": "FEMALE"}}))

	p, err := ch.Consume(j)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.String(domain.PathName))
	assert.Equal(t, "FEMALE", p.String(domain.PathBioGender))

	_, err = ch.Consume(j)
	assert.ErrorIs(t, err, ErrNoPayload)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPublish_LastWriteWins(t *testing.T) {
	j := jar.NewMemory(nil)
	ch := New(600 * time.Second)
	require.NoError(t, ch.Publish(j, map[string]any{"name": "first"}))
	require.NoError(t, ch.Publish(j, map[string]any{"name": "second"}))

	p, err := ch.Consume(j)
	require.NoError(t, err)
	assert.Equal(t, "second", p.String(domain.PathName))
}

func TestConsume_ExpiresAfterLifetime(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j := jar.NewMemory(func() time.Time { return now })
	ch := New(600 * time.Second)
	require.NoError(t, ch.Publish(j, map[string]any{"name": "Ada"}))

	now = now.Add(601 * time.Second)

	_, err := ch.Consume(j)
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestConsume_InvalidPayloadStillDeleted(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not json", value: "not%20json"},
		{name: "json array", value: "%5B1%2C2%5D"},
		{name: "json null", value: "null"},
		{name: "bad escape", value: "%zz"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := jar.NewMemory(nil)
			j.Set(&http.Cookie{Name: Cookie, Value: tc.value})

			_, err := New(time.Minute).Consume(j)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			_, ok := j.Get(Cookie)
			assert.False(t, ok)
		})
	}
}

func TestPublish_CookieAttributes(t *testing.T) {
	j := jar.NewMemory(nil)
	require.NoError(t, New(600*time.Second).Publish(j, map[string]any{"email": "a@b.com"}))

	c, ok := j.Cookie(Cookie)
	require.True(t, ok)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 600, c.MaxAge)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.NotContains(t, c.Value, `"`)
	assert.NotContains(t, c.Value, ",")
}
