package httpclient

import (
	"net/http"
	"net/url"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodySerialize(t *testing.T) {
	t.Run("given nil body, then nil bytes and no error", func(t *testing.T) {
		var b *Body
		payload, err := b.serialize(make(http.Header))
		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("given raw body, then bytes pass through regardless of content type", func(t *testing.T) {
		h := make(http.Header)
		h.Set("Content-Type", "application/json")
		payload, err := Raw([]byte("not json at all")).serialize(h)
		require.NoError(t, err)
		assert.Equal(t, []byte("not json at all"), payload)
	})

	t.Run("given fields with json content type, then body is json", func(t *testing.T) {
		h := make(http.Header)
		h.Set("Content-Type", "application/json")
		payload, err := Fields(map[string]any{"name": "ada", "age": 37}).serialize(h)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Equal(t, "ada", decoded["name"])
		assert.EqualValues(t, 37, decoded["age"])
	})

	t.Run("given fields with form content type, then body is urlencoded", func(t *testing.T) {
		h := make(http.Header)
		h.Set("Content-Type", "application/x-www-form-urlencoded")
		payload, err := Fields(map[string]any{"q": "a b", "page": 2}).serialize(h)
		require.NoError(t, err)

		values, err := url.ParseQuery(string(payload))
		require.NoError(t, err)
		assert.Equal(t, "a b", values.Get("q"))
		assert.Equal(t, "2", values.Get("page"))
	})

	t.Run("given fields with no content type, then json is used and header forced", func(t *testing.T) {
		h := make(http.Header)
		payload, err := Fields(map[string]any{"k": "v"}).serialize(h)
		require.NoError(t, err)
		assert.JSONEq(t, `{"k":"v"}`, string(payload))
		assert.Equal(t, "application/json", h.Get("Content-Type"))
	})

	t.Run("given fields with unrecognized content type, then json is used and header forced", func(t *testing.T) {
		h := make(http.Header)
		h.Set("Content-Type", "text/csv")
		payload, err := Fields(map[string]any{"k": "v"}).serialize(h)
		require.NoError(t, err)
		assert.JSONEq(t, `{"k":"v"}`, string(payload))
		assert.Equal(t, "application/json", h.Get("Content-Type"))
	})

	t.Run("given json content type with charset parameter, then json default applies", func(t *testing.T) {
		// The match is exact, so a parameterized content type takes the
		// default branch and the header is rewritten.
		h := make(http.Header)
		h.Set("Content-Type", "application/json; charset=utf-8")
		payload, err := Fields(map[string]any{"k": "v"}).serialize(h)
		require.NoError(t, err)
		assert.JSONEq(t, `{"k":"v"}`, string(payload))
		assert.Equal(t, "application/json", h.Get("Content-Type"))
	})
}
