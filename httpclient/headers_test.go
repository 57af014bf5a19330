package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeaders(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		callHeaders map[string]string
		wantHeader  map[string]string
	}{
		{
			name: "given no call headers, then defaults are applied",
			wantHeader: map[string]string{
				"User-Agent":      "courier/" + Version,
				"Accept-Encoding": "gzip, deflate",
				"Accept":          "*/*",
				"Connection":      "keep-alive",
			},
		},
		{
			name:        "given call header conflicting with default, then call header wins",
			callHeaders: map[string]string{"user-agent": "custom/2.0"},
			wantHeader:  map[string]string{"User-Agent": "custom/2.0"},
		},
		{
			name:        "given extra call header, then it is added to defaults",
			callHeaders: map[string]string{"X-Tenant": "acme"},
			wantHeader: map[string]string{
				"X-Tenant":   "acme",
				"User-Agent": "courier/" + Version,
			},
		},
		{
			name: "given basic auth, then Authorization header is set",
			opts: []Option{WithBasicAuth("user", "secret")},
			wantHeader: map[string]string{
				"Authorization": "Basic dXNlcjpzZWNyZXQ=",
			},
		},
		{
			name:        "given basic auth and caller Authorization, then auth wins",
			opts:        []Option{WithBasicAuth("user", "secret")},
			callHeaders: map[string]string{"Authorization": "Bearer stolen"},
			wantHeader: map[string]string{
				"Authorization": "Basic dXNlcjpzZWNyZXQ=",
			},
		},
		{
			name: "given replaced default headers, then built-ins are gone",
			opts: []Option{WithDefaultHeaders(map[string]string{"X-Only": "1"})},
			wantHeader: map[string]string{
				"X-Only":     "1",
				"User-Agent": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.opts...)
			require.NoError(t, err)

			h := client.buildHeaders(tt.callHeaders)
			for k, want := range tt.wantHeader {
				assert.Equal(t, want, h.Get(k), "header %s", k)
			}
		})
	}
}

func TestBasicAuthHeader(t *testing.T) {
	assert.Equal(t, "Basic dXNlcjpzZWNyZXQ=", basicAuthHeader("user", "secret"))
	assert.Equal(t, "Basic Og==", basicAuthHeader("", ""))
}
