package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// Body is the request body, either raw bytes passed through unchanged or
// structured fields serialized according to the request's Content-Type.
// Construct with Raw or Fields; a nil *Body means no body.
type Body struct {
	raw    []byte
	fields map[string]any
	isRaw  bool
}

// Raw builds a body from raw bytes. The bytes are sent unchanged regardless
// of the Content-Type header.
func Raw(data []byte) *Body {
	return &Body{raw: data, isRaw: true}
}

// Fields builds a body from structured fields. Serialization is selected by
// the request's Content-Type header:
//
//   - "application/json" encodes the fields as JSON
//   - "application/x-www-form-urlencoded" encodes key=value pairs
//   - anything else, including no header at all, encodes as JSON and
//     forces the Content-Type header to "application/json"
//
// Unrecognized content types fall back to JSON; no error is raised.
func Fields(fields map[string]any) *Body {
	return &Body{fields: fields}
}

// serialize produces the wire bytes for the body. For Fields bodies it may
// rewrite the Content-Type header in place (the JSON default case).
func (b *Body) serialize(headers http.Header) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	if b.isRaw {
		return b.raw, nil
	}

	switch strings.ToLower(strings.TrimSpace(headers.Get("Content-Type"))) {
	case "application/json":
		return json.Marshal(b.fields)
	case "application/x-www-form-urlencoded":
		return []byte(encodeForm(b.fields)), nil
	default:
		headers.Set("Content-Type", "application/json")
		return json.Marshal(b.fields)
	}
}

func encodeForm(fields map[string]any) string {
	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}
