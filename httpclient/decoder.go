package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// decodeContent reverses the response Content-Encoding. The match is a
// case-insensitive substring check: "gzip" decompresses with gzip, "deflate"
// raw-inflates, anything else returns the bytes unchanged.
//
// A malformed compressed stream yields a *DecodeError, which the retry
// controller treats like a transport fault.
func decodeContent(header http.Header, raw []byte) ([]byte, error) {
	encoding := strings.ToLower(header.Get("Content-Encoding"))

	switch {
	case strings.Contains(encoding, "gzip"):
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		defer r.Close()
		decoded, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		return decoded, nil

	case strings.Contains(encoding, "deflate"):
		r := flate.NewReader(bytes.NewReader(raw))
		defer r.Close()
		decoded, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecodeError{Encoding: encoding, Err: err}
		}
		return decoded, nil

	default:
		return raw, nil
	}
}
