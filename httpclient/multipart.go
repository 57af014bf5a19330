package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// PostMultipart uploads a multipart/form-data body: one part per field and
// one part per file, with a randomly generated boundary token. Files are
// keyed by form field name and read fully into memory, so the upload goes
// through the retry pipeline like any buffered request. Each file part
// carries a Content-Type guessed from its extension.
func (c *Client) PostMultipart(ctx context.Context, urlStr string, fields map[string]string, files map[string]string, opts ...RequestOption) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := w.SetBoundary(boundary); err != nil {
		return nil, err
	}

	for _, key := range sortedKeys(fields) {
		if err := w.WriteField(key, fields[key]); err != nil {
			return nil, err
		}
	}

	for _, key := range sortedKeys(files) {
		path := files[key]
		filename := filepath.Base(path)

		contentType := mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, key, filename))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	ro := buildRequestOptions(opts)
	ro.setHeader("Content-Type", w.FormDataContentType())
	return c.do(ctx, http.MethodPost, urlStr, Raw(buf.Bytes()), ro)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
