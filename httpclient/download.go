package httpclient

import (
	"context"
	"io"
	"net/http"
	"os"
)

// Download fetches urlStr fully through the retry pipeline and writes the
// body to destPath. The body is buffered in memory; use DownloadStream for
// large payloads.
func (c *Client) Download(ctx context.Context, urlStr, destPath string, opts ...RequestOption) error {
	resp, err := c.do(ctx, http.MethodGet, urlStr, nil, buildRequestOptions(opts))
	if err != nil {
		return err
	}
	if err := os.WriteFile(destPath, resp.Content, 0o644); err != nil {
		return err
	}
	c.logger.Debug().Str("path", destPath).Int("bytes", len(resp.Content)).Msg("downloaded")
	return nil
}

// DownloadStream fetches urlStr in a single unretried exchange and streams
// the body to destPath chunk by chunk. progress, when non-nil, is called
// after each chunk with the total bytes written so far.
func (c *Client) DownloadStream(ctx context.Context, urlStr, destPath string, chunkSize int, progress func(written int64), opts ...RequestOption) error {
	stream, err := c.StreamResponse(ctx, urlStr, chunkSize, opts...)
	if err != nil {
		return err
	}
	defer stream.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var written int64
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return err
		}
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			return err
		}
		written += int64(len(chunk))
		if progress != nil {
			progress(written)
		}
	}

	if err := f.Close(); err != nil {
		return err
	}
	c.logger.Debug().Str("path", destPath).Int64("bytes", written).Msg("stream downloaded")
	return nil
}
