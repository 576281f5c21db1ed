// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imagecache

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Loader opens the raw bytes behind an image URL.
type Loader interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, rawURL string) (io.ReadCloser, error)

// Open calls f.
func (f LoaderFunc) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return f(ctx, rawURL)
}

// SourceLoader understands data:, http(s):// and file:// URLs as well as
// plain file paths.
type SourceLoader struct {
	// Client performs http(s) requests. Nil means http.DefaultClient.
	Client *http.Client

	// Dir resolves relative file paths. Empty means the working directory.
	Dir string
}

// Open implements Loader.
func (l *SourceLoader) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	switch {
	case rawURL == "":
		return nil, fmt.Errorf("%w: empty url", ErrUnsupportedSource)
	case strings.HasPrefix(rawURL, "data:"):
		data, err := decodeDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return l.get(ctx, rawURL)
	case strings.HasPrefix(rawURL, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("imagecache: parse %q: %w", rawURL, err)
		}
		return os.Open(u.Path)
	case strings.Contains(rawURL, "://"):
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, rawURL)
	}

	path := rawURL
	if l.Dir != "" && !strings.HasPrefix(path, "/") {
		path = l.Dir + "/" + path
	}
	return os.Open(path)
}

func (l *SourceLoader) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("imagecache: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagecache: get %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("imagecache: get %s: %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}

// decodeDataURL decodes an RFC 2397 data URL.
func decodeDataURL(rawURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data url", ErrUnsupportedSource)
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers strip the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("imagecache: data url: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("imagecache: data url: %w", err)
	}
	return []byte(s), nil
}
