package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mailcraft/internal/assets"
)

const (
	fetchTimeout = 30 * time.Second
	maxRedirects = 5
)

// image is an upload candidate and the extension its media type implies.
type image struct {
	data []byte
	ext  string
}

func (s *Server) uploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.assets == nil {
		return mcp.NewToolResultError(errNoAssets.Error()), nil
	}
	src, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	img, err := loadImage(ctx, src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := req.GetString("filename", "")
	if name == "" {
		name = filenameFromURL(src, img.ext)
	}
	a, err := s.assets.Save(assets.SanitizeName(name), img.data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

// loadImage accepts a base64 data URI or an http(s) URL.
func loadImage(ctx context.Context, src string) (image, error) {
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		return parseDataURI(rest)
	}
	return download(ctx, src)
}

// parseDataURI decodes the part of a data URI after "data:". Only base64
// payloads with an image media type are accepted.
func parseDataURI(rest string) (image, error) {
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return image{}, errors.New("invalid data URI: missing comma separator")
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return image{}, errors.New("only base64 data URIs are supported")
	}
	mediaType, _, _ = strings.Cut(mediaType, ";")

	ext := assets.ExtForMIME(mediaType)
	if ext == "" {
		return image{}, fmt.Errorf("unsupported media type in data URI: %q", mediaType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return image{}, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return image{data: data, ext: ext}, nil
}

var imageClient = &http.Client{
	Timeout: fetchTimeout,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("too many redirects (max %d)", maxRedirects)
		}
		return checkBlockedHost(req.URL.Hostname())
	},
}

func download(ctx context.Context, rawURL string) (image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return image{}, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return image{}, fmt.Errorf("unsupported scheme %q (only http, https and data)", u.Scheme)
	}
	if err := checkBlockedHost(u.Hostname()); err != nil {
		return image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return image{}, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := imageClient.Do(req)
	if err != nil {
		return image{}, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return image{}, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, assets.MaxSize+1))
	if err != nil {
		return image{}, fmt.Errorf("download failed: %w", err)
	}
	if len(data) > assets.MaxSize {
		return image{}, fmt.Errorf("%w: more than %d bytes", assets.ErrTooLarge, assets.MaxSize)
	}
	return image{data: data, ext: assets.ExtForMIME(resp.Header.Get("Content-Type"))}, nil
}

// checkBlockedHost refuses loopback, unspecified and link-local addresses,
// the last covering the 169.254.169.254 metadata endpoint. Names that do not
// resolve pass so the client reports the DNS error.
func checkBlockedHost(host string) error {
	if strings.EqualFold(host, "metadata.google.internal") {
		return fmt.Errorf("blocked host: cloud metadata name %s", host)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr
		}
		var ok bool
		if addr, ok = netip.AddrFromSlice(ips[0]); !ok {
			return nil
		}
	}
	addr = addr.Unmap()

	switch {
	case addr.IsLoopback():
		return fmt.Errorf("blocked host: loopback address %s", host)
	case addr.IsUnspecified():
		return fmt.Errorf("blocked host: unspecified address %s", host)
	case addr.IsLinkLocalUnicast():
		return fmt.Errorf("blocked host: link-local address %s", host)
	}
	return nil
}

// filenameFromURL uses the last path segment of an http(s) URL when it has
// an extension. Data URIs and bare paths get a random name ending in ext.
func filenameFromURL(rawURL, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	if !strings.HasPrefix(rawURL, "data:") {
		if u, err := url.Parse(rawURL); err == nil {
			if base := path.Base(u.Path); base != "." && path.Ext(base) != "" {
				return base
			}
		}
	}
	return uuid.NewString() + ext
}
