package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrSourceTooLarge    = errors.New("source exceeds download limit")
)

// contentTypes maps audio MIME types to the extension used for decoding,
// for remote sources whose URL carries no extension.
var contentTypes = map[string]string{
	"audio/mpeg":   extMP3,
	"audio/mp3":    extMP3,
	"audio/flac":   extFLAC,
	"audio/x-flac": extFLAC,
	"audio/wav":    extWAV,
	"audio/x-wav":  extWAV,
	"audio/wave":   extWAV,
	"audio/ogg":    extOGG,
}

func supportedExt(ext string) bool {
	switch ext {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	}
	return false
}

// IsSupportedFile reports whether path has an extension the engine decodes.
func IsSupportedFile(path string) bool {
	return supportedExt(strings.ToLower(filepath.Ext(path)))
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// localPath resolves a plain path or file:// URL.
func localPath(source string) (string, error) {
	if !strings.HasPrefix(source, "file://") {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// validateSource rejects sources that can never be decoded, before any
// asynchronous work starts.
func validateSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("empty source")
	}
	if isRemote(source) {
		_, err := url.Parse(source)
		return err
	}
	if strings.Contains(source, "://") && !strings.HasPrefix(source, "file://") {
		return fmt.Errorf("unsupported scheme: %s", source)
	}
	p, err := localPath(source)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(p))
	if !supportedExt(ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// newHTTPClient returns a client for fetching remote sources. There is no
// overall timeout; the download is bounded by the request context.
func newHTTPClient(headerTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: headerTimeout,
			IdleConnTimeout:       5 * time.Minute,
			MaxIdleConnsPerHost:   2,
		},
	}
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// openSource opens source for decoding and returns its extension.
// Remote sources are read fully into memory so the decoder can seek.
func (p *Player) openSource(ctx context.Context, source string) (io.ReadSeekCloser, string, error) {
	if isRemote(source) {
		return p.fetch(ctx, source)
	}

	fp, err := localPath(source)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(fp)
	if err != nil {
		return nil, "", err
	}
	return f, strings.ToLower(filepath.Ext(fp)), nil
}

func (p *Player) fetch(ctx context.Context, source string) (io.ReadSeekCloser, string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", "octaplay/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, "", fmt.Errorf("fetch source: HTTP %s", resp.Status)
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if !supportedExt(ext) {
		ext = extFromContentType(resp.Header.Get("Content-Type"))
	}
	if !supportedExt(ext) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, resp.Header.Get("Content-Type"))
	}

	limit := p.opts.MaxDownload
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read source: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w (%s)", ErrSourceTooLarge, humanize.Bytes(uint64(limit)))
	}

	p.log.Debug("downloaded source",
		zap.String("url", source),
		zap.String("size", humanize.Bytes(uint64(len(data)))))

	return readSeekNopCloser{bytes.NewReader(data)}, ext, nil
}

func extFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return contentTypes[mt]
}
