// Package imagefetch downloads whiteboard photos and works out their media type.
package imagefetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for sniffing
	_ "image/jpeg" // register decoder for sniffing
	_ "image/png"  // register decoder for sniffing
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	_ "golang.org/x/image/webp" // register decoder for sniffing

	"github.com/okian/playsketch/pkg/errs"
	"github.com/okian/playsketch/pkg/logger"
)

// Media types the vision model accepts.
const (
	MediaJPEG = "image/jpeg"
	MediaPNG  = "image/png"
	MediaGIF  = "image/gif"
	MediaWebP = "image/webp"
)

// Defaults for the HTTP fetch.
const (
	DefaultMaxBytes = 10 << 20
	DefaultTimeout  = 20 * time.Second
)

// Image is a fetched photo.
type Image struct {
	Bytes     []byte
	MediaType string
}

// Loader fetches images over HTTP(S). It never retries.
type Loader struct {
	client       *http.Client
	timeout      time.Duration
	maxBytes     int64
	allowPrivate bool
	logger       logger.Logger
}

// New creates a Loader. Unless WithAllowPrivateHosts or WithHTTPClient is
// given, it refuses to connect to loopback, private and link-local addresses.
func New(opts ...Option) *Loader {
	l := &Loader{
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = defaultClient(l.allowPrivate)
	}
	if l.logger == nil {
		l.logger = logger.Named("imagefetch")
	}
	return l
}

func defaultClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if !allowPrivate {
		dialer.Control = refusePrivate
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	return &http.Client{Transport: transport}
}

// refusePrivate runs on every dial, so redirects and DNS answers are checked
// against the address actually connected to.
func refusePrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("%w: %s", ErrPrivateHost, host)
	}
	return nil
}

// Load downloads ref and returns its bytes with a media type. Every failure
// carries ErrFetch.
func (l *Loader) Load(ctx context.Context, ref string) (Image, error) {
	const op = "imagefetch.load"

	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Image{}, errs.WrapKind(op, ErrFetch, fmt.Errorf("%w: %q", ErrUnsupportedReference, ref))
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Image{}, errs.WrapKind(op, ErrFetch, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return Image{}, errs.WrapKind(op, ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, errs.WrapKind(op, ErrFetch, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return Image{}, errs.WrapKind(op, ErrFetch, err)
	}
	if int64(len(body)) > l.maxBytes {
		return Image{}, errs.WrapKind(op, ErrFetch, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, l.maxBytes))
	}
	if len(body) == 0 {
		return Image{}, errs.WrapKind(op, ErrFetch, ErrEmpty)
	}

	media := DetectMediaType(resp.Header.Get("Content-Type"), body)
	l.logger.Debug(ctx, "image fetched",
		logger.String("host", u.Host),
		logger.Int("bytes", len(body)),
		logger.String("media_type", media),
	)
	return Image{Bytes: body, MediaType: media}, nil
}

// DetectMediaType maps a declared Content-Type onto a supported media type.
// Absent or unrecognized declarations fall back to sniffing the bytes, and
// then to JPEG.
func DetectMediaType(declared string, body []byte) string {
	ct := strings.ToLower(declared)
	switch {
	case strings.Contains(ct, "png"):
		return MediaPNG
	case strings.Contains(ct, "gif"):
		return MediaGIF
	case strings.Contains(ct, "webp"):
		return MediaWebP
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return MediaJPEG
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err == nil {
		switch format {
		case "png":
			return MediaPNG
		case "gif":
			return MediaGIF
		case "webp":
			return MediaWebP
		}
	}
	return MediaJPEG
}
