package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	tls "github.com/refraction-networking/utls"

	"github.com/use-agent/mallscan/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20 // 10 MB

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Strip h2 from the ALPN extension so the server never negotiates
	// HTTP/2, which Go's http.Transport cannot frame over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// HTTPEngine fetches pages over plain net/http with a Chrome TLS fingerprint.
// It is the fast path, sufficient for server-rendered listing pages.
type HTTPEngine struct {
	client *http.Client
}

// NewHTTPEngine creates an HTTPEngine with a Chrome-like TLS fingerprint.
func NewHTTPEngine() *HTTPEngine {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("httpengine: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

func (e *HTTPEngine) Name() string { return "http" }

// Fetch retrieves the page with browser-like headers. Non-success statuses
// and non-HTML bodies are errors so the caller can escalate or report.
func (e *HTTPEngine) Fetch(ctx context.Context, req *Request) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeInvalidInput, "build request", err)
	}

	httpReq.Header.Set("User-Agent", chromeUA)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewScanError(models.ErrCodeTimeout, "fetch timed out", err)
		}
		return nil, models.NewScanError(models.ErrCodeFetch, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeFetch, "read body", err)
	}

	if resp.StatusCode >= 400 {
		return nil, models.NewScanError(
			models.ErrCodeFetch,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, req.URL),
			nil,
		)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return nil, models.NewScanError(
			models.ErrCodeFetch,
			fmt.Sprintf("non-HTML content-type %q for %s", ct, req.URL),
			nil,
		)
	}

	html := string(body)
	return &Result{
		HTML:       html,
		Title:      ExtractTitle(html),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		EngineUsed: e.Name(),
	}, nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
