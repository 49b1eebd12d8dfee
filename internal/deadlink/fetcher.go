package deadlink

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// MaxRedirects bounds the redirect chain followed by HTTPFetcher.
const MaxRedirects = 10

// ErrorKind partitions fetch failures for classification.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTimeout
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	}
	return "other"
}

// FetchError is a failed fetch. Label is a short readable description of
// network failures, such as "DNS failure".
type FetchError struct {
	Kind  ErrorKind
	Label string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %v", e.Label, e.Err)
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher issues one GET and reports the final status code after redirects.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, err error)
}

// HTTPFetcher is a Fetcher over net/http.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher whose requests give up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects but limit to MaxRedirects
				if len(via) >= MaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: "Mozilla/5.0 (compatible; bmtidy)",
	}
}

// Fetch implements Fetcher. Failures are returned as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &FetchError{Kind: KindOther, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, classifyError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}

// classifyError maps a transport error onto an ErrorKind.
func classifyError(err error) *FetchError {
	var (
		dnsErr *net.DNSError
		netErr net.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &FetchError{Kind: KindTimeout, Label: "Timeout", Err: err}
	case errors.Is(err, context.Canceled):
		return &FetchError{Kind: KindOther, Err: err}
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return &FetchError{Kind: KindTimeout, Label: "Timeout", Err: err}
		}
		return &FetchError{Kind: KindNetwork, Label: "DNS failure", Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &FetchError{Kind: KindNetwork, Label: "Connection refused", Err: err}
	case errors.Is(err, syscall.ECONNRESET):
		return &FetchError{Kind: KindNetwork, Label: "Connection reset", Err: err}
	case errors.Is(err, syscall.ENETUNREACH):
		return &FetchError{Kind: KindNetwork, Label: "Network unreachable", Err: err}
	case errors.Is(err, syscall.EHOSTUNREACH):
		return &FetchError{Kind: KindNetwork, Label: "Host unreachable", Err: err}
	case isCertificateError(err):
		return &FetchError{Kind: KindNetwork, Label: "TLS/certificate error", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: KindTimeout, Label: "Timeout", Err: err}
	}

	kind, label := normalizeError(err.Error())
	return &FetchError{Kind: kind, Label: label, Err: err}
}

func isCertificateError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
		header           tls.RecordHeaderError
		alert            tls.AlertError
	)
	return errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid) ||
		errors.As(err, &verification) ||
		errors.As(err, &header) ||
		errors.As(err, &alert)
}

// normalizeError is the fallback for errors that lost their type on the way
// up, matching on the message the way the HTTP client phrases it.
func normalizeError(errStr string) (ErrorKind, string) {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return KindNetwork, "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return KindTimeout, "Timeout"
	case strings.Contains(lower, "connection refused"):
		return KindNetwork, "Connection refused"
	case strings.Contains(lower, "connection reset"):
		return KindNetwork, "Connection reset"
	case strings.Contains(lower, "certificate"):
		return KindNetwork, "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return KindNetwork, "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return KindNetwork, "TLS error"
	default:
		return KindOther, ""
	}
}
