// Package executor performs the HTTP side of a single indexer search:
// request construction from a definition, response dispatch to the HTML
// or JSON parser, and download indirection.
package executor

import (
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Options configures the shared HTTP engine for one executor instance.
type Options struct {
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return 30 * time.Second
}

func (o Options) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return defaultUserAgent
}

// newHTTPClient builds the persistent-cookie-jar client shared by every
// request this executor issues, with an optional SOCKS5 or HTTP proxy.
func newHTTPClient(opts Options) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{},
	}

	if opts.ProxyURL != "" {
		if err := applyProxy(transport, opts.ProxyURL); err != nil {
			return nil, err
		}
	}

	return &http.Client{
		Jar:       jar,
		Timeout:   opts.timeout(),
		Transport: transport,
	}, nil
}

func applyProxy(transport *http.Transport, rawProxyURL string) error {
	u, err := url.Parse(rawProxyURL)
	if err != nil {
		return err
	}
	if u.Scheme == "socks5" || u.Scheme == "socks5h" {
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return err
		}
		transport.Dial = dialer.Dial
		return nil
	}
	transport.Proxy = http.ProxyURL(u)
	return nil
}

// setBrowserHeaders applies a realistic desktop User-Agent and the usual
// accompanying headers, matching the browser-header idiom used by the
// generic HTML scraper this executor is grounded on.
func setBrowserHeaders(req *http.Request, ua string) {
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
}
