// Package httpclient builds the fhttp client used for every remote call.
// The draw endpoint sits behind Cloudflare, so the transport presents a
// Chrome TLS fingerprint and Chrome http2 settings; callers supply ordered
// browser headers per request.
package httpclient

import (
	"net/url"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
	http "github.com/saucesteals/fhttp"
	cookiejar "github.com/saucesteals/fhttp/cookiejar"
	http2 "github.com/saucesteals/fhttp/http2"
)

// DefaultTimeout bounds every network call; a hung request is treated as a
// transport failure for that one attempt.
const DefaultTimeout = 30 * time.Second

// Options configures a client for one remote origin.
type Options struct {
	// BaseURL is the origin the cookie string is scoped to.
	BaseURL string
	// Cookies is a browser-format cookie string, "k1=v1; k2=v2".
	Cookies string
	// Proxy routes the transport when non-nil.
	Proxy *url.URL
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// New returns a client with a Chrome fingerprint and a jar seeded from the
// configured cookie string. Redirects are not followed; status-code policy
// belongs to the callers.
func New(opts Options) (*http.Client, error) {
	t1 := &http.Transport{GetTlsClientHelloSpec: func() *utls.ClientHelloSpec {
		spec, _ := utls.UTLSIdToSpec(utls.HelloChrome_106_Shuffle)
		return &spec
	}}

	if opts.Proxy != nil {
		t1.Proxy = http.ProxyURL(opts.Proxy)
	}

	t2, err := http2.ConfigureTransports(t1)

	if err != nil {
		return nil, err
	}

	t2.Settings = []http2.Setting{
		{ID: http2.SettingHeaderTableSize, Val: 65536},
		{ID: http2.SettingEnablePush, Val: 0},
		{ID: http2.SettingMaxConcurrentStreams, Val: 1000},
		{ID: http2.SettingInitialWindowSize, Val: 6291456},
		{ID: http2.SettingMaxHeaderListSize, Val: 262144},
	}

	t2.MaxHeaderListSize = 262144
	t2.InitialWindowSize = 6291456
	t2.HeaderTableSize = 65536

	cj, err := cookiejar.New(nil)

	if err != nil {
		return nil, err
	}

	if opts.Cookies != "" && opts.BaseURL != "" {
		baseURL, err := url.Parse(opts.BaseURL)

		if err != nil {
			return nil, err
		}

		cj.SetCookies(baseURL, ParseCookieString(opts.Cookies))
	}

	timeout := opts.Timeout

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Transport: t1,
		Jar:       cj,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return client, nil
}

// ParseCookieString splits a "k1=v1; k2=v2" cookie string (the shape copied
// out of a browser or a curl -b flag) into cookies. Malformed pairs are
// skipped.
func ParseCookieString(s string) []*http.Cookie {
	var cookies []*http.Cookie

	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)

		if pair == "" {
			continue
		}

		name, value, found := strings.Cut(pair, "=")

		if !found {
			continue
		}

		cookies = append(cookies, &http.Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	return cookies
}
