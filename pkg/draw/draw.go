// Package draw performs a single lucky-draw call and maps the response onto
// typed outcomes. Each call is exactly one network attempt; retry policy is
// the caller's business.
package draw

import (
	"context"
	"fmt"
	"io"
	"strings"

	http "github.com/saucesteals/fhttp"

	"luckydraw-bot/pkg/interpret"
)

const (
	// DefaultBaseURL is the lucky-draw origin.
	DefaultBaseURL = "https://tw.b4u.qzz.io"

	// drawBody is the fixed server-action argument list.
	drawBody = `[{"excludeThankYou":false}]`

	// challengeMarker appears on the interstitial served instead of the
	// endpoint when the edge decides the client looks like a bot.
	challengeMarker = "Just a moment"

	previewLen = 200
)

// Client calls the lucky-draw endpoint. The next-action and router-state
// values are opaque and rotate over time; they are captured from a browser
// session and supplied via configuration.
type Client struct {
	HTTP            *http.Client
	BaseURL         string
	NextAction      string
	NextRouterState string
	UserAgent       string
}

// Result is a successfully delivered draw response, interpreted.
type Result struct {
	interpret.Result
	StatusCode int
}

// TransportError wraps a network-level failure (timeout, connection error).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("draw request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a 401: the session cookie is missing or expired.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("draw endpoint returned %d, session cookie is likely expired", e.StatusCode)
}

// ForbiddenError reports a 403. Challenge distinguishes an edge bot
// challenge from plain expired credentials or routing headers.
type ForbiddenError struct {
	StatusCode int
	Challenge  bool
	Preview    string
}

func (e *ForbiddenError) Error() string {
	if e.Challenge {
		return fmt.Sprintf("draw endpoint returned %d (challenge page), refresh the cookie and next-action values", e.StatusCode)
	}
	return fmt.Sprintf("draw endpoint returned %d, cookie or next-action values may have expired", e.StatusCode)
}

// ServerError reports a 5xx from the draw endpoint.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("draw endpoint server error: HTTP %d", e.StatusCode)
}

// DrawOnce sends one draw request. On delivery it hands the body to the
// interpreter and returns its result; status-code failures come back as the
// typed errors above.
func (c *Client) DrawOnce(ctx context.Context) (*Result, error) {
	baseURL := c.BaseURL

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/luckydraw", strings.NewReader(drawBody))

	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req.Header = http.Header{
		`accept`:                 {`text/x-component`},
		`accept-language`:        {`zh-CN,zh;q=0.9`},
		`content-type`:           {`text/plain;charset=UTF-8`},
		`origin`:                 {baseURL},
		`referer`:                {baseURL + `/luckydraw`},
		`sec-ch-ua`:              {`"Chromium";v="142", "Google Chrome";v="142", "Not_A Brand";v="99"`},
		`sec-ch-ua-mobile`:       {`?0`},
		`sec-ch-ua-platform`:     {`"macOS"`},
		`sec-fetch-dest`:         {`empty`},
		`sec-fetch-mode`:         {`cors`},
		`sec-fetch-site`:         {`same-origin`},
		`user-agent`:             {c.UserAgent},
		`next-action`:            {c.NextAction},
		`next-router-state-tree`: {c.NextRouterState},
		http.HeaderOrderKey: {
			`content-length`,
			`accept`,
			`accept-language`,
			`content-type`,
			`next-action`,
			`next-router-state-tree`,
			`origin`,
			`referer`,
			`sec-ch-ua`,
			`sec-ch-ua-mobile`,
			`sec-ch-ua-platform`,
			`sec-fetch-dest`,
			`sec-fetch-mode`,
			`sec-fetch-site`,
			`user-agent`,
			`cookie`,
		},
		http.PHeaderOrderKey: {
			`:method`,
			`:authority`,
			`:scheme`,
			`:path`,
		},
	}

	res, err := c.HTTP.Do(req)

	if err != nil {
		return nil, &TransportError{Err: err}
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, &TransportError{Err: err}
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{StatusCode: res.StatusCode}

	case res.StatusCode == http.StatusForbidden:
		preview := string(body)

		if len(preview) > previewLen {
			preview = preview[:previewLen]
		}

		return nil, &ForbiddenError{
			StatusCode: res.StatusCode,
			Challenge:  strings.Contains(preview, challengeMarker),
			Preview:    preview,
		}

	case res.StatusCode >= http.StatusInternalServerError:
		return nil, &ServerError{StatusCode: res.StatusCode}
	}

	return &Result{
		Result:     interpret.Interpret(body, res.StatusCode),
		StatusCode: res.StatusCode,
	}, nil
}
