// Package topup redeems codes against the top-up endpoint. Unlike the draw
// endpoint this one speaks plain JSON.
package topup

import (
	"context"
	"fmt"
	"io"
	"strings"

	http "github.com/saucesteals/fhttp"
	"github.com/valyala/fastjson"
)

// DefaultBaseURL is the top-up origin.
const DefaultBaseURL = "https://b4u.qzz.io"

const previewLen = 200

// Client calls the top-up endpoint. APIUser is the opaque new-api-user
// routing header the platform requires alongside the session cookie.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	APIUser   string
	UserAgent string
}

// Result is a decoded top-up response.
type Result struct {
	// Success mirrors the endpoint's success flag.
	Success bool
	// Amount is the credited amount. Only meaningful when HasAmount is
	// set; the data field is absent or non-integral otherwise.
	Amount    int64
	HasAmount bool
	// Message is the endpoint's message field, possibly empty.
	Message string
}

// TransportError wraps a network-level failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("top-up request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError reports an HTTP-level rejection (status >= 400). Preview
// holds the first 200 characters of the body for diagnostics.
type RejectedError struct {
	StatusCode int
	Preview    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("top-up endpoint rejected the request: HTTP %d %s", e.StatusCode, e.Preview)
}

// ParseError reports a 2xx body that was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("top-up response was not parseable: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Redeem submits code for credit. One network attempt, no retries.
func (c *Client) Redeem(ctx context.Context, code string) (*Result, error) {
	baseURL := c.BaseURL

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	body := fmt.Sprintf(`{"key":%q}`, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/user/topup", strings.NewReader(body))

	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req.Header = http.Header{
		`accept`:             {`application/json, text/plain, */*`},
		`cache-control`:      {`no-store`},
		`content-type`:       {`application/json`},
		`origin`:             {baseURL},
		`referer`:            {baseURL + `/console/topup`},
		`sec-ch-ua`:          {`"Chromium";v="142", "Google Chrome";v="142", "Not_A Brand";v="99"`},
		`sec-ch-ua-mobile`:   {`?0`},
		`sec-ch-ua-platform`: {`"macOS"`},
		`sec-fetch-dest`:     {`empty`},
		`sec-fetch-mode`:     {`cors`},
		`sec-fetch-site`:     {`same-origin`},
		`user-agent`:         {c.UserAgent},
		`new-api-user`:       {c.APIUser},
		http.HeaderOrderKey: {
			`content-length`,
			`accept`,
			`cache-control`,
			`content-type`,
			`new-api-user`,
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

	resBody, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if res.StatusCode >= http.StatusBadRequest {
		preview := string(resBody)

		if len(preview) > previewLen {
			preview = preview[:previewLen]
		}

		return nil, &RejectedError{StatusCode: res.StatusCode, Preview: preview}
	}

	v, err := fastjson.ParseBytes(resBody)

	if err != nil {
		return nil, &ParseError{Err: err}
	}

	result := &Result{
		Success: v.GetBool("success"),
		Message: string(v.GetStringBytes("message")),
	}

	// data is only an amount when it is an integral number; anything else
	// is treated as no amount rather than coerced.
	if data := v.Get("data"); data != nil && data.Type() == fastjson.TypeNumber {
		if amount, err := data.Int64(); err == nil {
			result.Amount = amount
			result.HasAmount = true
		}
	}

	return result, nil
}
