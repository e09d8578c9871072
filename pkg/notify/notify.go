// Package notify posts a run summary to a push provider. Providers share
// one interface so the entry point can swap them by configuration.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/saucesteals/fhttp"
)

// Notifier delivers one titled message.
type Notifier interface {
	Send(ctx context.Context, title, content string) error
}

// PushPlus posts to a pushplus-compatible webhook.
type PushPlus struct {
	HTTP *http.Client

	// URL defaults to the public pushplus send endpoint.
	URL      string
	Token    string
	Channel  string
	Template string
}

// DefaultPushPlusURL is the public pushplus send endpoint.
const DefaultPushPlusURL = "https://www.pushplus.plus/api/send"

func (p *PushPlus) Send(ctx context.Context, title, content string) error {
	u := p.URL

	if u == "" {
		u = DefaultPushPlusURL
	}

	template := p.Template

	if template == "" {
		template = "markdown"
	}

	payload := map[string]string{
		"token":    p.Token,
		"title":    title,
		"content":  content,
		"template": template,
	}

	if p.Channel != "" {
		payload["channel"] = p.Channel
	}

	return postJSON(ctx, p.HTTP, u, payload)
}

// Discord posts to a Discord webhook as a single embed.
type Discord struct {
	HTTP    *http.Client
	Webhook string
}

func (d *Discord) Send(ctx context.Context, title, content string) error {
	payload := map[string]interface{}{
		"content": nil,
		"embeds": []map[string]interface{}{
			{
				"title":       title,
				"color":       65300,
				"description": content,
			},
		},
	}

	return postJSON(ctx, d.HTTP, d.Webhook, payload)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))

	if err != nil {
		return err
	}

	req.Header.Set("content-type", "application/json; charset=utf-8")

	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)

	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(res.Body, 200))
		return fmt.Errorf("push endpoint returned HTTP %d: %s", res.StatusCode, preview)
	}

	return nil
}
