package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPlusSendsPayload(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Contains(t, r.Header.Get("content-type"), "application/json")
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	p := &PushPlus{URL: srv.URL, Token: "tok", Channel: "wechat"}

	require.NoError(t, p.Send(context.Background(), "title", "**body**"))

	assert.Equal(t, "tok", got["token"])
	assert.Equal(t, "title", got["title"])
	assert.Equal(t, "**body**", got["content"])
	assert.Equal(t, "markdown", got["template"])
	assert.Equal(t, "wechat", got["channel"])
}

func TestPushPlusOmitsEmptyChannel(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	p := &PushPlus{URL: srv.URL, Token: "tok"}

	require.NoError(t, p.Send(context.Background(), "t", "c"))

	_, hasChannel := got["channel"]
	assert.False(t, hasChannel)
}

func TestPushPlusReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	p := &PushPlus{URL: srv.URL, Token: "tok"}

	err := p.Send(context.Background(), "t", "c")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestDiscordSendsEmbed(t *testing.T) {
	var got map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := &Discord{Webhook: srv.URL}

	require.NoError(t, d.Send(context.Background(), "Winner", "details"))

	embeds, ok := got["embeds"].([]interface{})
	require.True(t, ok)
	require.Len(t, embeds, 1)

	embed := embeds[0].(map[string]interface{})
	assert.Equal(t, "Winner", embed["title"])
	assert.Equal(t, "details", embed["description"])
}
