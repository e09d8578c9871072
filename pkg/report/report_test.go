package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luckydraw-bot/pkg/run"
)

func sampleSummary() *run.Summary {
	amount := int64(100)

	return &run.Summary{
		Date:        "2026-08-25 09:00:00",
		Timezone:    "Asia/Singapore",
		TotalAmount: 100,
		Items: []run.Attempt{
			{
				DrawMessage:   "draw endpoint returned 401, session cookie is likely expired",
				RedeemMessage: "no redemption code (unauthenticated)",
			},
			{
				DrawMessage:   "you won",
				Code:          "abcdef1234567890",
				CodeMask:      "abcd****7890",
				Redeemed:      true,
				Amount:        &amount,
				RedeemMessage: "ok",
			},
		},
		TodayTried:  5,
		TodayTarget: 5,
	}
}

func TestWriteProducesBothArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	w := &Writer{Dir: dir}

	require.NoError(t, w.Write(sampleSummary()))

	assert.FileExists(t, filepath.Join(dir, "summary.json"))
	assert.FileExists(t, filepath.Join(dir, "index.html"))
}

func TestSummaryJSONNeverContainsFullCode(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	require.NoError(t, w.Write(sampleSummary()))

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "abcdef1234567890")
	assert.Contains(t, string(data), "abcd****7890")

	var decoded run.Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(100), decoded.TotalAmount)
	assert.Len(t, decoded.Items, 2)
	assert.Equal(t, 5, decoded.TodayTried)
}

func TestHTMLShowsMaskedRows(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	require.NoError(t, w.Write(sampleSummary()))

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	page := string(data)

	assert.NotContains(t, page, "abcdef1234567890")
	assert.Contains(t, page, "abcd****7890")
	assert.Contains(t, page, "you won")
	assert.Contains(t, page, "Asia/Singapore")
	assert.Contains(t, page, "5/5")
}

func TestWriteEmptyRun(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	summary := &run.Summary{
		Date:        "2026-08-25 09:00:00",
		Timezone:    "Asia/Singapore",
		Items:       []run.Attempt{},
		TodayTried:  5,
		TodayTarget: 5,
	}

	require.NoError(t, w.Write(summary))

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)

	var decoded run.Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotNil(t, decoded.Items)
	assert.Empty(t, decoded.Items)
}
