// Package report writes the run artifacts: a machine-readable summary.json
// and a human-readable index.html suitable for publishing as a static page.
// Attempt records arrive with codes already masked; nothing here ever sees
// a full code.
package report

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"luckydraw-bot/pkg/run"
)

// Writer renders a run summary into Dir.
type Writer struct {
	Dir string
}

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Daily draw &amp; redemption (masked) - {{.Date}}</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;padding:24px;background:#fafafa;color:#222}
h1{margin:0 0 8px}
h2{margin:0 0 16px;font-weight:500;color:#555}
.card{background:#fff;border-radius:16px;box-shadow:0 6px 18px rgba(0,0,0,.06);padding:20px;max-width:1000px}
table{width:100%;border-collapse:collapse}
th,td{border-bottom:1px solid #eee;padding:10px 8px;text-align:left;font-size:14px;vertical-align:top}
th{background:#fafafa}
code.badge{background:#eef;border-radius:10px;padding:2px 8px}
footer{margin-top:20px;color:#777;font-size:12px}
.small{color:#777;font-size:12px}
</style>
</head>
<body>
<div class="card">
  <h1>Daily draw &amp; redemption (masked)</h1>
  <h2>{{.Date}}</h2>
  <p>Total redeemed: <code class="badge">{{.TotalAmount}}</code></p>
  <p class="small">Today: {{.TodayTried}}/{{.TodayTarget}} attempts. Timezone: {{.Timezone}}</p>
  <table>
    <thead>
      <tr><th>#</th><th>Draw message</th><th>Code (masked)</th><th>Redeemed</th><th>Amount</th><th>Redemption message</th></tr>
    </thead>
    <tbody>
      {{range $i, $it := .Items}}<tr>
        <td>{{inc $i}}</td>
        <td>{{$it.DrawMessage}}</td>
        <td>{{$it.CodeMask}}</td>
        <td>{{if $it.Redeemed}}&#9989;{{else}}&#10060;{{end}}</td>
        <td>{{if $it.Amount}}{{$it.Amount}}{{end}}</td>
        <td>{{$it.RedeemMessage}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  <footer>Generated automatically. Sensitive values are masked.</footer>
</div>
</body>
</html>
`))

// Write renders both artifacts, creating Dir on demand.
func (w *Writer) Write(summary *run.Summary) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return errors.Wrap(err, "create report dir")
	}

	if err := w.writeJSON(summary); err != nil {
		return err
	}

	return w.writeHTML(summary)
}

func (w *Writer) writeJSON(summary *run.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")

	if err != nil {
		return errors.Wrap(err, "encode summary")
	}

	if err := os.WriteFile(filepath.Join(w.Dir, "summary.json"), data, 0644); err != nil {
		return errors.Wrap(err, "write summary.json")
	}

	return nil
}

func (w *Writer) writeHTML(summary *run.Summary) error {
	file, err := os.Create(filepath.Join(w.Dir, "index.html"))

	if err != nil {
		return errors.Wrap(err, "write index.html")
	}

	defer file.Close()

	if err := pageTemplate.Execute(file, summary); err != nil {
		return errors.Wrap(err, "render index.html")
	}

	return nil
}
