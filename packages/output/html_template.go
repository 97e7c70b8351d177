package output

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>softspec report</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #1f2933; }
  h1 { font-size: 1.4rem; }
  .bar { display: flex; height: 10px; border-radius: 5px; overflow: hidden; margin: 1rem 0; background: #e4e7eb; }
  .bar .passed { background: #3ebd93; }
  .bar .failed { background: #e66a6a; }
  .bar .skipped { background: #f7c948; }
  .summary span { margin-right: 1rem; }
  .scenario { border: 1px solid #e4e7eb; border-left-width: 4px; border-radius: 4px; margin: .75rem 0; padding: .5rem 1rem; }
  .scenario.passed { border-left-color: #3ebd93; }
  .scenario.failed { border-left-color: #e66a6a; }
  .scenario.skipped { border-left-color: #f7c948; }
  .meta { color: #7b8794; font-size: .85rem; }
  pre { background: #f5f7fa; padding: .5rem; overflow-x: auto; white-space: pre-wrap; }
  table { border-collapse: collapse; width: 100%; font-size: .9rem; }
  td { padding: .2rem .5rem; border-bottom: 1px solid #f0f2f5; vertical-align: top; }
  .ok { color: #199473; }
  .ko { color: #cf1124; }
  .attachments div { margin: .2rem 0; }
</style>
</head>
<body>
<h1>softspec report{{if .Version}} <span class="meta">{{.Version}}</span>{{end}}</h1>
<p class="meta">{{.Time}} &middot; {{printf "%.0f" .Duration}}ms</p>
<div class="summary">
  <span>{{.Summary.Total}} total</span>
  <span class="ok">{{.Summary.Passed}} passed</span>
  <span class="ko">{{.Summary.Failed}} failed</span>
  <span>{{.Summary.Skipped}} skipped</span>
</div>
<div class="bar">
  <div class="passed" style="width: {{printf "%.2f" .PassedPercent}}%"></div>
  <div class="failed" style="width: {{printf "%.2f" .FailedPercent}}%"></div>
  <div class="skipped" style="width: {{printf "%.2f" .SkippedPercent}}%"></div>
</div>
{{range .Errors}}<pre class="ko">{{.}}</pre>
{{end}}
{{range .Scenarios}}
<div class="scenario {{.StatusClass}}">
  <strong>{{.Name}}</strong> <span class="meta">{{.File}} &middot; {{printf "%.0f" .Duration}}ms</span>
  {{if .Skipped}}<p class="meta">skipped{{if .SkipReason}}: {{.SkipReason}}{{end}}</p>{{end}}
  {{if .Steps}}
  <table>
    {{range .Steps}}
    <tr>
      <td>{{if .Passed}}<span class="ok">&#10003;</span>{{else}}<span class="ko">&#10007;</span>{{end}}</td>
      <td>{{.Index}}. {{.Assert}}</td>
      <td class="meta">{{.Adapter}}</td>
      <td>{{.Message}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
  {{if .Error}}<pre>{{.Error}}</pre>{{end}}
  {{if .Attachments}}
  <details class="attachments">
    <summary>Attachments ({{len .Attachments}})</summary>
    {{range .Attachments}}{{if .Fragment}}{{.Fragment}}{{else}}<pre>{{.Text}}</pre>{{end}}
    {{end}}
  </details>
  {{end}}
</div>
{{end}}
</body>
</html>
`
