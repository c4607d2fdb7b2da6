package handler

import "html/template"

// Presentation layer for the gate pages. Everything here is thin
// rendering glue; the flow logic lives in gate.go.

const basePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{- if .RefreshURL}}
<meta http-equiv="refresh" content="{{.RefreshDelay}};url={{.RefreshURL}}">
{{- end}}
<title>Internal Portal Access</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 28rem; margin: 4rem auto; padding: 0 1rem; color: #1a1a1a; }
h1 { font-size: 1.4rem; }
form { display: flex; gap: 0.5rem; margin-top: 1.5rem; }
input[type=email] { flex: 1; padding: 0.5rem; border: 1px solid #bbb; border-radius: 4px; }
button { padding: 0.5rem 1rem; border: 0; border-radius: 4px; background: #2563eb; color: #fff; cursor: pointer; }
.notice { margin-top: 1.5rem; padding: 0.75rem 1rem; border-radius: 4px; }
.notice.ok { background: #ecfdf5; color: #065f46; }
.notice.err { background: #fef2f2; color: #991b1b; }
</style>
</head>
<body>
<h1>Internal Portal Access</h1>
{{- if .Notice}}
<p class="notice {{.NoticeClass}}">{{.Notice}}</p>
{{- end}}
{{- if .ShowForm}}
<p>Enter your corporate email address to receive an access link.</p>
<form method="post" action="/request">
<input type="email" name="email" placeholder="you@company.example" required>
<button type="submit">Request access</button>
</form>
{{- end}}
</body>
</html>
`

// pageData drives the single gate template.
type pageData struct {
	ShowForm     bool
	Notice       string
	NoticeClass  string
	RefreshURL   string
	RefreshDelay int
}

var gateTemplate = template.Must(template.New("gate").Parse(basePage))
