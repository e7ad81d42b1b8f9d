package terminal

import (
	"html/template"
	"io"
	"time"

	"leke-chat/internal/chat"
)

var transcriptTmpl = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.message { margin: 1rem 0; padding: .75rem 1rem; border-radius: .5rem; }
.user { background: #eef; }
.assistant { background: #f6f6f6; }
.meta { font-size: .8rem; color: #777; }
.badge { background: #5a56e0; color: #fff; border-radius: .25rem; padding: 0 .4rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Exported {{.Exported}}</p>
{{- if .Placeholder}}
<div class="welcome"><h2>{{.Placeholder.Title}}</h2><p>{{.Placeholder.Text}}</p></div>
{{- end}}
{{- range .Messages}}
<div class="message {{.Sender}}">
<div class="meta">{{.Sender}} · {{.Timestamp}}{{if .Badge}} <span class="badge">{{.Badge}}</span>{{end}}</div>
<div class="body">{{.Body}}</div>
</div>
{{- end}}
</body>
</html>
`))

type transcriptMessage struct {
	Sender    chat.Sender
	Timestamp string
	Badge     string
	Body      template.HTML
}

// WriteHTML writes v as a standalone HTML page. Record bodies are already
// escaped by the renderer and are emitted as is.
func WriteHTML(w io.Writer, title string, v chat.View, exported time.Time) error {
	data := struct {
		Title       string
		Exported    string
		Placeholder *chat.Placeholder
		Messages    []transcriptMessage
	}{
		Title:       title,
		Exported:    exported.Format("2006-01-02 15:04"),
		Placeholder: v.Placeholder,
	}
	for _, rec := range v.Records {
		data.Messages = append(data.Messages, transcriptMessage{
			Sender:    rec.Sender,
			Timestamp: rec.Timestamp,
			Badge:     rec.Badge,
			Body:      template.HTML(rec.Body),
		})
	}
	return transcriptTmpl.Execute(w, data)
}
