package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/dtroode/gymkeeper-server/internal/model"
)

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;font-family:Helvetica,Arial,sans-serif;color:#1f2933">
  <h1 style="font-size:22px">{{.Title}}</h1>
  <p style="font-size:15px;line-height:1.5">{{.Body}}</p>
  {{- if .AccessCode}}
  <p style="font-size:32px;font-weight:bold;letter-spacing:8px;margin:24px 0">{{.AccessCode}}</p>
  {{- end}}
  {{- if .ActionURL}}
  <p><a href="{{.ActionURL}}" style="display:inline-block;padding:12px 20px;background:#2563eb;color:#fff;text-decoration:none;border-radius:6px">{{.ActionLabel}}</a></p>
  {{- end}}
</body>
</html>
`))

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`{{.Title}}

{{.Body}}
{{- if .AccessCode}}

Access code: {{.AccessCode}}
{{- end}}
{{- if .ActionURL}}

{{.ActionLabel}}: {{.ActionURL}}
{{- end}}
`))

// Render produces the HTML and plain text bodies of msg.
func Render(msg model.Message) (Envelope, error) {
	if msg.ActionURL != "" && msg.ActionLabel == "" {
		msg.ActionLabel = "Open"
	}

	var html, text bytes.Buffer
	if err := htmlBody.Execute(&html, msg); err != nil {
		return Envelope{}, fmt.Errorf("failed to render html body: %w", err)
	}
	if err := textBody.Execute(&text, msg); err != nil {
		return Envelope{}, fmt.Errorf("failed to render text body: %w", err)
	}

	return Envelope{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
