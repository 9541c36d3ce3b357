// File: internal/email/templates.go
package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// UploadReview is the data behind approval and rejection emails.
type UploadReview struct {
	Title    string
	Country  string
	Status   string
	Reviewer string
	FileURL  string
}

// Broadcast is the data behind notification emails.
type Broadcast struct {
	Title   string
	Message string
}

// PendingItem is one upload awaiting review.
type PendingItem struct {
	Title    string
	Country  string
	Uploader string
	Waiting  string
}

// PendingDigest is the data behind the reviewer reminder.
type PendingDigest struct {
	Items []PendingItem
}

var (
	reviewText = texttemplate.Must(texttemplate.New("review_text").Parse(
		`Hello,

Your upload "{{.Title}}" for {{.Country}} has been {{.Status}}{{if .Reviewer}} by {{.Reviewer}}{{end}}.
{{if eq .Status "approved"}}It is now visible on the dashboard: {{.FileURL}}
{{else}}Please review the file and submit a corrected version.
{{end}}
ECOWAS Fisheries Dashboard
`))

	reviewHTML = htmltemplate.Must(htmltemplate.New("review_html").Parse(
		`<p>Hello,</p>
<p>Your upload <strong>{{.Title}}</strong> for {{.Country}} has been <strong>{{.Status}}</strong>{{if .Reviewer}} by {{.Reviewer}}{{end}}.</p>
{{if eq .Status "approved"}}<p>It is now visible on the dashboard: <a href="{{.FileURL}}">{{.Title}}</a></p>{{else}}<p>Please review the file and submit a corrected version.</p>{{end}}
<p>ECOWAS Fisheries Dashboard</p>
`))

	broadcastText = texttemplate.Must(texttemplate.New("broadcast_text").Parse(
		`{{.Title}}

{{.Message}}

ECOWAS Fisheries Dashboard
`))

	broadcastHTML = htmltemplate.Must(htmltemplate.New("broadcast_html").Parse(
		`<h3>{{.Title}}</h3>
<p>{{.Message}}</p>
<p>ECOWAS Fisheries Dashboard</p>
`))

	digestText = texttemplate.Must(texttemplate.New("digest_text").Parse(
		`{{len .Items}} upload(s) are waiting for review:
{{range .Items}}
- {{.Title}} ({{.Country}}) from {{if .Uploader}}{{.Uploader}}{{else}}unknown uploader{{end}}, waiting {{.Waiting}}{{end}}

ECOWAS Fisheries Dashboard
`))

	digestHTML = htmltemplate.Must(htmltemplate.New("digest_html").Parse(
		`<p>{{len .Items}} upload(s) are waiting for review:</p>
<ul>{{range .Items}}
<li><strong>{{.Title}}</strong> ({{.Country}}) from {{if .Uploader}}{{.Uploader}}{{else}}unknown uploader{{end}}, waiting {{.Waiting}}</li>{{end}}
</ul>
<p>ECOWAS Fisheries Dashboard</p>
`))
)

// ReviewMessage renders the email sent to an uploader after a review.
func ReviewMessage(to string, data UploadReview) (Message, error) {
	text, html, err := render(reviewText, reviewHTML, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Upload %s: %s", data.Status, data.Title),
		Text:    text,
		HTML:    html,
	}, nil
}

// BroadcastMessage renders the email copy of a notification.
func BroadcastMessage(to string, data Broadcast) (Message, error) {
	text, html, err := render(broadcastText, broadcastHTML, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: data.Title, Text: text, HTML: html}, nil
}

// PendingDigestMessage renders the reviewer reminder sent to admins.
func PendingDigestMessage(to []string, data PendingDigest) (Message, error) {
	text, html, err := render(digestText, digestHTML, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("%d upload(s) awaiting review", len(data.Items)),
		Text:    text,
		HTML:    html,
	}, nil
}

func render(text *texttemplate.Template, html *htmltemplate.Template, data interface{}) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", text.Name(), err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", html.Name(), err)
	}
	return tb.String(), hb.String(), nil
}
