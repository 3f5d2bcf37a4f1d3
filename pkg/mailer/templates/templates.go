package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// EmailData is the payload every template renders from. It travels through
// the queue as a JSON object.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	LogoURL    string `json:"LogoURL"`
	SupportURL string `json:"SupportURL"`
	AppURL     string `json:"AppURL"`

	Time    string            `json:"Time"`
	TimeAt  time.Time         `json:"TimeAt"`
	Changes map[string]string `json:"Changes"`
}

func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// Message is one rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// set holds the three parsed parts of one template name:
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

// parsed once; the files are embedded so a parse error is a build defect
var sets = map[string]set{
	Welcome:        mustParse(Welcome),
	ProfileUpdated: mustParse(ProfileUpdated),
}

// {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	}
	if rv := reflect.ValueOf(value); !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

func funcs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

func mustParse(name string) set {
	parseText := func(file string) *texttpl.Template {
		return texttpl.Must(texttpl.New(file).Funcs(funcs()).ParseFS(FS, file))
	}
	html := name + ".html.tmpl"
	return set{
		subject: parseText(name + ".subject.tmpl"),
		text:    parseText(name + ".text.tmpl"),
		html:    htmpl.Must(htmpl.New(html).Funcs(funcs()).ParseFS(FS, html)),
	}
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func execute(t executor, part string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %s: %w", part, err)
	}
	return buf.String(), nil
}

// Known reports whether name has a template set.
func Known(name string) bool {
	_, ok := sets[name]
	return ok
}

// Render fills the subject, text and html parts of name with data.
func Render(name string, data any) (Message, error) {
	s, ok := sets[name]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	var (
		msg Message
		err error
	)
	if msg.Subject, err = execute(s.subject, name+" subject", data); err != nil {
		return Message{}, err
	}
	if msg.Text, err = execute(s.text, name+" text", data); err != nil {
		return Message{}, err
	}
	if msg.HTML, err = execute(s.html, name+" html", data); err != nil {
		return Message{}, err
	}
	msg.Subject = strings.TrimSpace(msg.Subject)
	return msg, nil
}
