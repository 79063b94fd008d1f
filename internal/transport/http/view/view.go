// Package view renders the portal's server-side pages from embedded
// html/template files.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/wordsanctuary/training-portal/internal/application/form"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	Splash       = "splash"
	SignIn       = "signin"
	Verification = "verification"
	Receiver     = "receiver"
	Trainee      = "trainee"
	Interview    = "interview"
	Assessments  = "assessments"
	Executive    = "executive"
	Supreme      = "supreme"
	Error        = "error"
)

var pages = []string{Splash, SignIn, Verification, Receiver, Trainee, Interview, Assessments, Executive, Supreme, Error}

// Page is the data every template receives. Data holds the page-specific
// model.
type Page struct {
	Title   string
	Message string
	IsError bool
	// Redirecting shows the busy overlay while a Refresh navigation is pending.
	Redirecting bool
	Data        any
}

type SignInData struct {
	Email string
}

type VerificationData struct {
	Email  string
	Digits [6]string
	Focus  int
}

type TraineeData struct {
	Name      string
	Honorific string
	Level     string
	LevelName string
	Email     string
	Telegram  string
}

type InterviewData struct {
	Heading         string
	Theme           string
	Fields          []form.Field
	Picture         template.URL
	PictureLocked   bool
	UploadedPicture string
	PictureError    string
	FirstError      string
}

// PictureURL marks a profile picture reference safe for an img src. Only
// http(s) URLs and image data URLs pass; anything else renders nothing.
func PictureURL(ref string) template.URL {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "data:image/") {
		return template.URL(ref)
	}
	return ""
}

type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page against the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes page into a buffer first so a template failure never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
