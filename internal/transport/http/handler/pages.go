package handler

import (
	"net/http"
	"time"

	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/transport/http/view"
)

const splashDelay = 4 * time.Second

// PageHandler serves the read-only signed-in pages.
type PageHandler struct {
	views Renderer
}

func NewPageHandler(views Renderer) *PageHandler { return &PageHandler{views: views} }

func (h *PageHandler) Trainee(w http.ResponseWriter, r *http.Request) {
	var sess domain.Session
	if s, ok := session.FromContext(r.Context()); ok {
		sess = s.Session()
	}
	render(w, h.views, http.StatusOK, view.Trainee, view.Page{Data: traineeData(sess)})
}

func traineeData(sess domain.Session) view.TraineeData {
	p := sess.Profile.Lookup()
	level := sess.LeadershipLevel
	if level == "" {
		level = p.LeadershipLevel()
	}
	d := view.TraineeData{
		Name:      or(p.String(domain.PathName), "Trainee"),
		Honorific: domain.Honorific(p.String(domain.PathBioGender)),
		Level:     level,
		LevelName: domain.LevelName(level),
		Email:     or(p.String(domain.PathEmail), sess.Email),
		Telegram:  or(p.String(domain.PathBioPhoneContact), "Not set"),
	}
	d.Email = or(d.Email, "Not available")
	return d
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (h *PageHandler) Assessments(w http.ResponseWriter, _ *http.Request) {
	render(w, h.views, http.StatusOK, view.Assessments, view.Page{})
}

func (h *PageHandler) Executive(w http.ResponseWriter, _ *http.Request) {
	render(w, h.views, http.StatusOK, view.Executive, view.Page{})
}

func (h *PageHandler) Supreme(w http.ResponseWriter, _ *http.Request) {
	render(w, h.views, http.StatusOK, view.Supreme, view.Page{})
}

func (h *PageHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	render(w, h.views, http.StatusNotFound, view.Error, view.Page{Message: "Page not found", IsError: true})
}
