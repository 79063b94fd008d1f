package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wordsanctuary/training-portal/internal/application/form"
	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/transport/http/view"
)

const (
	maxUploadSize    = 5 << 20
	pictureUploadKey = "profilePicture"
	pictureDataKey   = "profilePictureData"
	msgLoadFailed    = "Failed to load interview questions. Please try again."
)

// InterviewHandler serves the level-specific interview questionnaire.
type InterviewHandler struct {
	forms *form.Service
	views Renderer
}

func NewInterviewHandler(forms *form.Service, views Renderer) *InterviewHandler {
	return &InterviewHandler{forms: forms, views: views}
}

func currentSession(r *http.Request) domain.Session {
	if s, ok := session.FromContext(r.Context()); ok {
		return s.Session()
	}
	return domain.Session{}
}

func sessionLevel(sess domain.Session) string {
	if sess.LeadershipLevel != "" {
		return sess.LeadershipLevel
	}
	return sess.Profile.LeadershipLevel()
}

func (h *InterviewHandler) load(w http.ResponseWriter, r *http.Request, level string) (*domain.Schema, bool) {
	schema, err := h.forms.Load(r.Context(), level)
	if err == nil {
		return schema, true
	}
	data := view.InterviewData{Theme: string(form.ThemeFor(level))}
	if errors.Is(err, form.ErrNoSchema) {
		// Without a level or a published form the page keeps its loading state.
		render(w, h.views, http.StatusOK, view.Interview, view.Page{Data: data})
		return nil, false
	}
	render(w, h.views, http.StatusBadGateway, view.Interview, view.Page{Message: msgLoadFailed, IsError: true, Data: data})
	return nil, false
}

func (h *InterviewHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	level := sessionLevel(sess)
	schema, ok := h.load(w, r, level)
	if !ok {
		return
	}
	answers := form.Prefill(schema, sess.Profile, nil)
	side, locked := form.SideChannelFor(sess.Profile, "")
	data := interviewData(schema, level, answers, nil, side, locked)
	render(w, h.views, http.StatusOK, view.Interview, view.Page{Data: data})
}

func (h *InterviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	sess := currentSession(r)
	level := sessionLevel(sess)
	schema, ok := h.load(w, r, level)
	if !ok {
		return
	}

	answers := make(form.Answers, len(schema.Questions))
	for _, q := range schema.Questions {
		answers = form.Edit(answers, q.ID, r.FormValue(q.ID))
	}
	upload, err := uploadedPicture(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	side, locked := form.SideChannelFor(sess.Profile, upload)

	res, err := h.forms.Submit(r.Context(), sess.Token, form.Submission{
		Schema:  schema,
		Level:   level,
		Side:    side,
		Answers: answers,
	})
	data := interviewData(schema, level, answers, res.Errors, side, locked)
	data.FirstError = res.FirstError
	render(w, h.views, statusFor(err), view.Interview, view.Page{Message: res.Message, IsError: err != nil, Data: data})
}

// uploadedPicture returns the picture as a data URL, from a fresh file
// upload or from the copy carried over from a previous attempt.
func uploadedPicture(r *http.Request) (string, error) {
	file, hdr, err := r.FormFile(pictureUploadKey)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		if carried := r.FormValue(pictureDataKey); strings.HasPrefix(carried, "data:image/") {
			return carried, nil
		}
		return "", nil
	case err != nil:
		return "", err
	}
	defer file.Close()
	buf, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	if len(buf) == 0 {
		return "", nil
	}
	return form.DataURL(hdr.Header.Get("Content-Type"), buf), nil
}

func interviewData(schema *domain.Schema, level string, answers form.Answers, errs form.Errors, side domain.SideChannel, locked bool) view.InterviewData {
	theme := schema.TargetLevel
	if theme == "" {
		theme = level
	}
	d := view.InterviewData{
		Heading:       form.Title(schema),
		Theme:         string(form.ThemeFor(theme)),
		Fields:        form.Fields(schema, answers, errs),
		Picture:       view.PictureURL(side.ProfilePicture),
		PictureLocked: locked,
		PictureError:  errs[form.ProfilePictureField],
	}
	if !locked && strings.HasPrefix(side.ProfilePicture, "data:image/") {
		d.UploadedPicture = side.ProfilePicture
	}
	return d
}
