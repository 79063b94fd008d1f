package handler

import (
	"net/http"

	"github.com/wordsanctuary/training-portal/internal/application/bootstrap"
	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
	"github.com/wordsanctuary/training-portal/internal/transport/http/middleware"
	"github.com/wordsanctuary/training-portal/internal/transport/http/view"
)

// AuthHandler serves the sign-in pages and the bootstrap transitions behind
// them.
type AuthHandler struct {
	svc     *bootstrap.Service
	views   Renderer
	session session.Options
	signIn  string
}

func NewAuthHandler(svc *bootstrap.Service, views Renderer, opts session.Options, signIn string) *AuthHandler {
	return &AuthHandler{svc: svc, views: views, session: opts, signIn: signIn}
}

func (h *AuthHandler) store(w http.ResponseWriter, r *http.Request) *session.Store {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return session.Load(jar.FromRequest(w, r), h.session)
}

func (h *AuthHandler) cookies(w http.ResponseWriter, r *http.Request) jar.Jar {
	if j, ok := middleware.JarFromContext(r.Context()); ok {
		return j
	}
	return jar.FromRequest(w, r)
}

func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	email := h.store(w, r).Session().Email
	render(w, h.views, http.StatusOK, view.SignIn, view.Page{Data: view.SignInData{Email: email}})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	email := r.PostFormValue("email")
	out := h.svc.Flow(h.store(w, r)).RequestOTP(r.Context(), email)
	respond(w, r, h.views, view.SignIn, view.SignInData{Email: email}, out)
}

func (h *AuthHandler) VerificationPage(w http.ResponseWriter, r *http.Request) {
	var in bootstrap.CodeInput
	render(w, h.views, http.StatusOK, view.Verification, view.Page{Data: h.verificationData(w, r, in)})
}

// Verify accepts either a pasted code or the six single-digit boxes.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	in := codeInput(r)
	out := h.svc.Flow(h.store(w, r)).Verify(r.Context(), in.Code())
	respond(w, r, h.views, view.Verification, h.verificationData(w, r, in), out)
}

func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	out := h.svc.Flow(h.store(w, r)).Resend(r.Context())
	var in bootstrap.CodeInput
	respond(w, r, h.views, view.Verification, h.verificationData(w, r, in), out)
}

func (h *AuthHandler) verificationData(w http.ResponseWriter, r *http.Request, in bootstrap.CodeInput) view.VerificationData {
	return view.VerificationData{Email: h.store(w, r).Session().Email, Digits: in.Digits, Focus: in.Focus}
}

func codeInput(r *http.Request) bootstrap.CodeInput {
	var in bootstrap.CodeInput
	if pasted := r.PostFormValue("code"); pasted != "" {
		in.Paste(pasted)
		if in.Complete() {
			return in
		}
	}
	for i, d := range r.PostForm["digit"] {
		if i >= bootstrap.CodeLength {
			break
		}
		in.Edit(i, d)
	}
	return in
}

// DataReceiver is the landing page after off-portal onboarding. It
// registers the profile the central frontend handed over.
func (h *AuthHandler) DataReceiver(w http.ResponseWriter, r *http.Request) {
	out := h.svc.Flow(h.store(w, r)).IngestTransfer(r.Context(), h.cookies(w, r))
	respond(w, r, h.views, view.Receiver, nil, out)
}

// Continue is the email-query entry point, /?email=... A first visit with
// neither an email nor a credential gets the splash screen.
func (h *AuthHandler) Continue(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	hasCredential := session.HasCredential(h.cookies(w, r))
	if email == "" && !hasCredential {
		h.Splash(w, r)
		return
	}
	out := h.svc.Flow(h.store(w, r)).Continue(r.Context(), email, hasCredential)
	respond(w, r, h.views, view.Receiver, nil, out)
}

// Splash shows the brand screen and moves on to sign-in.
func (h *AuthHandler) Splash(w http.ResponseWriter, r *http.Request) {
	refresh(w, &bootstrap.Navigation{To: h.signIn, After: splashDelay})
	render(w, h.views, http.StatusOK, view.Splash, view.Page{Redirecting: true})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	out := h.svc.Flow(h.store(w, r)).Logout()
	respond(w, r, h.views, view.SignIn, view.SignInData{}, out)
}
