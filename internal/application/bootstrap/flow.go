// Package bootstrap turns an anonymous visitor into a signed-in session:
// email and code sign-in, the off-portal onboarding handoff, the email-query
// entry point and logout.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/application/transfer"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/id"
	"github.com/wordsanctuary/training-portal/internal/pkg/inflight"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
	"github.com/wordsanctuary/training-portal/internal/pkg/validate"
)

const (
	msgInvalidEmail   = "Please enter a valid email address"
	msgInvalidCode    = "Please enter the 6-digit code"
	msgSendFailed     = "Failed to send OTP"
	msgResendFailed   = "Failed to resend code"
	msgVerifyFailed   = "Failed to verify code"
	msgAddUserFailed  = "Failed to add user"
	msgProcessFailed  = "Failed to process user data"
	msgNoPayload      = "No profile data found. Please try again."
	msgBadPayload     = "Invalid profile data. Please try again."
	msgNoEmail        = "Your sign-in session has expired. Please sign in again."
	msgRedirecting    = "You are being redirected to complete your profile"
	msgSignedIn       = "Login successful. Redirecting to dashboard..."
	msgInFlight       = "Request already in progress. Please wait."
	defaultOTPMessage = "Verification code sent"
)

// Central is the central system as seen by the bootstrap.
type Central interface {
	RequestOTP(ctx context.Context, email string) (*domain.OTPResponse, error)
	VerifyOTP(ctx context.Context, email, code string) (*domain.Verification, error)
	ProfileByEmail(ctx context.Context, email string) (domain.Profile, error)
}

// Registrar registers a profile with the training API.
type Registrar interface {
	AddUser(ctx context.Context, profile domain.Profile) (*domain.Account, error)
}

type TransitionObserver interface {
	ObserveTransition(flow, state string)
}

// Routes are the portal locations the bootstrap navigates between.
type Routes struct {
	CentralFrontendURL string
	PublicURL          string
	SignIn             string
	Verification       string
	Default            string
	Interview          string
	PacingDelay        time.Duration
	SignInDelay        time.Duration
}

type ServiceDeps struct {
	Central   Central
	Registrar Registrar
	Transfer  *transfer.Channel
	Guard     *inflight.Guard
	Routes    Routes
	Observer  TransitionObserver
	Logger    *slog.Logger
}

// Service holds what every flow shares.
type Service struct {
	central   Central
	registrar Registrar
	transfer  *transfer.Channel
	guard     *inflight.Guard
	routes    Routes
	obs       TransitionObserver
	logger    *slog.Logger
}

func NewService(d ServiceDeps) *Service {
	if d.Guard == nil {
		d.Guard = inflight.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Routes.Verification == "" {
		d.Routes.Verification = "/verification"
	}
	return &Service{
		central:   d.Central,
		registrar: d.Registrar,
		transfer:  d.Transfer,
		guard:     d.Guard,
		routes:    d.Routes,
		obs:       d.Observer,
		logger:    d.Logger,
	}
}

// Flow binds the service to one client's session.
func (s *Service) Flow(store *session.Store) *Flow {
	return &Flow{svc: s, store: store}
}

type Flow struct {
	svc   *Service
	store *session.Store
}

// RequestOTP asks for a sign-in code for email.
func (f *Flow) RequestOTP(ctx context.Context, email string) Outcome {
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return f.done("request_otp", Outcome{State: AwaitingEmail, Message: msgInvalidEmail, Err: domain.ErrBadRequest})
	}
	ticket, err := f.svc.guard.Acquire("otp:" + email)
	if err != nil {
		return f.done("request_otp", Outcome{State: RequestingOtp, Message: msgInFlight, Err: err})
	}
	defer ticket.Release()

	resp, err := f.svc.central.RequestOTP(ctx, email)
	if err != nil {
		f.svc.logger.Warn("request otp", "error", err)
		return f.done("request_otp", Outcome{State: AwaitingEmail, Message: domain.MessageOr(err, msgSendFailed), Err: err})
	}
	f.store.SetEmail(email)
	return f.done("request_otp", Outcome{
		State:   AwaitingCode,
		Message: otpMessage(resp),
		Next:    navigate(f.svc.routes.Verification, f.svc.routes.SignInDelay),
	})
}

// Resend repeats the code request for the pending email.
func (f *Flow) Resend(ctx context.Context) Outcome {
	email := f.store.Session().Email
	if email == "" {
		return f.done("resend", f.lostEmail())
	}
	ticket, err := f.svc.guard.Acquire("otp:" + email)
	if err != nil {
		return f.done("resend", Outcome{State: AwaitingCode, Message: msgInFlight, Err: err})
	}
	defer ticket.Release()

	resp, err := f.svc.central.RequestOTP(ctx, email)
	if err != nil {
		f.svc.logger.Warn("resend otp", "error", err)
		return f.done("resend", Outcome{State: AwaitingCode, Message: domain.MessageOr(err, msgResendFailed), Err: err})
	}
	return f.done("resend", Outcome{State: AwaitingCode, Message: otpMessage(resp)})
}

// Verify checks code for the pending email and, depending on the central
// system's answer, registers the user or hands off to external onboarding.
func (f *Flow) Verify(ctx context.Context, code string) Outcome {
	email := f.store.Session().Email
	if email == "" {
		return f.done("verify", f.lostEmail())
	}
	if !ValidCode(code) {
		return f.done("verify", Outcome{State: AwaitingCode, Message: msgInvalidCode, Err: domain.ErrBadRequest})
	}
	ticket, err := f.svc.guard.Acquire("verify:" + email)
	if err != nil {
		return f.done("verify", Outcome{State: VerifyingOtp, Message: msgInFlight, Err: err})
	}
	defer ticket.Release()

	v, err := f.svc.central.VerifyOTP(ctx, email, code)
	if err != nil {
		f.svc.logger.Warn("verify otp", "error", err)
		return f.done("verify", Outcome{State: AwaitingCode, Message: domain.MessageOr(err, msgVerifyFailed), Err: err})
	}
	switch {
	case v.RegistrationComplete && len(v.Profile) > 0:
		return f.addUser(ctx, "verify", v.Profile, msgAddUserFailed)
	case v.Token != "":
		return f.done("verify", Outcome{
			State:   RedirectingExternal,
			Message: msgRedirecting,
			Next:    &Navigation{To: f.onboardingURL(v.Token, email), External: true},
		})
	}
	return f.done("verify", Outcome{State: AwaitingCode, Message: msgVerifyFailed, Err: domain.ErrRemote})
}

// IngestTransfer registers the profile handed over through the transfer
// channel. The payload is consumed whether or not it parses.
func (f *Flow) IngestTransfer(ctx context.Context, j jar.Jar) Outcome {
	profile, err := f.svc.transfer.Consume(j)
	switch {
	case errors.Is(err, transfer.ErrNoPayload):
		return f.done("ingest", Outcome{State: Failed, Message: msgNoPayload, Err: err})
	case err != nil:
		return f.done("ingest", Outcome{State: Failed, Message: msgBadPayload, Err: err})
	}
	return f.addUser(ctx, "ingest", profile, msgProcessFailed)
}

// Continue is the email-query entry point. An empty email routes by the
// existing credential.
func (f *Flow) Continue(ctx context.Context, email string, hasCredential bool) Outcome {
	email = strings.TrimSpace(email)
	if email == "" {
		if hasCredential {
			return f.done("continue", Outcome{State: Authenticated, Next: navigate(f.svc.routes.Default, 0)})
		}
		return f.done("continue", Outcome{State: AwaitingEmail, Next: navigate(f.svc.routes.SignIn, 0)})
	}
	if !validate.Email(email) {
		return f.done("continue", Outcome{
			State:   Failed,
			Message: msgInvalidEmail,
			Err:     domain.ErrBadRequest,
			Next:    navigate(f.svc.routes.SignIn, f.svc.routes.SignInDelay),
		})
	}
	profile, err := f.svc.central.ProfileByEmail(ctx, email)
	if err != nil {
		f.svc.logger.Warn("profile by email", "error", err)
		return f.done("continue", Outcome{State: Failed, Message: domain.MessageOr(err, msgProcessFailed), Err: err})
	}
	return f.addUser(ctx, "continue", profile, msgProcessFailed)
}

// Logout clears the session and its credential.
func (f *Flow) Logout() Outcome {
	f.store.Reset()
	return f.done("logout", Outcome{State: AwaitingEmail, Next: navigate(f.svc.routes.SignIn, 0)})
}

func (f *Flow) addUser(ctx context.Context, flow string, profile domain.Profile, fallback string) Outcome {
	key := profile.String(domain.PathEmail)
	if key == "" {
		key = f.store.Session().Email
	}
	if key == "" {
		key = id.New()
	}
	ticket, err := f.svc.guard.Acquire("add-user:" + key)
	if err != nil {
		return f.done(flow, Outcome{State: AddingUser, Message: msgInFlight, Err: err})
	}
	defer ticket.Release()

	acc, err := f.svc.registrar.AddUser(ctx, profile)
	if err != nil {
		f.svc.logger.Warn("add user", "flow", flow, "error", err)
		return f.done(flow, Outcome{State: Failed, Message: domain.MessageOr(err, fallback), Err: err})
	}
	f.store.Commit(*acc)
	return f.done(flow, Outcome{
		State:   Authenticated,
		Message: msgSignedIn,
		Next:    navigate(f.svc.routes.Interview, f.svc.routes.PacingDelay),
	})
}

func (f *Flow) lostEmail() Outcome {
	return Outcome{State: Failed, Message: msgNoEmail, Err: domain.ErrUnauthorized, Next: navigate(f.svc.routes.SignIn, 0)}
}

func (f *Flow) onboardingURL(token, email string) string {
	redirect := strings.TrimRight(f.svc.routes.PublicURL, "/") + "/data-receiver"
	return strings.TrimRight(f.svc.routes.CentralFrontendURL, "/") + "/dashboard/onboard/individual" +
		"?token=" + url.QueryEscape(token) +
		"&redirect=" + url.QueryEscape(redirect) +
		"&email=" + url.QueryEscape(email)
}

func (f *Flow) done(flow string, o Outcome) Outcome {
	if f.svc.obs != nil {
		f.svc.obs.ObserveTransition(flow, string(o.State))
	}
	return o
}

func otpMessage(resp *domain.OTPResponse) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	return defaultOTPMessage
}
