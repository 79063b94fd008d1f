package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/application/transfer"
	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/inflight"
	"github.com/wordsanctuary/training-portal/internal/pkg/jar"
)

// --- mocks ---

type mockCentral struct{ mock.Mock }

func (m *mockCentral) RequestOTP(ctx context.Context, email string) (*domain.OTPResponse, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*domain.OTPResponse); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCentral) VerifyOTP(ctx context.Context, email, code string) (*domain.Verification, error) {
	args := m.Called(ctx, email, code)
	if v, _ := args.Get(0).(*domain.Verification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCentral) ProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).(domain.Profile)
	return p, args.Error(1)
}

type mockRegistrar struct{ mock.Mock }

func (m *mockRegistrar) AddUser(ctx context.Context, profile domain.Profile) (*domain.Account, error) {
	args := m.Called(ctx, profile)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingObserver struct{ states []string }

func (o *recordingObserver) ObserveTransition(flow, state string) {
	o.states = append(o.states, flow+":"+state)
}

// --- helpers ---

var routes = Routes{
	CentralFrontendURL: "https://central.example.org",
	PublicURL:          "https://training.example.org",
	SignIn:             "/signin",
	Verification:       "/verification",
	Default:            "/trainee",
	Interview:          "/trainee/interview-questions",
	PacingDelay:        time.Second,
	SignInDelay:        2 * time.Second,
}

type fixture struct {
	central   *mockCentral
	registrar *mockRegistrar
	obs       *recordingObserver
	guard     *inflight.Guard
	channel   *transfer.Channel
	jar       *jar.Memory
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		central:   &mockCentral{},
		registrar: &mockRegistrar{},
		obs:       &recordingObserver{},
		guard:     inflight.New(),
		channel:   transfer.New(600 * time.Second),
		jar:       jar.NewMemory(nil),
	}
	f.svc = NewService(ServiceDeps{
		Central:   f.central,
		Registrar: f.registrar,
		Transfer:  f.channel,
		Guard:     f.guard,
		Routes:    routes,
		Observer:  f.obs,
	})
	return f
}

func (f *fixture) store() *session.Store {
	return session.Load(f.jar, session.Options{MaxAge: 5 * time.Hour})
}

func (f *fixture) flow() *Flow { return f.svc.Flow(f.store()) }

// --- sign-in ---

func TestSignInThenVerify_RegistrationComplete(t *testing.T) {
	f := newFixture()
	profile := domain.Profile{"name": "Ada", "email": "a@b.com", "leadership_level": "WORKER"}
	f.central.On("RequestOTP", mock.Anything, "a@b.com").Return(&domain.OTPResponse{Message: "Code sent"}, nil)
	f.central.On("VerifyOTP", mock.Anything, "a@b.com", "123456").
		Return(&domain.Verification{Verified: true, RegistrationComplete: true, Profile: profile}, nil)
	f.registrar.On("AddUser", mock.Anything, profile).
		Return(&domain.Account{Token: "t1", User: profile}, nil)

	out := f.flow().RequestOTP(context.Background(), "a@b.com")
	assert.Equal(t, AwaitingCode, out.State)
	assert.Equal(t, "Code sent", out.Message)
	assert.Equal(t, &Navigation{To: "/verification", After: 2 * time.Second}, out.Next)
	assert.Equal(t, "a@b.com", f.store().Session().Email)

	out = f.flow().Verify(context.Background(), "123456")
	require.True(t, out.OK(), out.Message)
	assert.Equal(t, Authenticated, out.State)
	assert.Equal(t, &Navigation{To: "/trainee/interview-questions", After: time.Second}, out.Next)

	sess := f.store().Session()
	assert.Equal(t, "t1", sess.Token)
	assert.Equal(t, "WORKER", sess.LeadershipLevel)
	assert.True(t, session.HasCredential(f.jar))
	f.registrar.AssertExpectations(t)
	assert.Equal(t, []string{"request_otp:AwaitingCode", "verify:Authenticated"}, f.obs.states)
}

func TestRequestOTP_InvalidEmailMakesNoCall(t *testing.T) {
	f := newFixture()

	for _, email := range []string{"", "nope", "a@b", "a b@c.com"} {
		out := f.flow().RequestOTP(context.Background(), email)
		assert.Equal(t, AwaitingEmail, out.State, email)
		assert.ErrorIs(t, out.Err, domain.ErrBadRequest)
	}
	f.central.AssertNotCalled(t, "RequestOTP", mock.Anything, mock.Anything)
}

func TestRequestOTP_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "remote message", err: &domain.RemoteError{Op: "request otp", Status: 404, Message: "Email not found"}, want: "Email not found"},
		{name: "fallback", err: &domain.RemoteError{Op: "request otp", Err: errors.New("dial")}, want: "Failed to send OTP"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.central.On("RequestOTP", mock.Anything, "a@b.com").Return(nil, tc.err)

			out := f.flow().RequestOTP(context.Background(), "a@b.com")

			assert.Equal(t, AwaitingEmail, out.State)
			assert.Equal(t, tc.want, out.Message)
			assert.Nil(t, out.Next)
			assert.Empty(t, f.store().Session().Email)
		})
	}
}

func TestRequestOTP_DuplicateInFlight(t *testing.T) {
	f := newFixture()
	ticket, err := f.guard.Acquire("otp:a@b.com")
	require.NoError(t, err)
	defer ticket.Release()

	out := f.flow().RequestOTP(context.Background(), "a@b.com")

	assert.ErrorIs(t, out.Err, domain.ErrInFlight)
	f.central.AssertNotCalled(t, "RequestOTP", mock.Anything, mock.Anything)
}

func TestResend(t *testing.T) {
	f := newFixture()
	f.store().SetEmail("a@b.com")
	f.central.On("RequestOTP", mock.Anything, "a@b.com").Return(nil, &domain.RemoteError{Op: "request otp", Err: errors.New("dial")}).Once()
	f.central.On("RequestOTP", mock.Anything, "a@b.com").Return(&domain.OTPResponse{Message: "Code resent"}, nil).Once()

	out := f.flow().Resend(context.Background())
	assert.Equal(t, AwaitingCode, out.State)
	assert.Equal(t, "Failed to resend code", out.Message)

	out = f.flow().Resend(context.Background())
	assert.True(t, out.OK())
	assert.Equal(t, "Code resent", out.Message)
	assert.Nil(t, out.Next)
}

func TestResendAndVerify_WithoutEmailReturnToSignIn(t *testing.T) {
	f := newFixture()

	for _, out := range []Outcome{f.flow().Resend(context.Background()), f.flow().Verify(context.Background(), "123456")} {
		assert.Equal(t, Failed, out.State)
		assert.Equal(t, &Navigation{To: "/signin"}, out.Next)
	}
	f.central.AssertNotCalled(t, "RequestOTP", mock.Anything, mock.Anything)
	f.central.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
}

// --- verify ---

func TestVerify_RejectsMalformedCode(t *testing.T) {
	f := newFixture()
	f.store().SetEmail("a@b.com")

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		out := f.flow().Verify(context.Background(), code)
		assert.Equal(t, AwaitingCode, out.State, code)
	}
	f.central.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_OnboardingRedirect(t *testing.T) {
	f := newFixture()
	f.store().SetEmail("a+b@c.com")
	f.central.On("VerifyOTP", mock.Anything, "a+b@c.com", "654321").Return(&domain.Verification{Verified: true, Token: "cont"}, nil)

	out := f.flow().Verify(context.Background(), "654321")

	assert.Equal(t, RedirectingExternal, out.State)
	require.NotNil(t, out.Next)
	assert.True(t, out.Next.External)
	assert.Equal(t,
		"https://central.example.org/dashboard/onboard/individual?token=cont&redirect=https%3A%2F%2Ftraining.example.org%2Fdata-receiver&email=a%2Bb%40c.com",
		out.Next.To)
	f.registrar.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
}

func TestVerify_NeitherVariantStaysAwaitingCode(t *testing.T) {
	f := newFixture()
	f.store().SetEmail("a@b.com")
	f.central.On("VerifyOTP", mock.Anything, "a@b.com", "123456").Return(&domain.Verification{Verified: true}, nil)

	out := f.flow().Verify(context.Background(), "123456")

	assert.Equal(t, AwaitingCode, out.State)
	assert.Equal(t, "Failed to verify code", out.Message)
}

func TestVerify_RemoteFailure(t *testing.T) {
	f := newFixture()
	f.store().SetEmail("a@b.com")
	f.central.On("VerifyOTP", mock.Anything, "a@b.com", "123456").
		Return(nil, &domain.RemoteError{Op: "verify otp", Status: 400, Message: "Invalid or expired code"})

	out := f.flow().Verify(context.Background(), "123456")

	assert.Equal(t, AwaitingCode, out.State)
	assert.Equal(t, "Invalid or expired code", out.Message)
	assert.False(t, f.guard.Held("verify:a@b.com"))
}

func TestVerify_AddUserFailure(t *testing.T) {
	f := newFixture()
	f.store().SetEmail("a@b.com")
	profile := domain.Profile{"name": "Ada"}
	f.central.On("VerifyOTP", mock.Anything, "a@b.com", "123456").
		Return(&domain.Verification{RegistrationComplete: true, Profile: profile}, nil)
	f.registrar.On("AddUser", mock.Anything, profile).Return(nil, &domain.RemoteError{Op: "add user", Err: errors.New("dial")})

	out := f.flow().Verify(context.Background(), "123456")

	assert.Equal(t, Failed, out.State)
	assert.Equal(t, "Failed to add user", out.Message)
	assert.False(t, f.store().Session().Authenticated())
}

// --- transfer ---

func TestIngestTransfer_NoPayload(t *testing.T) {
	f := newFixture()

	out := f.flow().IngestTransfer(context.Background(), f.jar)

	assert.Equal(t, Failed, out.State)
	assert.Contains(t, out.Message, "No profile data")
	f.registrar.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
}

func TestIngestTransfer_InvalidPayload(t *testing.T) {
	f := newFixture()
	f.jar.Set(&http.Cookie{Name: transfer.Cookie, Value: "garbage"})

	out := f.flow().IngestTransfer(context.Background(), f.jar)

	assert.Equal(t, Failed, out.State)
	assert.Equal(t, "Invalid profile data. Please try again.", out.Message)
	_, ok := f.jar.Get(transfer.Cookie)
	assert.False(t, ok)
}

func TestIngestTransfer_Success(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.channel.Publish(f.jar, map[string]any{"name": "Ada", "email": "a@b.com"}))
	f.registrar.On("AddUser", mock.Anything, domain.Profile{"name": "Ada", "email": "a@b.com"}).
		Return(&domain.Account{Token: "t2", User: domain.Profile{"name": "Ada", "role": "trainee"}}, nil)

	out := f.flow().IngestTransfer(context.Background(), f.jar)

	assert.Equal(t, Authenticated, out.State)
	assert.Equal(t, "trainee", f.store().Session().Role)
	_, ok := f.jar.Get(transfer.Cookie)
	assert.False(t, ok)
}

func TestIngestTransfer_WithoutEmailNotBlockedByOtherAnonymousIngest(t *testing.T) {
	f := newFixture()
	held, err := f.guard.Acquire("add-user:")
	require.NoError(t, err)
	defer held.Release()

	require.NoError(t, f.channel.Publish(f.jar, map[string]any{"name": "Ada"}))
	f.registrar.On("AddUser", mock.Anything, domain.Profile{"name": "Ada"}).
		Return(&domain.Account{Token: "t3", User: domain.Profile{"name": "Ada"}}, nil)

	out := f.flow().IngestTransfer(context.Background(), f.jar)

	assert.Equal(t, Authenticated, out.State)
	assert.NotErrorIs(t, out.Err, domain.ErrInFlight)
	f.registrar.AssertExpectations(t)
}

func TestIngestTransfer_AddUserFallback(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.channel.Publish(f.jar, map[string]any{"name": "Ada"}))
	f.registrar.On("AddUser", mock.Anything, mock.Anything).Return(nil, &domain.RemoteError{Op: "add user", Status: 500})

	out := f.flow().IngestTransfer(context.Background(), f.jar)

	assert.Equal(t, Failed, out.State)
	assert.Equal(t, "Failed to process user data", out.Message)
}

// --- continue ---

func TestContinue_NoEmail(t *testing.T) {
	f := newFixture()

	out := f.flow().Continue(context.Background(), "", true)
	assert.Equal(t, Authenticated, out.State)
	assert.Equal(t, &Navigation{To: "/trainee"}, out.Next)

	out = f.flow().Continue(context.Background(), "", false)
	assert.Equal(t, &Navigation{To: "/signin"}, out.Next)
}

func TestContinue_InvalidEmailDelaysSignIn(t *testing.T) {
	f := newFixture()

	out := f.flow().Continue(context.Background(), "not-an-email", false)

	assert.Equal(t, Failed, out.State)
	assert.Equal(t, &Navigation{To: "/signin", After: 2 * time.Second}, out.Next)
	f.central.AssertNotCalled(t, "ProfileByEmail", mock.Anything, mock.Anything)
}

func TestContinue_ValidEmailRegisters(t *testing.T) {
	f := newFixture()
	profile := domain.Profile{"email": "a@b.com", "cached_bio": map[string]any{"leadership_level": "HOD"}}
	f.central.On("ProfileByEmail", mock.Anything, "a@b.com").Return(profile, nil)
	f.registrar.On("AddUser", mock.Anything, profile).Return(&domain.Account{Token: "t3", User: profile}, nil)

	out := f.flow().Continue(context.Background(), "a@b.com", false)

	assert.Equal(t, Authenticated, out.State)
	assert.Equal(t, "HOD", f.store().Session().LeadershipLevel)
}

func TestContinue_ProfileLookupFailure(t *testing.T) {
	f := newFixture()
	f.central.On("ProfileByEmail", mock.Anything, "a@b.com").Return(nil, &domain.RemoteError{Op: "profile by email", Status: 404, Message: "No such user"})

	out := f.flow().Continue(context.Background(), "a@b.com", false)

	assert.Equal(t, Failed, out.State)
	assert.Equal(t, "No such user", out.Message)
}

// --- logout ---

func TestLogout(t *testing.T) {
	f := newFixture()
	f.store().Commit(domain.Account{Token: "t1", User: domain.Profile{"name": "Ada"}})
	require.True(t, session.HasCredential(f.jar))

	out := f.flow().Logout()

	assert.Equal(t, &Navigation{To: "/signin"}, out.Next)
	assert.False(t, session.HasCredential(f.jar))
	assert.False(t, f.store().Session().Authenticated())
}
