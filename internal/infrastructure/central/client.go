// Package central is the client for the central system API that issues and
// verifies sign-in codes and owns user profiles.
package central

import (
	"context"
	"net/http"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/infrastructure/httpjson"
)

const (
	loginPath  = "/auth/access/request/external/login"
	verifyPath = "/auth/access/request/external/verify"
)

type Client struct {
	http        *httpjson.Client
	profilePath string
}

// NewClient builds a client rooted at baseURL. profilePath is the
// profile-by-email endpoint.
func NewClient(baseURL, profilePath string, hc *http.Client, obs httpjson.Observer) *Client {
	return &Client{
		http:        httpjson.New("central", baseURL, hc, obs),
		profilePath: profilePath,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// RequestOTP asks the central system to send a code to email.
func (c *Client) RequestOTP(ctx context.Context, email string) (*domain.OTPResponse, error) {
	var out domain.OTPResponse
	if err := c.http.Do(ctx, "request otp", http.MethodPost, loginPath, emailRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, &domain.RemoteError{Op: "request otp", Status: http.StatusOK, Message: out.Message}
	}
	return &out, nil
}

// VerifyOTP checks code against the most recent request for email.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*domain.Verification, error) {
	var out domain.Verification
	if err := c.http.Do(ctx, "verify otp", http.MethodPost, verifyPath, verifyRequest{Email: email, OTP: code}, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, &domain.RemoteError{Op: "verify otp", Status: http.StatusOK, Message: out.Message}
	}
	return &out, nil
}

type profileResponse struct {
	Success *bool          `json:"success,omitempty"`
	Message string         `json:"message,omitempty"`
	Profile domain.Profile `json:"profile"`
	User    domain.Profile `json:"user"`
}

// ProfileByEmail fetches the profile the central system holds for email.
func (c *Client) ProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	var out profileResponse
	if err := c.http.Do(ctx, "profile by email", http.MethodPost, c.profilePath, emailRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, &domain.RemoteError{Op: "profile by email", Status: http.StatusOK, Message: out.Message}
	}
	switch {
	case len(out.Profile) > 0:
		return out.Profile, nil
	case len(out.User) > 0:
		return out.User, nil
	}
	return nil, &domain.RemoteError{Op: "profile by email", Status: http.StatusOK, Message: out.Message, Err: domain.ErrNotFound}
}
