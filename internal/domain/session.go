package domain

// Session is the client-held tuple describing the signed-in user.
// Email is the address of the most recent successful OTP request.
type Session struct {
	Token           string  `json:"token,omitempty"`
	Email           string  `json:"email,omitempty"`
	Profile         Profile `json:"profile,omitempty"`
	LeadershipLevel string  `json:"leadership_level,omitempty"`
	Role            string  `json:"role,omitempty"`
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

// Account is the result of the training API's add-user call.
type Account struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// OTPResponse is the central system's reply to an OTP request.
type OTPResponse struct {
	Message string `json:"message"`
	Success *bool  `json:"success,omitempty"`
}

// Verification is the central system's reply to an OTP verify call. Either
// RegistrationComplete is set with Profile attached, or Token carries a
// continuation for off-app onboarding.
type Verification struct {
	Verified             bool    `json:"verified"`
	RegistrationComplete bool    `json:"registration_complete"`
	Profile              Profile `json:"profile,omitempty"`
	Success              *bool   `json:"success,omitempty"`
	Token                string  `json:"token,omitempty"`
	Message              string  `json:"message,omitempty"`
}
