// Package training is the client for the training API: user registration,
// interview form schemas and submissions.
package training

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/infrastructure/httpjson"
	"github.com/wordsanctuary/training-portal/internal/pkg/validate"
)

const (
	addUserPath = "/user/add-user"
	formsPath   = "/interview-form/get-by-hierarchy/"
	submitPath  = "/interview-form/submit"
)

type Client struct {
	http *httpjson.Client
}

func NewClient(baseURL string, hc *http.Client, obs httpjson.Observer) *Client {
	return &Client{http: httpjson.New("training", baseURL, hc, obs)}
}

type response[T any] struct {
	Success        *bool  `json:"success,omitempty"`
	Message        string `json:"message"`
	ResponseObject T      `json:"responseObject"`
}

func (r *response[T]) failed() bool { return r.Success != nil && !*r.Success }

// AddUser registers profile with the training API and returns the issued
// credential and stored user record.
func (c *Client) AddUser(ctx context.Context, profile domain.Profile) (*domain.Account, error) {
	var out response[domain.Account]
	if err := c.http.Do(ctx, "add user", http.MethodPost, addUserPath, profile, &out); err != nil {
		return nil, err
	}
	if out.failed() {
		return nil, &domain.RemoteError{Op: "add user", Status: http.StatusOK, Message: out.Message}
	}
	if out.ResponseObject.Token == "" {
		return nil, &domain.RemoteError{Op: "add user", Status: http.StatusOK, Message: out.Message, Err: fmt.Errorf("no token issued: %w", domain.ErrUnauthorized)}
	}
	return &out.ResponseObject, nil
}

type namedRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type questionDTO struct {
	ID      string   `json:"id" validate:"required"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type formDTO struct {
	ID        string        `json:"_id" validate:"required"`
	Title     string        `json:"title"`
	Level     namedRef      `json:"level"`
	NextLevel namedRef      `json:"nextLevel"`
	Questions []questionDTO `json:"questions" validate:"dive"`
}

type formsObject struct {
	Forms []formDTO `json:"forms"`
}

// FormsByLevel returns the interview forms published for a leadership
// level, in the order the API lists them. Forms with missing or repeated
// question ids are rejected.
func (c *Client) FormsByLevel(ctx context.Context, level string) ([]domain.Schema, error) {
	var out response[formsObject]
	if err := c.http.Do(ctx, "forms by level", http.MethodGet, formsPath+url.PathEscape(level), nil, &out); err != nil {
		return nil, err
	}
	if out.failed() {
		return nil, &domain.RemoteError{Op: "forms by level", Status: http.StatusOK, Message: out.Message}
	}
	schemas := make([]domain.Schema, 0, len(out.ResponseObject.Forms))
	for _, f := range out.ResponseObject.Forms {
		s, err := f.toSchema()
		if err != nil {
			return nil, fmt.Errorf("forms by level %s: %w", level, err)
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

func (f formDTO) toSchema() (domain.Schema, error) {
	if err := validate.Struct(f); err != nil {
		return domain.Schema{}, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	seen := make(map[string]struct{}, len(f.Questions))
	qs := make([]domain.Question, 0, len(f.Questions))
	for _, q := range f.Questions {
		if _, dup := seen[q.ID]; dup {
			return domain.Schema{}, fmt.Errorf("%w: form %s repeats question id %q", domain.ErrBadRequest, f.ID, q.ID)
		}
		seen[q.ID] = struct{}{}
		qs = append(qs, domain.Question{
			ID:      q.ID,
			Text:    q.Text,
			Type:    domain.QuestionType(q.Type),
			Options: q.Options,
		})
	}
	return domain.Schema{
		ID:          f.ID,
		Title:       f.Title,
		TargetLevel: f.Level.Name,
		NextLevel:   f.NextLevel.Name,
		Questions:   qs,
	}, nil
}

// SubmitForm posts a completed submission record.
func (c *Client) SubmitForm(ctx context.Context, record map[string]any) error {
	var out response[any]
	if err := c.http.Do(ctx, "submit form", http.MethodPost, submitPath, record, &out); err != nil {
		return err
	}
	// The submit endpoint signals acceptance with success: true only.
	if out.Success == nil || !*out.Success {
		return &domain.RemoteError{Op: "submit form", Status: http.StatusOK, Message: out.Message}
	}
	return nil
}
