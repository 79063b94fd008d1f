package form

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"github.com/wordsanctuary/training-portal/internal/pkg/id"
	"github.com/wordsanctuary/training-portal/internal/pkg/inflight"
)

const (
	defaultTitle   = "Interview Questions"
	msgSubmitFail  = "Failed to submit form. Please try again."
	msgIncomplete  = "Please fill in all required fields"
	attachmentsDir = "profile-pictures/"
)

// ErrIncomplete is returned when a submission fails validation.
var ErrIncomplete = fmt.Errorf("form incomplete: %w", domain.ErrBadRequest)

type Submitter interface {
	SubmitForm(ctx context.Context, record map[string]any) error
}

// AttachmentStore moves an uploaded data URL out of the submission body.
type AttachmentStore interface {
	UploadDataURL(ctx context.Context, key, dataURL string) (string, error)
}

type ServiceDeps struct {
	Loader      *Loader
	Submitter   Submitter
	Attachments AttachmentStore // optional
	Guard       *inflight.Guard
	Logger      *slog.Logger
}

type Service struct {
	loader      *Loader
	submitter   Submitter
	attachments AttachmentStore
	guard       *inflight.Guard
	logger      *slog.Logger
}

func NewService(d ServiceDeps) *Service {
	if d.Guard == nil {
		d.Guard = inflight.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{
		loader:      d.Loader,
		submitter:   d.Submitter,
		attachments: d.Attachments,
		guard:       d.Guard,
		logger:      d.Logger,
	}
}

// Load returns the schema for level.
func (s *Service) Load(ctx context.Context, level string) (*domain.Schema, error) {
	return s.loader.Load(ctx, level)
}

// Submission is one attempt to send the questionnaire.
type Submission struct {
	Schema  *domain.Schema
	Level   string
	Side    domain.SideChannel
	Answers Answers
}

// Result is what the page shows after a submission attempt.
type Result struct {
	Message    string
	Errors     Errors
	FirstError string
	Submitted  bool
}

// Submit validates and sends sub. key identifies the submitter for the
// in-flight guard. Validation failures return ErrIncomplete with the field
// errors in the result; remote failures return the remote error.
func (s *Service) Submit(ctx context.Context, key string, sub Submission) (Result, error) {
	if sub.Schema == nil {
		return Result{Message: msgSubmitFail}, ErrNoSchema
	}
	answers := Reconcile(sub.Answers.Clone())
	if errs := Validate(sub.Schema, answers, sub.Side); len(errs) > 0 {
		return Result{Message: msgIncomplete, Errors: errs, FirstError: FirstError(sub.Schema, errs)}, ErrIncomplete
	}

	ticket, err := s.guard.Acquire("submit:" + key)
	if err != nil {
		return Result{Message: "A submission is already in progress."}, err
	}
	defer ticket.Release()

	side, err := s.offload(ctx, sub.Side)
	if err != nil {
		s.logger.Error("offload profile picture", "error", err)
		return Result{Message: msgSubmitFail}, err
	}

	record := BuildSubmission(sub.Schema, sub.Level, side, answers)
	if err := s.submitter.SubmitForm(ctx, record); err != nil {
		s.logger.Warn("submit interview form", "form_id", sub.Schema.ID, "error", err)
		return Result{Message: domain.MessageOr(err, msgSubmitFail)}, err
	}
	return Result{Message: fmt.Sprintf("%s submitted successfully!", Title(sub.Schema)), Submitted: true}, nil
}

func (s *Service) offload(ctx context.Context, side domain.SideChannel) (domain.SideChannel, error) {
	if s.attachments == nil || !strings.HasPrefix(side.ProfilePicture, "data:") {
		return side, nil
	}
	url, err := s.attachments.UploadDataURL(ctx, attachmentsDir+id.New(), side.ProfilePicture)
	if err != nil {
		return side, err
	}
	side.ProfilePicture = url
	return side, nil
}

// BuildSubmission assembles the wire record. Answers are spread last so a
// question id may shadow a side-channel key.
func BuildSubmission(schema *domain.Schema, level string, side domain.SideChannel, answers Answers) map[string]any {
	record := map[string]any{
		"leadershipLevel": level,
		"profilePicture":  side.ProfilePicture,
		"signature":       side.Signature,
	}
	if schema != nil {
		record["form_id"] = schema.ID
	}
	for k, v := range answers {
		record[k] = v
	}
	return record
}

// SideChannelFor resolves the picture and signature to submit. A passport
// photo on the profile wins over any upload and Locked reports that the
// upload control is disabled.
func SideChannelFor(profile domain.Profile, upload string) (side domain.SideChannel, locked bool) {
	lookup := profile.Lookup()
	side.Signature = lookup.String(domain.PathBioSignature)
	if passport := lookup.String(domain.PathBioPassport); passport != "" {
		side.ProfilePicture = passport
		return side, true
	}
	side.ProfilePicture = upload
	return side, false
}

// DataURL encodes an uploaded file as a data URL.
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Title is the page heading for schema.
func Title(schema *domain.Schema) string {
	if schema == nil || schema.Title == "" {
		return defaultTitle
	}
	return schema.Title
}

// IsIncomplete reports whether err is a validation failure.
func IsIncomplete(err error) bool { return errors.Is(err, ErrIncomplete) }
