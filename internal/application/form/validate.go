package form

import (
	"strings"

	"github.com/wordsanctuary/training-portal/internal/domain"
)

// ProfilePictureField keys the profile picture error.
const ProfilePictureField = "profilePicture"

const (
	msgRequired       = "This field is required"
	msgPictureMissing = "Profile picture is required"
)

// Errors maps a field id to its message. Empty means valid.
type Errors map[string]string

// Validate reports every unanswered question that is not suppressed by its
// controller, plus a missing profile picture.
func Validate(schema *domain.Schema, answers Answers, side domain.SideChannel) Errors {
	errs := Errors{}
	if schema != nil {
		for _, q := range schema.Questions {
			if Suppressed(answers, q.ID) {
				continue
			}
			if strings.TrimSpace(answers[q.ID]) == "" {
				errs[q.ID] = msgRequired
			}
		}
	}
	if strings.TrimSpace(side.ProfilePicture) == "" {
		errs[ProfilePictureField] = msgPictureMissing
	}
	return errs
}

// FirstError returns the first invalid field in render order, or "".
func FirstError(schema *domain.Schema, errs Errors) string {
	if _, ok := errs[ProfilePictureField]; ok {
		return ProfilePictureField
	}
	if schema == nil {
		return ""
	}
	for _, q := range schema.Questions {
		if _, ok := errs[q.ID]; ok {
			return q.ID
		}
	}
	return ""
}
