package form

import (
	"strings"

	"github.com/wordsanctuary/training-portal/internal/domain"
	"golang.org/x/text/cases"
)

// Answers maps question id to the entered value.
type Answers map[string]string

// Clone returns an independent copy; a nil receiver yields an empty map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// dependents lists, per controlling yes/no question, the follow-ups that are
// blanked and not required while the controller is "no".
var dependents = map[string][]string{
	"inRelationship": {"relationshipDetails", "relationshipWith", "mentorAware"},
	"hasChallenges":  {"challengesDetails"},
}

var controllerOf = func() map[string]string {
	m := make(map[string]string)
	for ctrl, deps := range dependents {
		for _, d := range deps {
			m[d] = ctrl
		}
	}
	return m
}()

// Suppressed reports whether id is a follow-up whose controller is "no".
func Suppressed(answers Answers, id string) bool {
	ctrl, ok := controllerOf[id]
	return ok && answers[ctrl] == "no"
}

// Edit returns answers with id set to value and conditional follow-ups
// reconciled.
func Edit(answers Answers, id, value string) Answers {
	out := answers.Clone()
	out[id] = value
	return Reconcile(out)
}

// Reconcile blanks every follow-up whose controller is "no". It mutates and
// returns answers.
func Reconcile(answers Answers) Answers {
	for ctrl, deps := range dependents {
		if answers[ctrl] != "no" {
			continue
		}
		for _, d := range deps {
			if _, ok := answers[d]; ok {
				answers[d] = ""
			}
		}
	}
	return answers
}

type hint struct {
	needle string
	path   string
}

var prefillHints = []hint{
	{needle: "full name", path: domain.PathName},
	{needle: "gender", path: domain.PathBioGender},
	{needle: "telegram", path: domain.PathBioPhoneContact},
}

// Prefill fills answers from the profile for questions whose text mentions a
// known hint. Unmatched questions keep their current value.
func Prefill(schema *domain.Schema, profile domain.Profile, answers Answers) Answers {
	out := answers.Clone()
	if schema == nil || len(profile) == 0 {
		return out
	}
	fold := cases.Fold()
	lookup := profile.Lookup()
	for _, q := range schema.Questions {
		text := fold.String(q.Text)
		for _, h := range prefillHints {
			if strings.Contains(text, h.needle) {
				out[q.ID] = lookup.String(h.path)
				break
			}
		}
	}
	return out
}
