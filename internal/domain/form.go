package domain

// QuestionType selects how a question is rendered. Unknown values render as text.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
)

type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options"`
}

// Schema is an interview form as served by the training API for one
// leadership level. It is treated as immutable once fetched.
type Schema struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	TargetLevel string     `json:"target_level"`
	NextLevel   string     `json:"next_level"`
	Questions   []Question `json:"questions"`
}

// SideChannel carries the submission fields that are not question answers.
type SideChannel struct {
	ProfilePicture string
	Signature      string
}
