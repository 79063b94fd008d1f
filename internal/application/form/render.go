package form

import "github.com/wordsanctuary/training-portal/internal/domain"

// Widget is the input control used for a question.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetTextarea Widget = "textarea"
	WidgetSelect   Widget = "select"
)

const (
	textareaRows     = 4
	selectPlaceholder = "Select an option"
)

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is the render model of one question.
type Field struct {
	ID       string
	Label    string
	Widget   Widget
	Value    string
	Rows     int
	Options  []Option
	Error    string
	Required bool
}

// Fields builds the render model for schema in question order.
func Fields(schema *domain.Schema, answers Answers, errs Errors) []Field {
	if schema == nil {
		return nil
	}
	out := make([]Field, 0, len(schema.Questions))
	for _, q := range schema.Questions {
		f := Field{
			ID:       q.ID,
			Label:    q.Text,
			Value:    answers[q.ID],
			Error:    errs[q.ID],
			Required: !Suppressed(answers, q.ID),
		}
		switch q.Type {
		case domain.QuestionTextarea:
			f.Widget = WidgetTextarea
			f.Rows = textareaRows
		case domain.QuestionSelect:
			f.Widget = WidgetSelect
			f.Options = make([]Option, 0, len(q.Options)+1)
			f.Options = append(f.Options, Option{Value: "", Label: selectPlaceholder, Selected: f.Value == ""})
			for _, o := range q.Options {
				f.Options = append(f.Options, Option{Value: o, Label: o, Selected: o == f.Value})
			}
		default:
			f.Widget = WidgetText
		}
		out = append(out, f)
	}
	return out
}

// Theme is the colour scheme the form page uses for a level.
type Theme string

const (
	ThemePurple Theme = "purple"
	ThemeGray   Theme = "gray"
)

func ThemeFor(level string) Theme {
	switch level {
	case domain.LevelExecutiveAssistant, domain.LevelHOD:
		return ThemeGray
	default:
		return ThemePurple
	}
}
