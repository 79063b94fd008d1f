package bootstrap

import "strings"

// CodeLength is the number of digits in a sign-in code.
const CodeLength = 6

// CodeInput models the six single-digit boxes of the verification page.
type CodeInput struct {
	Digits [CodeLength]string
	Focus  int
}

// Paste fills every box from the first six digits in text and focuses the
// last box. Text with fewer than six digits is ignored.
func (c *CodeInput) Paste(text string) {
	var digits []string
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits = append(digits, string(r))
			if len(digits) == CodeLength {
				break
			}
		}
	}
	if len(digits) < CodeLength {
		return
	}
	copy(c.Digits[:], digits)
	c.Focus = CodeLength - 1
}

// Edit sets box i to v when v is empty or a single digit and moves focus to
// the next box after a digit.
func (c *CodeInput) Edit(i int, v string) {
	if i < 0 || i >= CodeLength || len(v) > 1 {
		return
	}
	if v != "" && (v[0] < '0' || v[0] > '9') {
		return
	}
	c.Digits[i] = v
	if v != "" && i < CodeLength-1 {
		c.Focus = i + 1
	}
}

// Backspace on an empty box moves focus to the previous one.
func (c *CodeInput) Backspace(i int) {
	if i > 0 && i < CodeLength && c.Digits[i] == "" {
		c.Focus = i - 1
	}
}

// Code joins the boxes.
func (c *CodeInput) Code() string { return strings.Join(c.Digits[:], "") }

// Complete reports whether every box holds a digit.
func (c *CodeInput) Complete() bool { return len(c.Code()) == CodeLength }

// ValidCode reports whether code is exactly six ASCII digits.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
