package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// Confirm shows a yes/no confirmation prompt.
func Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	err := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&result).
		Run()
	if err != nil {
		return defaultValue, err
	}
	return result, nil
}

// ConfirmDangerous shows a confirmation prompt for destructive actions
// such as deleting notes.
func ConfirmDangerous(message string) (bool, error) {
	var result bool
	err := huh.NewConfirm().
		Title(message).
		Description("This action cannot be undone.").
		Affirmative("Yes, I'm sure").
		Negative("Cancel").
		Value(&result).
		Run()
	if err != nil {
		return false, err
	}
	return result, nil
}

// Input shows a text input prompt.
func Input(title, placeholder string) (string, error) {
	var result string
	err := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&result).
		Run()
	return result, err
}

// SelectOption represents an option in a select prompt.
type SelectOption struct {
	Value string
	Label string
}

// Select shows a single-select prompt.
func Select(title string, options []SelectOption) (string, error) {
	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	var result string
	err := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions...).
		Value(&result).
		Run()
	return result, err
}

// NoteDraft is the result of the note composer.
type NoteDraft struct {
	To      []string
	Subject string
	Body    string
}

// ComposeNote shows a form for writing a note. Recipients are entered
// comma-separated. Fields already filled (for example the recipient of
// a reply) are pre-populated.
func ComposeNote(draft NoteDraft) (NoteDraft, error) {
	to := strings.Join(draft.To, ", ")
	subject := draft.Subject
	body := draft.Body

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Placeholder("username, username...").
				Value(&to).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("at least one recipient is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Subject").
				Value(&subject),
			huh.NewText().
				Title("Body").
				Value(&body).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("the note body cannot be empty")
					}
					return nil
				}),
		).Title("New note"),
	)

	if err := form.Run(); err != nil {
		return NoteDraft{}, err
	}

	var recipients []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return NoteDraft{To: recipients, Subject: subject, Body: body}, nil
}

// ComposeComment shows a multiline prompt for a comment body.
func ComposeComment(title string) (string, error) {
	var body string
	err := huh.NewText().
		Title(title).
		Placeholder("Write your comment...").
		Value(&body).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("the comment cannot be empty")
			}
			return nil
		}).
		Run()
	return body, err
}
