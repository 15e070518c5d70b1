package prompt

import (
	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter with charmbracelet/huh forms.
type HuhPrompter struct{}

// NewHuhPrompter creates a new huh-based prompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

func (p *HuhPrompter) Select(title string, options []string) (string, error) {
	var result string
	err := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&result).
		Run()
	return result, err
}

func (p *HuhPrompter) Input(title, defaultValue string, validate func(string) error) (string, error) {
	result := defaultValue
	input := huh.NewInput().
		Title(title).
		Value(&result)
	if validate != nil {
		input = input.Validate(validate)
	}
	err := input.Run()
	return result, err
}

// Confirm defaults to defaultValue; the delete gate passes false so a stray
// Enter cancels.
func (p *HuhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	result := defaultValue
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&result).
		Run()
	return result, err
}
