package app

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrQuit ends the interactive session
var ErrQuit = errors.New("quit")

// Prompter asks the user for input
type Prompter interface {
	// Select returns the index of the chosen item
	Select(label string, items []string) (int, error)
	// Input reads one line; masked input is not echoed
	Input(label string, masked bool, validate func(string) error) (string, error)
}

// PromptUI is the terminal Prompter
type PromptUI struct{}

func (PromptUI) Select(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "{{ . | green }}",
		},
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return index, nil
}

func (PromptUI) Input(label string, masked bool, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	if masked {
		prompt.Mask = '*'
	}

	value, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return value, nil
}

// promptError maps Ctrl-C and Ctrl-D to ErrQuit
func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrQuit
	}
	return err
}
