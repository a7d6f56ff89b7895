// Package cli holds the terminal prompts and report formatting used by
// formcheck.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/manifoldco/promptui"
)

// Terminal reads from and writes to something that behaves like a TTY.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// Std is the process terminal.
func Std() Terminal {
	return Terminal{Stdin: os.Stdin, Stdout: os.Stdout}
}

// PromptConfirm asks a yes/no question. Declining is not an error.
func (t Terminal) PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// PromptField asks for a new value of a form field, starting from current.
// check, when set, is shown inline as the user types; an invalid value is
// still accepted once entered so the form's own rules can report it.
func (t Terminal) PromptField(label, current string, check func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   current,
		AllowEdit: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}

	if check != nil {
		prompt.Validate = promptui.ValidateFunc(check)
	}

	return prompt.Run()
}
