package wallet

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const minPasswordLength = 8

// PromptSecret prompts for a secret on the terminal (hides input).
//
//nolint:forbidigo // Secret input requires direct terminal I/O
func PromptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)

	secret, err := term.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "failed to read from terminal")
	}

	fmt.Fprintln(os.Stderr) // New line after hidden input

	return string(secret), nil
}

// PromptNewPassword asks for a keystore password twice and checks both entries match.
func PromptNewPassword() (string, error) {
	password, err := PromptSecret(fmt.Sprintf("Enter password for keystore (min %d characters): ", minPasswordLength))
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}

	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	passwordConfirm, err := PromptSecret("Confirm password: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read password confirmation")
	}

	if password != passwordConfirm {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}

// ValidatePassword enforces the minimum keystore password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	return nil
}
