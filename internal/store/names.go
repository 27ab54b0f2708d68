package store

import (
	"fmt"
	"strings"

	apperrors "github.com/alexjbarnes/coaclient/internal/errors"
	"golang.org/x/text/unicode/norm"
)

// normalizeName returns the NFC form of a client name. Names typed on
// different platforms can arrive decomposed; normalizing keeps lookups and
// token file names stable.
func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// validateName rejects names that cannot be stored. The name becomes part
// of a file path and the first column of the config file.
func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", apperrors.ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00\r\n"):
		return fmt.Errorf("%w: %q contains a path separator or control character", apperrors.ErrInvalidName, name)
	case name == configHeader[0]:
		return fmt.Errorf("%w: %q is reserved", apperrors.ErrInvalidName, name)
	}

	return nil
}

func cleanName(name string) (string, error) {
	name = normalizeName(name)
	if err := validateName(name); err != nil {
		return "", err
	}

	return name, nil
}
