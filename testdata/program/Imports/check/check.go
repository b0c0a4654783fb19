package check

import (
	"errors"
	"strings"
)

var ErrUpper = errors.New("has upper case letters")

func Lower(s string) (string, error) {
	if strings.ToLower(s) != s {
		return "", ErrUpper
	}
	return s, nil
}
