// Package uniqueid generates short prefixed identifiers and random codes.
package uniqueid

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	digits = "0123456789"
	alnum  = "0123456789abcdefghijklmnopqrstuvwxyz"

	// URLSafeAlphabet is safe to embed in URL path segments without escaping.
	URLSafeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"
)

// Generate creates a 12 character ID: the one-letter prefix, 2 random digits
// and 9 random alphanumerics, upper-cased. Example for prefix "B": B12ABC345XYZ.
func Generate(prefix string) (string, error) {
	twoDigits, err := gonanoid.Generate(digits, 2)
	if err != nil {
		return "", fmt.Errorf("failed to generate two digits: %w", err)
	}

	nineAlnum, err := gonanoid.Generate(alnum, 9)
	if err != nil {
		return "", fmt.Errorf("failed to generate alphanumeric part: %w", err)
	}

	return strings.ToUpper(prefix + twoDigits + nineAlnum), nil
}

// Code returns a random string of the given length drawn from URLSafeAlphabet.
func Code(length int) (string, error) {
	code, err := gonanoid.Generate(URLSafeAlphabet, length)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return code, nil
}
