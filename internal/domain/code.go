package domain

import (
	"strings"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength   = 8
)

// NewCodeGenerator returns a generator of 8-character upper-case alphanumeric
// codes, used for both template and redemption codes.
func NewCodeGenerator() (func() (string, error), error) {
	gen, err := nanoid.CustomASCII(CodeAlphabet, CodeLength)
	if err != nil {
		return nil, err
	}
	return func() (string, error) { return gen(), nil }, nil
}

// NormalizeRedemptionCode accepts what a merchant scans or types: surrounding
// whitespace, lower case and the display hyphen are all tolerated.
func NormalizeRedemptionCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	return strings.ReplaceAll(code, "-", "")
}

func FormatRedemptionCode(code string) string {
	if len(code) <= 4 {
		return code
	}
	return code[:4] + "-" + code[4:]
}
