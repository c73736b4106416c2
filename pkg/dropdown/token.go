package dropdown

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OptionDelimiter joins the parts of a multi-part option token.
// Parts may not contain it, so DecodeOption can split tokens back apart.
const OptionDelimiter = "_"

// EncodeOption builds a single option token out of one or more raw parts.
//
// Each part is stringified and trimmed; it must be non-empty and consist of
// letters, digits or CJK ideographs only. The joined token must not start with
// a digit because spreadsheet applications may reinterpret such labels.
func EncodeOption(parts ...interface{}) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no parts given", ErrInvalidOptionValue)
	}

	cleaned := make([]string, len(parts))
	for i, part := range parts {
		s := strings.TrimSpace(fmt.Sprint(part))
		if err := checkOptionPart(s); err != nil {
			return "", err
		}
		cleaned[i] = s
	}

	token := strings.Join(cleaned, OptionDelimiter)
	if r, _ := utf8.DecodeRuneInString(token); unicode.IsDigit(r) {
		return "", fmt.Errorf("%w: %q starts with a digit", ErrInvalidOptionValue, token)
	}
	return token, nil
}

// MustEncodeOption is like EncodeOption but panics on error.
// Use it for vocabularies that are fixed at compile time.
func MustEncodeOption(parts ...interface{}) string {
	token, err := EncodeOption(parts...)
	if err != nil {
		panic(err)
	}
	return token
}

// DecodeOption splits a token back into its parts. Empty pieces are dropped.
// It accepts arbitrary cell content and never fails.
func DecodeOption(token string) []string {
	pieces := strings.Split(token, OptionDelimiter)
	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func checkOptionPart(part string) error {
	if part == "" {
		return fmt.Errorf("%w: empty part", ErrInvalidOptionValue)
	}
	for _, r := range part {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Han, r) {
			continue
		}
		return fmt.Errorf("%w: %q contains %q", ErrInvalidOptionValue, part, r)
	}
	return nil
}
