// Package personalizer renders a batch email body template against the
// per-recipient substitution data carried on the request. Rendering is a pure
// function: no I/O, deterministic for identical inputs.
package personalizer

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {field} placeholders. Nested or escaped braces
// are not interpreted; anything between a brace pair is taken as a field name.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// MissingRecipientDataError indicates the personalization data carries no
// entry at all for the recipient being rendered.
type MissingRecipientDataError struct {
	Recipient string
}

func (e *MissingRecipientDataError) Error() string {
	return fmt.Sprintf("personalizer: no personalization data for recipient %s", e.Recipient)
}

// MissingFieldError indicates the template references a field that is absent
// from the recipient's personalization entry.
type MissingFieldError struct {
	Recipient string
	Field     string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("personalizer: field %q missing for recipient %s", e.Field, e.Recipient)
}

// Render substitutes every {field} placeholder in template with the value
// from personalizationData[recipient]. All placeholders are resolved before
// any substitution happens so the error names the exact missing key instead
// of surfacing a generic formatting failure.
func Render(recipient, template string, personalizationData map[string]map[string]string) (string, error) {
	fields, ok := personalizationData[recipient]
	if !ok {
		return "", &MissingRecipientDataError{Recipient: recipient}
	}

	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	for _, m := range matches {
		if _, ok := fields[m[1]]; !ok {
			return "", &MissingFieldError{Recipient: recipient, Field: m[1]}
		}
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{"), "}")
		return fields[name]
	})

	return rendered, nil
}
