package playground

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	impl "github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower) //nolint:gochecknoglobals

// DisplayName turns a Go field name into words for messages:
// "FirstName" becomes "First Name", "HTTPPort" becomes "HTTP Port" and
// "postal_code" becomes "Postal Code".
func DisplayName(field string) string {
	field = strings.ReplaceAll(field, "_", " ")

	runes := []rune(field)

	var b strings.Builder

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && runes[i-1] != ' ' {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteRune(' ')
			}
		}

		b.WriteRune(r)
	}

	// Title only uppercases first letters here; NoLower keeps acronyms intact.
	return titleCaser.String(b.String())
}

func isText(fe impl.FieldError) bool {
	switch fe.Kind() { //nolint:exhaustive
	case reflect.String:
		return true
	default:
		return false
	}
}

func isCollection(fe impl.FieldError) bool {
	switch fe.Kind() { //nolint:exhaustive
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

func defaultMessage(fe impl.FieldError, display string) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return fmt.Sprintf("'%s' must not be empty.", display)
	case "email":
		return fmt.Sprintf("'%s' is not a valid email address.", display)
	case "url", "http_url":
		return fmt.Sprintf("'%s' is not a valid URL.", display)
	case "uuid", "uuid4":
		return fmt.Sprintf("'%s' is not a valid UUID.", display)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of: %s.", display, strings.Join(strings.Fields(param), ", "))
	case "eqfield":
		return fmt.Sprintf("'%s' must match '%s'.", display, DisplayName(param))
	case "nefield":
		return fmt.Sprintf("'%s' must differ from '%s'.", display, DisplayName(param))
	case "len":
		return lengthMessage(fe, display, "exactly", param)
	case "min":
		return lengthMessage(fe, display, "at least", param)
	case "max":
		return lengthMessage(fe, display, "at most", param)
	case "gte":
		return boundMessage(fe, display, "greater than or equal to", param)
	case "gt":
		return boundMessage(fe, display, "greater than", param)
	case "lte":
		return boundMessage(fe, display, "less than or equal to", param)
	case "lt":
		return boundMessage(fe, display, "less than", param)
	default:
		if param != "" {
			return fmt.Sprintf("'%s' failed the '%s=%s' check.", display, fe.Tag(), param)
		}

		return fmt.Sprintf("'%s' failed the '%s' check.", display, fe.Tag())
	}
}

func lengthMessage(fe impl.FieldError, display, qualifier, param string) string {
	switch {
	case isText(fe):
		return fmt.Sprintf("'%s' must be %s %s characters long.", display, qualifier, param)
	case isCollection(fe):
		return fmt.Sprintf("'%s' must contain %s %s items.", display, qualifier, param)
	default:
		return fmt.Sprintf("'%s' must be %s %s.", display, qualifier, param)
	}
}

func boundMessage(fe impl.FieldError, display, relation, param string) string {
	if isText(fe) || isCollection(fe) {
		return fmt.Sprintf("The length of '%s' must be %s %s.", display, relation, param)
	}

	return fmt.Sprintf("'%s' must be %s %s.", display, relation, param)
}
