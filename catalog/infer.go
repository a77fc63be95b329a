// ABOUTME: Best-effort field kind inference from a raw value
// ABOUTME: A wrong guess only picks a less suitable widget, never an invalid state
package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/harperreed/fichas/config"
	"github.com/harperreed/fichas/models"
)

// Infer guesses a field kind using the default textarea threshold.
func Infer(v any) models.FieldKind {
	return inferWithThreshold(v, config.DefaultTextareaLength)
}

func inferWithThreshold(v any, textareaThreshold int) models.FieldKind {
	val := models.ValueOf(v)
	switch val.Kind {
	case models.KindString:
		return inferString(val.Raw().(string), textareaThreshold)
	case models.KindNumber:
		return models.FieldNumber
	case models.KindBool:
		return models.FieldCheckbox
	case models.KindDate, models.KindLazyTime:
		return models.FieldDate
	default:
		return models.FieldText
	}
}

func inferString(s string, textareaThreshold int) models.FieldKind {
	switch {
	case strings.Contains(s, "@"):
		return models.FieldEmail
	case hasHTTPScheme(s):
		return models.FieldURL
	case utf8.RuneCountInString(s) > textareaThreshold:
		return models.FieldTextarea
	default:
		return models.FieldText
	}
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
