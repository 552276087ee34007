package widget

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ValidationError describes one malformed field in a settings update. It is
// informational: Sanitize always recovers with a fallback value.
type ValidationError struct {
	Field    string
	Value    string
	Fallback string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q, using %s: %v", e.Field, e.Value, e.Fallback, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var errBelowMinimum = errors.New("below minimum")

// ApplySettings merges a raw form submission into previous and returns a
// valid Settings. It never fails:
//   - title: tags stripped and trimmed; missing keeps previous
//   - columns: parsed as an integer; unparsable or missing keeps previous;
//     the result is clamped to MinColumns
//   - showcount: true only when present and equal to CheckboxOn
//
// Unknown keys are ignored.
func ApplySettings(raw map[string]string, previous Settings) Settings {
	s, _ := Sanitize(raw, previous)
	return s
}

// Sanitize is ApplySettings that also reports what was corrected, joined
// into one error of *ValidationError values. The returned Settings are
// valid even when the error is non-nil.
func Sanitize(raw map[string]string, previous Settings) (Settings, error) {
	next := previous
	var problems []error

	if v, ok := raw[FieldTitle]; ok {
		next.Title = strings.TrimSpace(StripTags(v))
	}

	if v, ok := raw[FieldColumns]; ok {
		cleaned := strings.TrimSpace(StripTags(v))
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			problems = append(problems, &ValidationError{
				Field: FieldColumns, Value: v, Fallback: strconv.Itoa(previous.Columns), Err: err,
			})
		} else {
			next.Columns = n
		}
	}
	if next.Columns < MinColumns {
		problems = append(problems, &ValidationError{
			Field: FieldColumns, Value: strconv.Itoa(next.Columns), Fallback: strconv.Itoa(MinColumns), Err: errBelowMinimum,
		})
		next.Columns = MinColumns
	}

	next.ShowCount = strings.TrimSpace(StripTags(raw[FieldShowCount])) == CheckboxOn

	return next, errors.Join(problems...)
}

// StripTags removes markup from s and returns its text content. Comments
// and the bodies of script and style elements are dropped. Text is kept as
// written: entity references such as &amp; are not decoded.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Raw())
			}
		case html.StartTagToken:
			if isRawTextTag(z) {
				skipDepth++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skipDepth > 0 {
				skipDepth--
			}
		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	default:
		return false
	}
}
