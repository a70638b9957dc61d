package nlp

import (
	"regexp"
	"strings"
)

// Filler acknowledgements that carry no slot content. A filler turn never
// mutates state; the current prompt is simply re-issued.
var fillers = map[string]struct{}{
	"ok": {}, "okay": {}, "okay thanks": {}, "thanks": {}, "thank you": {},
	"yep": {}, "yeah": {}, "alright": {}, "hmm": {}, "mm": {}, "mmm": {},
	"please continue": {}, "go on": {},
}

var (
	affirmativeRe = regexp.MustCompile(`\b(yes|yeah|yep|yup|correct|that's right|confirm|please do|go ahead|sure)\b`)
	negativeRe    = regexp.MustCompile(`\b(no|nope|nah|incorrect|that's wrong|don't|do not)\b`)
)

// IsAffirmative reports whether the utterance reads as a yes.
func IsAffirmative(text string) bool {
	return affirmativeRe.MatchString(strings.ToLower(strings.TrimSpace(text)))
}

// IsNegative reports whether the utterance reads as a no.
func IsNegative(text string) bool {
	return negativeRe.MatchString(strings.ToLower(strings.TrimSpace(text)))
}

// IsFiller reports whether the whole utterance is a bare acknowledgement.
func IsFiller(text string) bool {
	_, ok := fillers[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
