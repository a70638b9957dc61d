package nlp

import (
	"regexp"
	"strings"
)

var (
	emailRe  = regexp.MustCompile(`\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}(?:\.[a-z]{2,})?\b`)
	domainRe = regexp.MustCompile(`[a-z0-9\-]+(?:\.[a-z0-9\-]+)+`) // e.g. highwaysindustry.com, example.co.uk

	emailLeadInRe  = regexp.MustCompile(`\b(my\s+email\s+is|email\s+is|email\s*address\s*is|the\s+email\s+is|it\s+is|it's)\b[:,.\s]*`)
	underscoreRe   = regexp.MustCompile(`\bunderscore\b`)
	hyphenRe       = regexp.MustCompile(`\b(hyphen|dash)\b`)
	dotWordRe      = regexp.MustCompile(`\b(period|dot)\b`)
	atWordRe       = regexp.MustCompile(`\bat\b`)
	aroundAtRe     = regexp.MustCompile(`\s*@\s*`)
	aroundDotRe    = regexp.MustCompile(`\s*\.\s*`)
	spacedDomainRe = regexp.MustCompile(`^[a-z0-9\-]+(?: [a-z0-9\-]+)*\.[a-z]{2,}(?:\.[a-z]{2,})?`)
	localBeforeAt  = regexp.MustCompile(`([a-z0-9._%+\-]{1,64})\s*at\s*$`)
)

// normalizeSpokenEmail converts spoken markers ("at", "dot", "underscore")
// to symbols and tidies spacing around @ and dots.
func normalizeSpokenEmail(text string) string {
	t := strings.ToLower(text)

	t = emailLeadInRe.ReplaceAllString(t, " ")
	t = underscoreRe.ReplaceAllString(t, "_")
	t = hyphenRe.ReplaceAllString(t, "-")
	t = dotWordRe.ReplaceAllString(t, ".")
	t = atWordRe.ReplaceAllString(t, "@")
	t = aroundAtRe.ReplaceAllString(t, "@")
	t = aroundDotRe.ReplaceAllString(t, ".")

	// A transcribed domain often arrives as separate words:
	// "ali@highways industry.com". Close the gaps after the final @.
	if i := strings.LastIndex(t, "@"); i >= 0 {
		tail := t[i+1:]
		if span := spacedDomainRe.FindString(tail); span != "" {
			joined := strings.ReplaceAll(span, " ", "")
			t = t[:i+1] + joined + tail[len(span):]
		}
	}

	return strings.TrimSpace(t)
}

// ExtractEmail pulls an email address out of an utterance, handling
// spoken forms like "ali at highways industry dot com". Returns "" when
// nothing address-like is present.
func ExtractEmail(text string) string {
	t := normalizeSpokenEmail(text)

	// Standard match; the last occurrence wins when several appear.
	if candidates := emailRe.FindAllString(t, -1); len(candidates) > 0 {
		return candidates[len(candidates)-1]
	}

	// Recover "<local> at <domain>" when no @ survived normalization.
	if !strings.Contains(t, "@") {
		if loc := domainRe.FindStringIndex(t); loc != nil {
			left := t[:loc[0]]
			if m := localBeforeAt.FindStringSubmatch(left); m != nil {
				return m[1] + "@" + t[loc[0]:loc[1]]
			}
		}
	}

	return ""
}
