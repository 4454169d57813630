package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// rtlLanguages lists the display names matched, case-insensitively and by
// containment, against Document.Language.
var rtlLanguages = []string{"arabic", "hebrew", "persian", "farsi", "urdu"}

// IsRTLLanguage reports whether a language display name denotes a
// right-to-left language. "Arabic (Egypt)" and "HEBREW" both match. A name
// written in an RTL script, such as "العربية", matches as well.
func IsRTLLanguage(language string) bool {
	folded := cases.Fold().String(strings.TrimSpace(language))
	if folded == "" {
		return false
	}
	for _, name := range rtlLanguages {
		if strings.Contains(folded, name) {
			return true
		}
	}
	return dominantRTL(folded)
}

func dominantRTL(s string) bool {
	rtl, ltr := 0, 0
	for _, r := range s {
		switch {
		case unicode.In(r, unicode.Arabic, unicode.Hebrew, unicode.Syriac, unicode.Thaana, unicode.Nko):
			rtl++
		case unicode.IsLetter(r):
			ltr++
		}
	}
	return rtl > ltr
}
