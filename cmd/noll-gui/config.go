package main

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/noll-to/noll/internal/config"
	"github.com/noll-to/noll/internal/language"
)

const (
	appID = "to.noll.app"

	prefTargetLanguage = "TargetLanguage"
	prefAPIURL         = "APIURL"
)

// overridesFromPrefs maps stored preferences onto config overrides. An
// unknown stored language is ignored so the environment or default applies.
func overridesFromPrefs(prefs fyne.Preferences) config.Overrides {
	o := config.Overrides{
		APIURL: strings.TrimSpace(prefs.String(prefAPIURL)),
	}
	if lang, ok := language.Resolve(prefs.String(prefTargetLanguage)); ok {
		o.TargetLanguage = lang.Code
	}
	return o
}

// languageOptions lists display names in the order shown by the selector.
func languageOptions() []string {
	langs := language.Supported()
	names := make([]string, 0, len(langs))
	for _, l := range langs {
		names = append(names, l.Name)
	}
	return names
}

func languageName(code string) string {
	if l, ok := language.GetLanguage(code); ok {
		return l.Name
	}
	return code
}
