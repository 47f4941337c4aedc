package language

import (
	"sort"
	"strings"
)

// Language is a target language accepted by the Noll service.
type Language struct {
	Code string
	Name string
}

// Default is used when no target language is configured.
const Default = "en"

// Languages is a map of supported languages code -> Language.
var Languages = map[string]Language{
	"en":      {Code: "en", Name: "English"},
	"de":      {Code: "de", Name: "German"},
	"fr":      {Code: "fr", Name: "French"},
	"es":      {Code: "es", Name: "Spanish"},
	"it":      {Code: "it", Name: "Italian"},
	"pt":      {Code: "pt", Name: "Portuguese"},
	"nl":      {Code: "nl", Name: "Dutch"},
	"pl":      {Code: "pl", Name: "Polish"},
	"ru":      {Code: "ru", Name: "Russian"},
	"zh-Hans": {Code: "zh-Hans", Name: "Chinese (Simplified)"},
	"ja":      {Code: "ja", Name: "Japanese"},
	"ko":      {Code: "ko", Name: "Korean"},
}

// GetLanguage returns the language for an exact code.
func GetLanguage(code string) (Language, bool) {
	lang, ok := Languages[code]
	return lang, ok
}

// Resolve accepts a code (case-insensitive) or an English display name.
func Resolve(input string) (Language, bool) {
	needle := strings.TrimSpace(input)
	if needle == "" {
		return Language{}, false
	}
	if lang, ok := Languages[needle]; ok {
		return lang, true
	}
	for _, lang := range Languages {
		if strings.EqualFold(lang.Code, needle) || strings.EqualFold(lang.Name, needle) {
			return lang, true
		}
	}
	return Language{}, false
}

// Supported returns all languages sorted by Name.
func Supported() []Language {
	entries := make([]Language, 0, len(Languages))
	for _, v := range Languages {
		entries = append(entries, v)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Codes returns the supported codes in display order.
func Codes() []string {
	langs := Supported()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}
