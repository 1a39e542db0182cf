// Package lang maps the language codes the transcription and
// translation services accept to display names.
package lang

import "sort"

var names = map[string]string{
	"ar":    "Arabic",
	"de":    "German",
	"en":    "English",
	"en-US": "English (US)",
	"en-GB": "English (UK)",
	"es":    "Spanish",
	"fr":    "French",
	"hi":    "Hindi",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"nl":    "Dutch",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"pt-BR": "Portuguese (Brazil)",
	"ru":    "Russian",
	"sv":    "Swedish",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"zh":    "Chinese",
}

// Name returns the display name for a code, or the code itself when it
// is not in the table so unknown codes still render.
func Name(code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

// Supported reports whether a code is in the table.
func Supported(code string) bool {
	_, ok := names[code]
	return ok
}

// Codes returns all known codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
