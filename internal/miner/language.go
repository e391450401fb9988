package miner

import (
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// LangUndetermined is reported when the input is too short or detection is
// not reliable.
const LangUndetermined = "und"

// minDetectableLength is the input length, in characters, below which
// detection is skipped.
const minDetectableLength = 10

// iso3to2 normalizes the common codes seen in this corpus to two letters.
// Everything else passes through as detected.
var iso3to2 = map[string]string{
	"eng":        "en",
	"ind":        "id",
	"indonesian": "id",
	"spa":        "es",
}

// DetectLanguage runs statistical language identification over text and
// returns a language code. Short or low-confidence input yields "und".
func DetectLanguage(text string) string {
	if utf8.RuneCountInString(text) < minDetectableLength {
		return LangUndetermined
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return LangUndetermined
	}
	code := info.Lang.Iso6393()
	if code == "" {
		return LangUndetermined
	}
	if mapped, ok := iso3to2[code]; ok {
		return mapped
	}
	return code
}
