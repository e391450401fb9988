package miner

import "testing"

func TestDetectLanguage(t *testing.T) {
	t.Run("english maps to two-letter code", func(t *testing.T) {
		text := "The weather has been surprisingly pleasant this entire week and everyone is outside."
		if got := DetectLanguage(text); got != "en" {
			t.Fatalf("expected en, got %q", got)
		}
	})

	t.Run("indonesian maps to two-letter code", func(t *testing.T) {
		text := "Saya sangat senang belajar bahasa pemrograman bersama teman-teman di sekolah setiap hari."
		if got := DetectLanguage(text); got != "id" {
			t.Fatalf("expected id, got %q", got)
		}
	})

	t.Run("spanish maps to two-letter code", func(t *testing.T) {
		text := "Los niños aprenden mucho más rápido cuando las clases son divertidas y prácticas."
		if got := DetectLanguage(text); got != "es" {
			t.Fatalf("expected es, got %q", got)
		}
	})

	t.Run("short input is undetermined", func(t *testing.T) {
		if got := DetectLanguage("hello"); got != LangUndetermined {
			t.Fatalf("expected und for 5-char input, got %q", got)
		}
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		// 8 characters, 10 bytes.
		if got := DetectLanguage("más años"); got != LangUndetermined {
			t.Fatalf("expected und for 8-char input, got %q", got)
		}
	})

	t.Run("empty input is undetermined", func(t *testing.T) {
		if got := DetectLanguage(""); got != LangUndetermined {
			t.Fatalf("expected und, got %q", got)
		}
	})
}
