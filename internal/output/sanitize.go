package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxNameRunes = 50
	fallbackName = "untitled"
)

// SanitizeFilename turns an article title or keyword into a portable folder name.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, " .")

	if runes := []rune(name); len(runes) > MaxNameRunes {
		name = strings.Trim(string(runes[:MaxNameRunes]), " .")
	}
	if name == "" {
		return fallbackName
	}
	return name
}

// uniqueDir returns parent/name, or parent/name_N for the first N that does not exist yet.
func uniqueDir(parent, name string) string {
	candidate := filepath.Join(parent, name)
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(parent, fmt.Sprintf("%s_%d", name, i))
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
