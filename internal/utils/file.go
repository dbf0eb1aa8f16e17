package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var sampleRe = regexp.MustCompile(`(?i)(^|[\\/]|\s|[._-])(sample|trailer|thumb|special|extras?)s?(\s|[._-]|$|/)`)

func IsSampleFile(path string) bool {
	return sampleRe.MatchString(path)
}

// RemoveInvalidChars strips characters that are not allowed in file names.
func RemoveInvalidChars(value string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return -1
		}
		return r
	}, value)
}

// SafeFileName keeps the base name of a remote path and removes invalid characters.
func SafeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = RemoveInvalidChars(base)
	if base == "" || base == "." {
		return "download"
	}
	return base
}
