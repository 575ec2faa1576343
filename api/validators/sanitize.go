package validators

import (
	"path/filepath"
	"strings"
)

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// SanitizeFileName strips any directory component from an uploaded file
// name. Browsers normally send a bare name but multipart allows paths.
func SanitizeFileName(input string, maxLen int) string {
	name := filepath.Base(strings.ReplaceAll(input, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return SanitizeString(name, maxLen)
}
