package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// MaxUploadBytes caps image uploads. Frames from a wearable camera are
// well under this.
const MaxUploadBytes = 10 << 20 // 10 MiB

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png"}

// ValidateImageContentType checks the upload content type against the
// image allow-list.
func ValidateImageContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range allowedImageTypes {
		if ct == allowed {
			return nil
		}
	}
	return fmt.Errorf("invalid image type %q (allowed: %s)", contentType, strings.Join(allowedImageTypes, ", "))
}

var voicePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

// ValidateVoiceID validates a speech voice identifier
func ValidateVoiceID(voice string) error {
	if voice == "" {
		return nil // optional field
	}
	if !voicePattern.MatchString(voice) {
		return fmt.Errorf("invalid voice identifier format")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
