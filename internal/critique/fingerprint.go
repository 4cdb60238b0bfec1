package critique

import (
	"strconv"
	"unicode/utf16"
)

// Fingerprint returns a short base-36 digest of text used to detect edits between
// critique runs. It is not collision resistant and must not be used for security.
//
// The hash walks UTF-16 code units so fingerprints match the ones computed by the
// browser editor for the same chapter.
func Fingerprint(text string) string {
	var hash int32
	for _, code := range utf16.Encode([]rune(text)) {
		hash = (hash << 5) - hash + int32(code)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36)
}

// HasChanged reports whether currentText differs from the text the stored fingerprint
// was computed from. A missing fingerprint always counts as changed; empty text never does.
func HasChanged(currentText, storedFingerprint string) bool {
	if storedFingerprint == "" {
		return true
	}
	if currentText == "" {
		return false
	}
	return Fingerprint(currentText) != storedFingerprint
}
