package utils

import "unicode/utf8"

// IsDecodableText reports whether data can be read as UTF-8 text.
// NUL bytes are valid UTF-8, so files containing them pass.
func IsDecodableText(data []byte) bool {
	return utf8.Valid(data)
}
