// Package stringutil provides some string based helpers.
package stringutil

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy() //nolint:gochecknoglobals

// SanitizeUGC strips unsafe markup from user generated content.
func SanitizeUGC(body string) string {
	return ugcPolicy.Sanitize(body)
}

const randomStringChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SecureRandomString generates a random string of slen length using crypto/rand as a source.
func SecureRandomString(slen int) string {
	ret := make([]byte, slen)

	for i := range slen {
		num, errInt := rand.Int(rand.Reader, big.NewInt(int64(len(randomStringChars))))
		if errInt != nil {
			panic(errInt)
		}

		ret[i] = randomStringChars[num.Int64()]
	}

	return string(ret)
}

// Truncate shortens text to at most maxLen characters, appending an ellipsis when cut.
func Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	return strings.TrimSpace(text[:maxLen]) + "..."
}
