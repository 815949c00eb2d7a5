package asset

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrPublicIDParse = errors.New("failed to parse delivery url")
	ErrPublicIDShape = errors.New("delivery url does not contain an upload segment")
	versionSegmentRx = regexp.MustCompile(`^v\d+$`)
)

// PublicIDFromURL derives the stable storage identifier from a delivery URL. The
// version segment is always dropped; images and videos also drop the file extension
// while raw assets keep it, matching how the delete API addresses each asset class.
// The transform is pure and idempotent over its own output when re-wrapped in a URL.
func PublicIDFromURL(rawURL string, kind Kind) (string, error) {
	parsed, errParse := url.Parse(rawURL)
	if errParse != nil {
		return "", errors.Join(errParse, ErrPublicIDParse)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")

	uploadIdx := -1

	for index, segment := range segments {
		if segment == "upload" || segment == "media" {
			uploadIdx = index

			break
		}
	}

	if uploadIdx < 0 || uploadIdx == len(segments)-1 {
		return "", ErrPublicIDShape
	}

	rest := segments[uploadIdx+1:]

	if versionSegmentRx.MatchString(rest[0]) {
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return "", ErrPublicIDShape
	}

	publicID := strings.Join(rest, "/")

	if kind != KindRaw {
		if dot := strings.LastIndexByte(publicID, '.'); dot > strings.LastIndexByte(publicID, '/') {
			publicID = publicID[:dot]
		}
	}

	return publicID, nil
}
