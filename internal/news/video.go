package news

import (
	"regexp"
	"time"
)

// youTubeURL matches the share URL shapes users paste into the editor: watch?v=,
// youtu.be/, embed/, v/, u/<x>/ and &v= query params.
var youTubeURL = regexp.MustCompile(`(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*)`)

const videoIDLength = 11

// ExtractVideoID pulls the 11 character video id out of a pasted YouTube URL. Anything
// that does not yield a full id is returned unchanged, so feeding an already extracted
// id back through is a no-op.
func ExtractVideoID(input string) string {
	match := youTubeURL.FindStringSubmatch(input)
	if match != nil && len(match[2]) == videoIDLength {
		return match[2]
	}

	return input
}

// EmbedURL returns the privacy friendly embed URL for an extracted video id.
func EmbedURL(videoID string) string {
	if videoID == "" {
		return ""
	}

	return "https://www.youtube-nocookie.com/embed/" + videoID
}

// monthAbbrevs are the Italian month abbreviations shown on the news date badge.
var monthAbbrevs = [...]string{
	"GEN", "FEB", "MAR", "APR", "MAG", "GIU",
	"LUG", "AGO", "SET", "OTT", "NOV", "DIC",
}

// DateParts is the display date of an article, stored as the three badge strings rather
// than a timestamp so historical entries keep whatever the editor typed.
type DateParts struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

func (d DateParts) IsZero() bool {
	return d.Day == "" && d.Month == "" && d.Year == ""
}

// DatePartsFromTime renders a time into badge strings, eg. 02 / GEN / 2026.
func DatePartsFromTime(t time.Time) DateParts {
	return DateParts{
		Day:   t.Format("02"),
		Month: monthAbbrevs[t.Month()-1],
		Year:  t.Format("2006"),
	}
}
