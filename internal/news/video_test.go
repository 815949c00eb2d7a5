package news_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andiamooltre/oltreweb/internal/news"
)

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	const videoID = "dQw4w9WgXcQ"

	cases := []string{
		"https://www.youtube.com/watch?v=" + videoID,
		"https://www.youtube.com/watch?v=" + videoID + "&t=42s",
		"https://youtu.be/" + videoID,
		"https://youtu.be/" + videoID + "?si=abc",
		"https://www.youtube.com/embed/" + videoID,
		"https://www.youtube.com/v/" + videoID,
		"https://www.youtube.com/u/w/" + videoID,
		"https://www.youtube.com/watch?feature=share&v=" + videoID,
	}

	for _, input := range cases {
		require.Equal(t, videoID, news.ExtractVideoID(input), input)
	}
}

func TestExtractVideoIDIdempotent(t *testing.T) {
	t.Parallel()

	extracted := news.ExtractVideoID("https://youtu.be/dQw4w9WgXcQ")
	require.Equal(t, extracted, news.ExtractVideoID(extracted))
}

func TestExtractVideoIDPassthrough(t *testing.T) {
	t.Parallel()

	// Anything that does not yield a full id comes back unchanged.
	require.Equal(t, "", news.ExtractVideoID(""))
	require.Equal(t, "not a url", news.ExtractVideoID("not a url"))
	require.Equal(t, "https://youtu.be/short", news.ExtractVideoID("https://youtu.be/short"))
}

func TestEmbedURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", news.EmbedURL(""))
	require.Equal(t, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
		news.EmbedURL("dQw4w9WgXcQ"))
}

func TestDatePartsFromTime(t *testing.T) {
	t.Parallel()

	parts := news.DatePartsFromTime(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.Equal(t, news.DateParts{Day: "02", Month: "GEN", Year: "2026"}, parts)

	parts = news.DatePartsFromTime(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC))
	require.Equal(t, news.DateParts{Day: "31", Month: "DIC", Year: "2025"}, parts)
}

func TestDatePartsIsZero(t *testing.T) {
	t.Parallel()

	require.True(t, news.DateParts{}.IsZero())
	require.False(t, news.DateParts{Day: "01"}.IsZero())
}
