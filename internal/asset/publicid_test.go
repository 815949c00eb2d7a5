package asset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andiamooltre/oltreweb/internal/asset"
)

func TestPublicIDFromURL(t *testing.T) {
	t.Parallel()

	publicID, err := asset.PublicIDFromURL(
		"https://res.example.com/demo/image/upload/v1712345678/folder/photo.jpg", asset.KindImage)
	require.NoError(t, err)
	require.Equal(t, "folder/photo", publicID)

	publicID, err = asset.PublicIDFromURL(
		"https://res.example.com/demo/video/upload/v1/clip.mp4", asset.KindVideo)
	require.NoError(t, err)
	require.Equal(t, "clip", publicID)

	// Raw assets keep their extension.
	publicID, err = asset.PublicIDFromURL(
		"https://res.example.com/demo/raw/upload/v99/docs/statuto.pdf", asset.KindRaw)
	require.NoError(t, err)
	require.Equal(t, "docs/statuto.pdf", publicID)
}

func TestPublicIDFromURLNoVersion(t *testing.T) {
	t.Parallel()

	publicID, err := asset.PublicIDFromURL(
		"https://res.example.com/demo/image/upload/folder/photo.jpg", asset.KindImage)
	require.NoError(t, err)
	require.Equal(t, "folder/photo", publicID)
}

func TestPublicIDFromURLLocalMedia(t *testing.T) {
	t.Parallel()

	publicID, err := asset.PublicIDFromURL(
		"http://localhost:6006/media/0a1b2c3d/photo.png", asset.KindImage)
	require.NoError(t, err)
	require.Equal(t, "0a1b2c3d/photo", publicID)
}

func TestPublicIDFromURLBadShape(t *testing.T) {
	t.Parallel()

	_, err := asset.PublicIDFromURL("https://example.com/nothing/here.jpg", asset.KindImage)
	require.ErrorIs(t, err, asset.ErrPublicIDShape)

	_, err = asset.PublicIDFromURL("https://example.com/image/upload", asset.KindImage)
	require.ErrorIs(t, err, asset.ErrPublicIDShape)

	_, err = asset.PublicIDFromURL("https://example.com/image/upload/v123", asset.KindImage)
	require.ErrorIs(t, err, asset.ErrPublicIDShape)
}
