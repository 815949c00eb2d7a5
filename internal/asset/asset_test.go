package asset_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/database"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func testLimits() asset.Limits {
	return asset.Limits{
		MaxImageSize: 1024,
		MaxVideoSize: 4096,
		MaxRawSize:   1024,
	}
}

func testAssets() asset.Assets {
	return asset.NewAssets(asset.NewMemoryRepository(), testLimits(),
		func(path string) string { return "http://localhost" + path })
}

func TestKindFromMime(t *testing.T) {
	t.Parallel()

	require.Equal(t, asset.KindImage, asset.KindFromMime("image/png"))
	require.Equal(t, asset.KindVideo, asset.KindFromMime("video/mp4"))
	require.Equal(t, asset.KindRaw, asset.KindFromMime("application/pdf"))
	require.Equal(t, asset.KindRaw, asset.KindFromMime("text/plain; charset=utf-8"))
}

func TestNewAsset(t *testing.T) {
	t.Parallel()

	created, errCreate := asset.NewAsset("logo sito.png", testLimits(), bytes.NewReader(pngHeader))
	require.NoError(t, errCreate)
	require.Equal(t, asset.KindImage, created.Kind)
	require.Equal(t, "image/png", created.MimeType)
	require.Equal(t, int64(len(pngHeader)), created.Size)
	require.Len(t, created.Hash, 32)
	require.False(t, created.AssetID.IsNil())

	// Spaces are not allowed in stored names.
	require.Equal(t, "logo_sito.png", created.Name)
}

func TestNewAssetTooLarge(t *testing.T) {
	t.Parallel()

	big := make([]byte, 2048)
	copy(big, pngHeader)

	_, errCreate := asset.NewAsset("big.png", testLimits(), bytes.NewReader(big))
	require.ErrorIs(t, errCreate, asset.ErrAssetTooLarge)
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	assets := testAssets()

	saved, errSave := assets.Create(context.Background(), "foto.png", bytes.NewReader(pngHeader))
	require.NoError(t, errSave)

	require.Contains(t, assets.URL(saved), "/media/"+saved.AssetID.String()+"/foto.png")

	fetched, reader, errGet := assets.Get(context.Background(), saved.AssetID)
	require.NoError(t, errGet)
	require.NoError(t, reader.Close())
	require.Equal(t, saved.AssetID, fetched.AssetID)
}

func TestCreateRequiresName(t *testing.T) {
	t.Parallel()

	_, errSave := testAssets().Create(context.Background(), "", bytes.NewReader(pngHeader))
	require.ErrorIs(t, errSave, asset.ErrAssetName)
}

func TestCreateBatchAtomic(t *testing.T) {
	t.Parallel()

	repo := asset.NewMemoryRepository()
	assets := asset.NewAssets(repo, testLimits(),
		func(path string) string { return "http://localhost" + path })

	big := make([]byte, 2048)
	copy(big, pngHeader)

	// One entry over the limit fails the whole batch.
	_, errBatch := assets.CreateBatch(context.Background(), []asset.Upload{
		{Name: "ok.png", Content: bytes.NewReader(pngHeader)},
		{Name: "big.png", Content: bytes.NewReader(big)},
	})
	require.ErrorIs(t, errBatch, asset.ErrBatchUpload)

	stored, errOK := assets.CreateBatch(context.Background(), []asset.Upload{
		{Name: "ok.png", Content: bytes.NewReader(pngHeader)},
	})
	require.NoError(t, errOK)
	require.Len(t, stored, 1)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	assets := testAssets()

	saved, errSave := assets.Create(context.Background(), "foto.png", bytes.NewReader(pngHeader))
	require.NoError(t, errSave)

	size, errDelete := assets.Delete(context.Background(), saved.AssetID)
	require.NoError(t, errDelete)
	require.Equal(t, saved.Size, size)

	_, _, errGone := assets.Get(context.Background(), saved.AssetID)
	require.ErrorIs(t, errGone, database.ErrNoResult)
}

func TestDeleteByURL(t *testing.T) {
	t.Parallel()

	assets := testAssets()

	saved, errSave := assets.Create(context.Background(), "foto.png", bytes.NewReader(pngHeader))
	require.NoError(t, errSave)

	size, errDelete := assets.DeleteByURL(context.Background(), assets.URL(saved))
	require.NoError(t, errDelete)
	require.Equal(t, saved.Size, size)

	_, _, errGone := assets.Get(context.Background(), saved.AssetID)
	require.ErrorIs(t, errGone, database.ErrNoResult)

	_, errShape := assets.DeleteByURL(context.Background(), "http://localhost/nothing/foto.png")
	require.ErrorIs(t, errShape, asset.ErrPublicIDShape)

	_, errBadID := assets.DeleteByURL(context.Background(), "http://localhost/media/not-a-uuid/foto.png")
	require.ErrorIs(t, errBadID, asset.ErrUUIDInvalid)
}
