package editor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/editor"
)

type card struct {
	Title string
	Body  string
}

func testAssets() asset.Assets {
	return asset.NewAssets(asset.NewMemoryRepository(), asset.Limits{
		MaxImageSize: 1024 * 1024,
		MaxVideoSize: 1024 * 1024,
		MaxRawSize:   1024 * 1024,
	}, func(path string) string { return "http://localhost" + path })
}

// pngHeader is enough for mime detection to classify content as an image.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestReorder(t *testing.T) {
	t.Parallel()

	items := []editor.MediaItem{{Src: "a"}, {Src: "b"}, {Src: "c"}, {Src: "d"}}

	moved := editor.Reorder(items, 0, 2)
	require.Equal(t, []string{"b", "c", "a", "d"}, srcs(moved))

	moved = editor.Reorder(items, 3, 0)
	require.Equal(t, []string{"d", "a", "b", "c"}, srcs(moved))

	// Out of range is a no-op.
	require.Equal(t, items, editor.Reorder(items, -1, 2))
	require.Equal(t, items, editor.Reorder(items, 0, 4))

	// The input is never mutated.
	require.Equal(t, []string{"a", "b", "c", "d"}, srcs(items))
}

func srcs(items []editor.MediaItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Src)
	}

	return out
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{Title: "before"}, nil)

	require.Equal(t, editor.StateEditing, session.State())

	found, errGet := manager.Get(session.ID())
	require.NoError(t, errGet)
	require.Same(t, session, found)

	require.NoError(t, session.Update(func(working *card) {
		working.Title = "after"
	}))

	// Edits only touch the working copy.
	require.Equal(t, "after", session.Working().Title)
	require.Equal(t, "before", session.Original().Title)

	manager.End(session.ID())

	_, errGone := manager.Get(session.ID())
	require.ErrorIs(t, errGone, editor.ErrSessionNotFound)
}

func TestAddMediaLimit(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{}, nil)

	require.NoError(t, session.AddMedia(editor.MediaItem{Src: "one"}, 2))
	require.NoError(t, session.AddMedia(editor.MediaItem{Src: "two"}, 2))
	require.ErrorIs(t, session.AddMedia(editor.MediaItem{Src: "three"}, 2), editor.ErrMediaLimit)

	// Zero means uncapped.
	require.NoError(t, session.AddMedia(editor.MediaItem{Src: "three"}, 0))
	require.Len(t, session.Media(), 3)
}

func TestRemoveMedia(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{}, []editor.MediaItem{{Src: "a"}, {Src: "b"}})

	require.ErrorIs(t, session.RemoveMedia(2), editor.ErrMediaIndex)
	require.NoError(t, session.RemoveMedia(0))
	require.Equal(t, []string{"b"}, srcs(session.Media()))
}

func TestDragDrop(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{}, []editor.MediaItem{{Src: "a"}, {Src: "b"}, {Src: "c"}})

	// Drop without a source is rejected.
	require.ErrorIs(t, session.Drop(1), editor.ErrNoDragSource)

	require.NoError(t, session.BeginDrag(0))
	require.NoError(t, session.Drop(2))
	require.Equal(t, []string{"b", "c", "a"}, srcs(session.Media()))

	// The drag source does not survive the gesture.
	require.ErrorIs(t, session.Drop(0), editor.ErrNoDragSource)
}

func TestSaveUploadsPending(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{Title: "t"}, []editor.MediaItem{{Src: "http://localhost/existing"}})

	require.NoError(t, session.AddMedia(editor.MediaItem{
		Alt:     "staged",
		Pending: &editor.Pending{Name: "new.png", Data: pngHeader},
	}, 0))

	var (
		persisted      card
		persistedMedia []editor.MediaItem
	)

	errSave := session.Save(context.Background(), testAssets(),
		func(_ context.Context, entity card, media []editor.MediaItem) error {
			persisted = entity
			persistedMedia = media

			return nil
		})
	require.NoError(t, errSave)

	require.Equal(t, "t", persisted.Title)
	require.Len(t, persistedMedia, 2)
	require.Equal(t, "http://localhost/existing", persistedMedia[0].Src)
	require.Contains(t, persistedMedia[1].Src, "/media/")
	require.False(t, persistedMedia[1].IsPending())
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{}, nil)

	require.NoError(t, session.Update(func(working *card) {
		working.Title = "kept"
	}))
	require.NoError(t, session.AddMedia(editor.MediaItem{
		Pending: &editor.Pending{Name: "img.png", Data: pngHeader},
	}, 0))

	errPersist := errors.New("persist failed")

	errSave := session.Save(context.Background(), testAssets(),
		func(_ context.Context, _ card, _ []editor.MediaItem) error {
			return errPersist
		})
	require.ErrorIs(t, errSave, errPersist)

	// Back in editing with everything staged still there.
	require.Equal(t, editor.StateEditing, session.State())
	require.Equal(t, "kept", session.Working().Title)
	require.Len(t, session.Media(), 1)

	// A second attempt is allowed.
	require.NoError(t, session.Save(context.Background(), testAssets(),
		func(_ context.Context, _ card, _ []editor.MediaItem) error {
			return nil
		}))
}

func TestSaveBatchFailureKeepsPending(t *testing.T) {
	t.Parallel()

	manager := editor.NewManager[card]()
	session := manager.Begin(card{}, nil)

	// Over the 1KiB test limit so the batch upload fails.
	big := make([]byte, 2*1024*1024)
	copy(big, pngHeader)

	require.NoError(t, session.AddMedia(editor.MediaItem{
		Pending: &editor.Pending{Name: "big.png", Data: big},
	}, 0))

	errSave := session.Save(context.Background(), testAssets(),
		func(_ context.Context, _ card, _ []editor.MediaItem) error {
			return nil
		})
	require.Error(t, errSave)

	require.Equal(t, editor.StateEditing, session.State())
	require.True(t, session.Media()[0].IsPending())
}
