package content_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/andiamooltre/oltreweb/internal/content"
	"github.com/andiamooltre/oltreweb/internal/database"
)

type memoryRepository struct {
	mu       sync.Mutex
	sections map[string]content.Section
	failGet  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sections: map[string]content.Section{}}
}

func (r *memoryRepository) Get(_ context.Context, key string, section *content.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failGet != nil {
		return r.failGet
	}

	stored, found := r.sections[key]
	if !found {
		return database.ErrNoResult
	}

	*section = stored

	return nil
}

func (r *memoryRepository) List(_ context.Context) ([]content.Section, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	//goland:noinspection GoPreferNilSlice
	sections := []content.Section{}
	for _, section := range r.sections {
		sections = append(sections, section)
	}

	return sections, nil
}

func (r *memoryRepository) Save(_ context.Context, section *content.Section) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sections[section.Key] = *section

	return nil
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	contents := content.NewContents(repo, afs.New(), t.TempDir(), nil)

	section := content.Section{Key: content.SectionHomeDescription, Content: "Benvenuti"}
	require.NoError(t, contents.Save(context.Background(), &section))

	loaded, errGet := contents.Get(context.Background(), content.SectionHomeDescription)
	require.NoError(t, errGet)
	require.Equal(t, "Benvenuti", loaded.Content)
}

func TestGetUnknownKeyReturnsEmpty(t *testing.T) {
	t.Parallel()

	contents := content.NewContents(newMemoryRepository(), afs.New(), t.TempDir(), nil)

	loaded, errGet := contents.Get(context.Background(), "missing_section")
	require.NoError(t, errGet)
	require.Equal(t, "missing_section", loaded.Key)
	require.Empty(t, loaded.Content)
}

func TestSaveRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	contents := content.NewContents(newMemoryRepository(), afs.New(), t.TempDir(), nil)

	section := content.Section{Content: "x"}
	require.ErrorIs(t, contents.Save(context.Background(), &section), content.ErrSectionKey)

	_, errGet := contents.Get(context.Background(), "")
	require.ErrorIs(t, errGet, content.ErrSectionKey)
}

func TestGetFallsBackToCache(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	contents := content.NewContents(repo, afs.New(), t.TempDir(), nil)

	section := content.Section{Key: content.SectionHomeDescription, Content: "Benvenuti"}
	require.NoError(t, contents.Save(context.Background(), &section))

	// Database goes away, the cache file still answers.
	repo.failGet = errors.New("connection refused")

	loaded, errGet := contents.Get(context.Background(), content.SectionHomeDescription)
	require.NoError(t, errGet)
	require.Equal(t, "Benvenuti", loaded.Content)
}

func TestGetFailsWithoutCache(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	repo.failGet = errors.New("connection refused")

	contents := content.NewContents(repo, afs.New(), t.TempDir(), nil)

	_, errGet := contents.Get(context.Background(), content.SectionHomeDescription)
	require.Error(t, errGet)
}

func TestSanitized(t *testing.T) {
	t.Parallel()

	section := content.Section{Content: "ciao <script>alert(1)</script><b>mondo</b>"}
	require.NotContains(t, section.Sanitized(), "<script>")
	require.Contains(t, section.Sanitized(), "<b>mondo</b>")
}
