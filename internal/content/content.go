// Package content stores the editable text sections of the public pages, keyed by
// section. A small write-through file cache keeps the home description readable even
// when the database is briefly unavailable at startup.
package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
	"github.com/andiamooltre/oltreweb/pkg/log"
	"github.com/andiamooltre/oltreweb/pkg/stringutil"
)

var ErrSectionKey = errors.New("invalid section key")

const (
	TopicChanged = "site_content"

	SectionHomeDescription = "home_description"
)

type Section struct {
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	UpdatedOn time.Time `json:"updated_on,omitzero"`
}

// Sanitized returns the section body with any markup stripped down to safe tags.
func (s Section) Sanitized() string {
	return stringutil.SanitizeUGC(s.Content)
}

type Repository interface {
	Get(ctx context.Context, key string, section *Section) error
	List(ctx context.Context) ([]Section, error)
	Save(ctx context.Context, section *Section) error
}

type Contents struct {
	repository Repository
	fs         afs.Service
	cacheDir   string
	changes    *broadcaster.Broadcaster[string]
}

func NewContents(repository Repository, fs afs.Service, cacheDir string,
	changes *broadcaster.Broadcaster[string],
) Contents {
	return Contents{repository: repository, fs: fs, cacheDir: cacheDir, changes: changes}
}

func (u Contents) cachePath(key string) string {
	return path.Join(u.cacheDir, key+".txt")
}

// Get loads a section, falling back to the file cache when the database has no answer.
func (u Contents) Get(ctx context.Context, key string) (Section, error) {
	if key == "" {
		return Section{}, ErrSectionKey
	}

	var section Section

	errGet := u.repository.Get(ctx, key, &section)
	if errGet == nil {
		return section, nil
	}

	if !errors.Is(errGet, database.ErrNoResult) {
		if cached, errCache := u.cached(ctx, key); errCache == nil {
			slog.Warn("Serving section from file cache", slog.String("key", key), log.ErrAttr(errGet))

			return cached, nil
		}

		return Section{}, errGet
	}

	return Section{Key: key}, nil
}

func (u Contents) List(ctx context.Context) ([]Section, error) {
	return u.repository.List(ctx)
}

// Save persists a section and refreshes its cache file. A cache write failure is logged
// but never fails the save.
func (u Contents) Save(ctx context.Context, section *Section) error {
	if section.Key == "" {
		return ErrSectionKey
	}

	if errSave := u.repository.Save(ctx, section); errSave != nil {
		return errSave
	}

	if errCache := u.fs.Upload(ctx, u.cachePath(section.Key), file.DefaultFileOsMode,
		strings.NewReader(section.Content)); errCache != nil {
		slog.Error("Failed to update section cache file",
			slog.String("key", section.Key), log.ErrAttr(errCache))
	}

	if u.changes != nil {
		u.changes.Emit(TopicChanged)
	}

	return nil
}

func (u Contents) cached(ctx context.Context, key string) (Section, error) {
	reader, errOpen := u.fs.OpenURL(ctx, u.cachePath(key))
	if errOpen != nil {
		return Section{}, errOpen
	}

	defer log.Closer(reader)

	body, errRead := io.ReadAll(reader)
	if errRead != nil {
		return Section{}, errRead
	}

	return Section{Key: key, Content: string(body)}, nil
}
