// Package asset stores uploaded media and derives durable delivery URLs.
package asset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/andiamooltre/oltreweb/pkg/log"
)

var (
	ErrAssetName          = errors.New("invalid asset name")
	ErrAssetTooLarge      = errors.New("asset exceeds max size")
	ErrMimeTypeReadFailed = errors.New("failed to detect mime type")
	ErrCopyFileContent    = errors.New("failed to copy file content")
	ErrHashFileContent    = errors.New("failed to hash file content")
	ErrUUIDCreate         = errors.New("failed to generate uuid")
	ErrUUIDInvalid        = errors.New("invalid uuid")
	ErrBatchUpload        = errors.New("batch upload failed")
)

const UnknownMediaTag = "__unknown__"

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindRaw   Kind = "raw"
)

func KindFromMime(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	default:
		return KindRaw
	}
}

// Limits hold the maximum accepted content size per asset kind.
type Limits struct {
	MaxImageSize int64
	MaxVideoSize int64
	MaxRawSize   int64
}

func (l Limits) max(kind Kind) int64 {
	switch kind {
	case KindImage:
		return l.MaxImageSize
	case KindVideo:
		return l.MaxVideoSize
	default:
		return l.MaxRawSize
	}
}

type Asset struct {
	AssetID   uuid.UUID `json:"asset_id"`
	Hash      []byte    `json:"-"` // 32 bytes
	Kind      Kind      `json:"kind"`
	MimeType  string    `json:"mime_type"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedOn time.Time `json:"created_on"`
}

func (a Asset) HashString() string {
	return hex.EncodeToString(a.Hash)
}

// Upload is a single pending file destined for the media store.
type Upload struct {
	Name    string
	Content io.ReadSeeker
}

type Repository interface {
	Put(ctx context.Context, asset Asset, body io.ReadSeeker) (Asset, error)
	GetByID(ctx context.Context, assetID uuid.UUID) (Asset, error)
	Open(ctx context.Context, asset Asset) (io.ReadCloser, error)
	Delete(ctx context.Context, assetID uuid.UUID) (int64, error)
}

type Assets struct {
	repository Repository
	limits     Limits
	extURL     func(path string) string
}

func NewAssets(repository Repository, limits Limits, extURL func(path string) string) Assets {
	return Assets{repository: repository, limits: limits, extURL: extURL}
}

// URL returns the durable delivery URL for a stored asset.
func (s Assets) URL(asset Asset) string {
	return s.extURL(fmt.Sprintf("/media/%s/%s", asset.AssetID, asset.Name))
}

func (s Assets) Create(ctx context.Context, fileName string, content io.ReadSeeker) (Asset, error) {
	if fileName == "" {
		return Asset{}, ErrAssetName
	}

	asset, errAsset := NewAsset(fileName, s.limits, content)
	if errAsset != nil {
		return Asset{}, errAsset
	}

	newAsset, errPut := s.repository.Put(ctx, asset, content)
	if errPut != nil {
		return Asset{}, errPut
	}

	slog.Debug("Created new asset",
		slog.String("name", asset.Name), slog.String("asset_id", newAsset.AssetID.String()))

	return newAsset, nil
}

// CreateBatch uploads every entry concurrently and fails as a unit. On any failure the
// uploads that did complete are removed again so no partial batch remains.
func (s Assets) CreateBatch(ctx context.Context, uploads []Upload) ([]Asset, error) {
	stored := make([]Asset, len(uploads))

	group, groupCtx := errgroup.WithContext(ctx)

	for index, upload := range uploads {
		group.Go(func() error {
			saved, errSave := s.Create(groupCtx, upload.Name, upload.Content)
			if errSave != nil {
				return errSave
			}

			stored[index] = saved

			return nil
		})
	}

	if errBatch := group.Wait(); errBatch != nil {
		for _, saved := range stored {
			if saved.AssetID.IsNil() {
				continue
			}

			if _, errDelete := s.repository.Delete(ctx, saved.AssetID); errDelete != nil {
				slog.Error("Failed to remove orphaned batch asset",
					slog.String("asset_id", saved.AssetID.String()), log.ErrAttr(errDelete))
			}
		}

		return nil, errors.Join(errBatch, ErrBatchUpload)
	}

	return stored, nil
}

func (s Assets) Get(ctx context.Context, assetID uuid.UUID) (Asset, io.ReadCloser, error) {
	if assetID.IsNil() {
		return Asset{}, nil, ErrUUIDInvalid
	}

	asset, errAsset := s.repository.GetByID(ctx, assetID)
	if errAsset != nil {
		return Asset{}, nil, errAsset
	}

	reader, errOpen := s.repository.Open(ctx, asset)
	if errOpen != nil {
		return Asset{}, nil, errOpen
	}

	return asset, reader, nil
}

func (s Assets) Delete(ctx context.Context, assetID uuid.UUID) (int64, error) {
	if assetID.IsNil() {
		return 0, ErrUUIDInvalid
	}

	size, err := s.repository.Delete(ctx, assetID)
	if err != nil {
		return 0, err
	}

	slog.Debug("Removed asset", slog.String("asset_id", assetID.String()),
		slog.String("size", humanize.Bytes(uint64(size)))) //nolint:gosec

	return size, nil
}

// DeleteByURL removes an asset addressed by its delivery URL, deriving the stored id
// from the URL's public identifier.
func (s Assets) DeleteByURL(ctx context.Context, rawURL string) (int64, error) {
	publicID, errID := PublicIDFromURL(rawURL, KindRaw)
	if errID != nil {
		return 0, errID
	}

	idPart, _, _ := strings.Cut(publicID, "/")

	assetID, errParse := uuid.FromString(idPart)
	if errParse != nil {
		return 0, errors.Join(errParse, ErrUUIDInvalid)
	}

	return s.Delete(ctx, assetID)
}

func generateFileHash(file io.Reader) ([]byte, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return nil, ErrHashFileContent
	}

	return hasher.Sum(nil), nil
}

func NewAsset(name string, limits Limits, contentReader io.ReadSeeker) (Asset, error) {
	mType, errMime := mimetype.DetectReader(contentReader)
	if errMime != nil {
		return Asset{}, errors.Join(errMime, ErrMimeTypeReadFailed)
	}

	_, _ = contentReader.Seek(0, 0)

	size, errSize := io.Copy(io.Discard, contentReader)
	if errSize != nil {
		return Asset{}, errors.Join(errSize, ErrCopyFileContent)
	}

	kind := KindFromMime(mType.String())

	if size > limits.max(kind) {
		return Asset{}, ErrAssetTooLarge
	}

	_, _ = contentReader.Seek(0, 0)

	hash, errHash := generateFileHash(contentReader)
	if errHash != nil {
		return Asset{}, errHash
	}

	_, _ = contentReader.Seek(0, 0)

	newID, errID := uuid.NewV4()
	if errID != nil {
		return Asset{}, errors.Join(errID, ErrUUIDCreate)
	}

	if name == UnknownMediaTag {
		name = fmt.Sprintf("%x%s", hash, mType.Extension())
	}

	return Asset{
		AssetID:   newID,
		Hash:      hash,
		Kind:      kind,
		MimeType:  mType.String(),
		Name:      strings.ReplaceAll(name, " ", "_"),
		Size:      size,
		CreatedOn: time.Now(),
	}, nil
}
