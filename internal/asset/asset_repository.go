package asset

import (
	"context"
	"errors"
	"io"
	"path"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/andiamooltre/oltreweb/internal/database"
)

var ErrWriteAsset = errors.New("failed to write asset content")

type fileRepository struct {
	db   database.Database
	fs   afs.Service
	root string
}

// NewFileRepository stores asset content under root on the afs abstraction with
// metadata rows in postgres.
func NewFileRepository(db database.Database, fs afs.Service, root string) Repository {
	return &fileRepository{db: db, fs: fs, root: root}
}

func (r fileRepository) assetPath(asset Asset) string {
	return path.Join(r.root, string(asset.Kind), asset.HashString())
}

func (r fileRepository) Put(ctx context.Context, asset Asset, body io.ReadSeeker) (Asset, error) {
	existing, errExisting := r.getByHash(ctx, asset.Hash)
	if errExisting == nil {
		return existing, nil
	}

	if !errors.Is(errExisting, database.ErrNoResult) {
		return Asset{}, errExisting
	}

	_, _ = body.Seek(0, 0)

	if errUpload := r.fs.Upload(ctx, r.assetPath(asset), file.DefaultFileOsMode, body); errUpload != nil {
		return Asset{}, errors.Join(errUpload, ErrWriteAsset)
	}

	if errSave := r.saveAssetToDB(ctx, asset); errSave != nil {
		if errRemove := r.fs.Delete(ctx, r.assetPath(asset)); errRemove != nil {
			return Asset{}, errors.Join(errRemove, errSave)
		}

		return Asset{}, errSave
	}

	return asset, nil
}

func (r fileRepository) saveAssetToDB(ctx context.Context, asset Asset) error {
	return database.DBErr(r.db.ExecInsertBuilder(ctx, r.db.
		Builder().
		Insert("asset").
		Columns("asset_id", "hash", "kind", "mime_type", "name", "size", "created_on").
		Values(asset.AssetID, asset.Hash, asset.Kind, asset.MimeType, asset.Name, asset.Size, asset.CreatedOn)))
}

const assetColumns = "asset_id, hash, kind, mime_type, name, size, created_on"

func (r fileRepository) scanAsset(row interface{ Scan(...any) error }) (Asset, error) {
	var asset Asset
	if errScan := row.Scan(&asset.AssetID, &asset.Hash, &asset.Kind, &asset.MimeType,
		&asset.Name, &asset.Size, &asset.CreatedOn); errScan != nil {
		return Asset{}, database.DBErr(errScan)
	}

	return asset, nil
}

func (r fileRepository) getByHash(ctx context.Context, hash []byte) (Asset, error) {
	return r.scanAsset(r.db.QueryRow(ctx,
		"SELECT "+assetColumns+" FROM asset WHERE hash = $1", hash))
}

func (r fileRepository) GetByID(ctx context.Context, assetID uuid.UUID) (Asset, error) {
	return r.scanAsset(r.db.QueryRow(ctx,
		"SELECT "+assetColumns+" FROM asset WHERE asset_id = $1", assetID))
}

func (r fileRepository) Open(ctx context.Context, asset Asset) (io.ReadCloser, error) {
	reader, errOpen := r.fs.OpenURL(ctx, r.assetPath(asset))
	if errOpen != nil {
		return nil, errors.Join(errOpen, database.ErrNoResult)
	}

	return reader, nil
}

func (r fileRepository) Delete(ctx context.Context, assetID uuid.UUID) (int64, error) {
	asset, errAsset := r.GetByID(ctx, assetID)
	if errAsset != nil {
		return 0, errAsset
	}

	query := r.db.Builder().Delete("asset").Where(sq.Eq{"asset_id": assetID})

	if errExec := r.db.ExecDeleteBuilder(ctx, query); errExec != nil {
		return 0, database.DBErr(errExec)
	}

	if errRemove := r.fs.Delete(ctx, r.assetPath(asset)); errRemove != nil {
		return 0, errors.Join(errRemove, ErrWriteAsset)
	}

	return asset.Size, nil
}
