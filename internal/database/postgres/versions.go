package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/database"
)

// VersionRepository provides PostgreSQL-backed version storage
type VersionRepository struct {
	pool *Pool
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(pool *Pool) *VersionRepository {
	return &VersionRepository{pool: pool}
}

const versionColumns = `id, ad_id, source, layout_json, preview_url, is_selected, image_transform, status, created_at`

func scanVersion(row rowScanner) (*database.Version, error) {
	var v database.Version
	var layout, transform []byte
	if err := row.Scan(&v.ID, &v.AdID, &v.Source, &layout, &v.PreviewURL, &v.IsSelected,
		&transform, &v.Status, &v.CreatedAt); err != nil {
		return nil, err
	}
	if len(layout) > 0 {
		v.LayoutJSON = json.RawMessage(layout)
	}
	if len(transform) > 0 {
		var t canvas.Transform
		if err := json.Unmarshal(transform, &t); err != nil {
			return nil, fmt.Errorf("decode image transform: %w", err)
		}
		v.ImageTransform = &t
	}
	return &v, nil
}

func (r *VersionRepository) listWhere(ctx context.Context, label, cond string, args ...any) ([]database.Version, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+versionColumns+` FROM versions WHERE `+cond+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	defer rows.Close()
	var versions []database.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

func (r *VersionRepository) ListVersions(ctx context.Context, adID string) ([]database.Version, error) {
	return r.listWhere(ctx, "list versions", `ad_id = $1`, adID)
}

func (r *VersionRepository) GetVersion(ctx context.Context, id string) (*database.Version, error) {
	v, err := scanVersion(r.pool.QueryRow(ctx, `SELECT `+versionColumns+` FROM versions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

func (r *VersionRepository) GetSelectedVersion(ctx context.Context, adID string) (*database.Version, error) {
	v, err := scanVersion(r.pool.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE ad_id = $1 AND is_selected LIMIT 1`, adID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get selected version: %w", err)
	}
	return v, nil
}

func (r *VersionRepository) CreateVersion(ctx context.Context, version *database.Version) error {
	if version.ID == "" {
		version.ID = newID()
	}
	if version.Status == "" {
		version.Status = database.VersionStatusPending
	}
	var transform []byte
	if version.ImageTransform != nil {
		b, err := json.Marshal(version.ImageTransform)
		if err != nil {
			return fmt.Errorf("encode image transform: %w", err)
		}
		transform = b
	}
	var layout []byte
	if len(version.LayoutJSON) > 0 {
		layout = version.LayoutJSON
	}
	version.IsSelected = true
	version.CreatedAt = time.Now()

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE versions SET is_selected = FALSE WHERE ad_id = $1 AND is_selected`, version.AdID); err != nil {
		return fmt.Errorf("deselect versions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO versions (`+versionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		version.ID, version.AdID, string(version.Source), jsonParam(layout), version.PreviewURL, version.IsSelected,
		jsonParam(transform), string(version.Status), version.CreatedAt); err != nil {
		return fmt.Errorf("create version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create version: %w", err)
	}
	return nil
}

func (r *VersionRepository) SetSelectedVersion(ctx context.Context, adID, versionID string) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE versions SET is_selected = FALSE WHERE ad_id = $1 AND is_selected`, adID); err != nil {
		return fmt.Errorf("deselect versions: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE versions SET is_selected = TRUE WHERE id = $1 AND ad_id = $2`, versionID, adID)
	if err != nil {
		return fmt.Errorf("select version: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit select version: %w", err)
	}
	return nil
}

func (r *VersionRepository) UpdateVersionStatus(ctx context.Context, id string, status database.VersionStatus) error {
	res, err := r.pool.Exec(ctx, `UPDATE versions SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update version status: %w", err)
	}
	return expectOneRow(res)
}

func (r *VersionRepository) SaveTransform(ctx context.Context, id string, t canvas.Transform) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode image transform: %w", err)
	}
	res, err := r.pool.Exec(ctx, `UPDATE versions SET image_transform = $1 WHERE id = $2`, jsonParam(b), id)
	if err != nil {
		return fmt.Errorf("save transform: %w", err)
	}
	return expectOneRow(res)
}
