package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kozaktomas/adproof/internal/database"
)

// AdRepository provides PostgreSQL-backed ad and asset storage
type AdRepository struct {
	pool *Pool
}

// NewAdRepository creates a new AdRepository
func NewAdRepository(pool *Pool) *AdRepository {
	return &AdRepository{pool: pool}
}

const adColumns = `id, user_id, client_name, ad_name,
	COALESCE(publication_id, ''), COALESCE(publication_issue_id, ''), COALESCE(ad_size_id, ''),
	aspect_ratio, width_px, height_px, dpi, bleed_px, safe_px, min_font_size,
	brief, copy, status, target_date, created_at, updated_at`

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func scanAd(row rowScanner) (*database.Ad, error) {
	var a database.Ad
	var bleed, safe, minFont sql.NullInt64
	var target sql.NullTime
	if err := row.Scan(&a.ID, &a.UserID, &a.ClientName, &a.AdName,
		&a.PublicationID, &a.PublicationIssueID, &a.AdSizeID,
		&a.AspectRatio, &a.SizeSpec.Width, &a.SizeSpec.Height, &a.DPI, &bleed, &safe, &minFont,
		&a.Brief, &a.Copy, &a.Status, &target, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.BleedPx = nullIntPtr(bleed)
	a.SafePx = nullIntPtr(safe)
	a.MinFontSize = nullIntPtr(minFont)
	if target.Valid {
		a.TargetDate = &target.Time
	}
	return &a, nil
}

func (r *AdRepository) ListAds(ctx context.Context, filter database.AdFilter) ([]database.Ad, error) {
	var where []string
	var args []any
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.PublicationIssueID != "" {
		args = append(args, filter.PublicationIssueID)
		where = append(where, fmt.Sprintf("publication_issue_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + adColumns + ` FROM ads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()
	var ads []database.Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		ads = append(ads, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ads: %w", err)
	}
	return ads, nil
}

func (r *AdRepository) GetAd(ctx context.Context, id string) (*database.Ad, error) {
	a, err := scanAd(r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	return a, nil
}

func (r *AdRepository) CreateAd(ctx context.Context, ad *database.Ad) error {
	if ad.ID == "" {
		ad.ID = newID()
	}
	if ad.Status == "" {
		ad.Status = database.AdStatusDraft
	}
	now := time.Now()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ads (id, user_id, client_name, ad_name, publication_id, publication_issue_id, ad_size_id,
			aspect_ratio, width_px, height_px, dpi, bleed_px, safe_px, min_font_size,
			brief, copy, status, target_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		ad.ID, ad.UserID, ad.ClientName, ad.AdName,
		nullString(ad.PublicationID), nullString(ad.PublicationIssueID), nullString(ad.AdSizeID),
		string(ad.AspectRatio), ad.SizeSpec.Width, ad.SizeSpec.Height, ad.DPI,
		ad.BleedPx, ad.SafePx, ad.MinFontSize,
		ad.Brief, ad.Copy, string(ad.Status), ad.TargetDate, ad.CreatedAt, ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create ad: %w", err)
	}
	return nil
}

func (r *AdRepository) UpdateAdStatus(ctx context.Context, id string, status database.AdStatus) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE ads SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update ad status: %w", err)
	}
	return expectOneRow(res)
}

func (r *AdRepository) UpdateAdSpecs(ctx context.Context, id string, specs database.AdSpecsUpdate) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE ads SET
			bleed_px = COALESCE($1, bleed_px),
			safe_px = COALESCE($2, safe_px),
			min_font_size = COALESCE($3, min_font_size),
			updated_at = NOW()
		 WHERE id = $4`,
		specs.BleedPx, specs.SafePx, specs.MinFontSize, id)
	if err != nil {
		return fmt.Errorf("update ad specs: %w", err)
	}
	return expectOneRow(res)
}

// --- Assets ---

func (r *AdRepository) ListAssets(ctx context.Context, adID string) ([]database.Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ad_id, type, url, width, height, name, created_at
		 FROM assets WHERE ad_id = $1 ORDER BY created_at`, adID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()
	var assets []database.Asset
	for rows.Next() {
		var a database.Asset
		var width, height sql.NullInt64
		if err := rows.Scan(&a.ID, &a.AdID, &a.Type, &a.URL, &width, &height, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a.Width = nullIntPtr(width)
		a.Height = nullIntPtr(height)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

func (r *AdRepository) CreateAsset(ctx context.Context, asset *database.Asset) error {
	if asset.ID == "" {
		asset.ID = newID()
	}
	asset.CreatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO assets (id, ad_id, type, url, width, height, name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		asset.ID, asset.AdID, string(asset.Type), asset.URL, asset.Width, asset.Height, asset.Name, asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}
