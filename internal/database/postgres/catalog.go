package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/adproof/internal/database"
)

// CatalogRepository provides PostgreSQL-backed clients, publications and ad sizes
type CatalogRepository struct {
	pool *Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(pool *Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func newID() string {
	return uuid.New().String()
}

// nullString stores empty strings as NULL for optional foreign keys.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// --- Clients ---

func (r *CatalogRepository) ListClients(ctx context.Context) ([]database.Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var clients []database.Client
	for rows.Next() {
		var c database.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

func (r *CatalogRepository) GetClient(ctx context.Context, id string) (*database.Client, error) {
	var c database.Client
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (r *CatalogRepository) CreateClient(ctx context.Context, client *database.Client) error {
	if client.ID == "" {
		client.ID = newID()
	}
	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clients (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		client.ID, client.Name, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// --- Publications ---

const publicationColumns = `id, name, dpi_default, min_font_size, bleed_px, safe_px, size_presets, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPublication(row rowScanner) (*database.Publication, error) {
	var p database.Publication
	var presets []byte
	if err := row.Scan(&p.ID, &p.Name, &p.DPIDefault, &p.MinFontSize, &p.BleedPx, &p.SafePx,
		&presets, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(presets) > 0 {
		if err := json.Unmarshal(presets, &p.SizePresets); err != nil {
			return nil, fmt.Errorf("decode size presets: %w", err)
		}
	}
	return &p, nil
}

func (r *CatalogRepository) ListPublications(ctx context.Context) ([]database.Publication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+publicationColumns+` FROM publications ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()
	var pubs []database.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pubs = append(pubs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return pubs, nil
}

func (r *CatalogRepository) GetPublication(ctx context.Context, id string) (*database.Publication, error) {
	p, err := scanPublication(r.pool.QueryRow(ctx, `SELECT `+publicationColumns+` FROM publications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return p, nil
}

func (r *CatalogRepository) CreatePublication(ctx context.Context, pub *database.Publication) error {
	if pub.ID == "" {
		pub.ID = newID()
	}
	if pub.SizePresets == nil {
		pub.SizePresets = []database.SizePreset{}
	}
	presets, err := json.Marshal(pub.SizePresets)
	if err != nil {
		return fmt.Errorf("encode size presets: %w", err)
	}
	now := time.Now()
	pub.CreatedAt = now
	pub.UpdatedAt = now
	_, err = r.pool.Exec(ctx,
		`INSERT INTO publications (`+publicationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pub.ID, pub.Name, pub.DPIDefault, pub.MinFontSize, pub.BleedPx, pub.SafePx, jsonParam(presets), pub.CreatedAt, pub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create publication: %w", err)
	}
	return nil
}

// --- Publication issues ---

func (r *CatalogRepository) ListPublicationIssues(ctx context.Context, publicationID string) ([]database.PublicationIssue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, publication_id, COALESCE(client_id, ''), issue_date, created_at
		 FROM publication_issues WHERE publication_id = $1 ORDER BY issue_date`, publicationID)
	if err != nil {
		return nil, fmt.Errorf("list publication issues: %w", err)
	}
	defer rows.Close()
	var issues []database.PublicationIssue
	for rows.Next() {
		var i database.PublicationIssue
		if err := rows.Scan(&i.ID, &i.PublicationID, &i.ClientID, &i.IssueDate, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan publication issue: %w", err)
		}
		issues = append(issues, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publication issues: %w", err)
	}
	return issues, nil
}

func (r *CatalogRepository) CreatePublicationIssue(ctx context.Context, issue *database.PublicationIssue) error {
	if issue.ID == "" {
		issue.ID = newID()
	}
	issue.CreatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO publication_issues (id, publication_id, client_id, issue_date, created_at) VALUES ($1, $2, $3, $4, $5)`,
		issue.ID, issue.PublicationID, nullString(issue.ClientID), issue.IssueDate, issue.CreatedAt)
	if err != nil {
		return fmt.Errorf("create publication issue: %w", err)
	}
	return nil
}

// --- Ad sizes ---

const adSizeColumns = `id, size_id, ad_size_fraction, ad_size_words, width_in, height_in, dpi, width_px, height_px, created_at`

func scanAdSize(row rowScanner) (*database.AdSize, error) {
	var s database.AdSize
	if err := row.Scan(&s.ID, &s.SizeID, &s.Fraction, &s.Words, &s.WidthIn, &s.HeightIn,
		&s.DPI, &s.WidthPx, &s.HeightPx, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) ListAdSizes(ctx context.Context) ([]database.AdSize, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adSizeColumns+` FROM ad_sizes ORDER BY width_in * height_in DESC, size_id`)
	if err != nil {
		return nil, fmt.Errorf("list ad sizes: %w", err)
	}
	defer rows.Close()
	var sizes []database.AdSize
	for rows.Next() {
		s, err := scanAdSize(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad size: %w", err)
		}
		sizes = append(sizes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ad sizes: %w", err)
	}
	return sizes, nil
}

func (r *CatalogRepository) GetAdSize(ctx context.Context, id string) (*database.AdSize, error) {
	s, err := scanAdSize(r.pool.QueryRow(ctx, `SELECT `+adSizeColumns+` FROM ad_sizes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ad size: %w", err)
	}
	return s, nil
}

func (r *CatalogRepository) UpsertAdSize(ctx context.Context, size *database.AdSize) error {
	if size.ID == "" {
		size.ID = newID()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ad_sizes (id, size_id, ad_size_fraction, ad_size_words, width_in, height_in, dpi, width_px, height_px)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (size_id) DO UPDATE SET
			ad_size_fraction = EXCLUDED.ad_size_fraction,
			ad_size_words = EXCLUDED.ad_size_words,
			width_in = EXCLUDED.width_in,
			height_in = EXCLUDED.height_in,
			dpi = EXCLUDED.dpi,
			width_px = EXCLUDED.width_px,
			height_px = EXCLUDED.height_px
		 RETURNING id, created_at`,
		size.ID, size.SizeID, size.Fraction, size.Words, size.WidthIn, size.HeightIn,
		size.DPI, size.WidthPx, size.HeightPx).Scan(&size.ID, &size.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert ad size: %w", err)
	}
	return nil
}
