package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/adproof/internal/database"
)

// ReviewRepository provides PostgreSQL-backed review token storage
type ReviewRepository struct {
	pool *Pool
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(pool *Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewColumns = `id, ad_id, token, client_email, client_name, expires_at, used_at, response, feedback, created_at`

func scanReviewToken(row rowScanner) (*database.ReviewToken, error) {
	var t database.ReviewToken
	var usedAt sql.NullTime
	var response sql.NullString
	if err := row.Scan(&t.ID, &t.AdID, &t.Token, &t.ClientEmail, &t.ClientName, &t.ExpiresAt,
		&usedAt, &response, &t.Feedback, &t.CreatedAt); err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	if response.Valid {
		r := database.ReviewResponse(response.String)
		t.Response = &r
	}
	return &t, nil
}

func (r *ReviewRepository) CreateReviewToken(ctx context.Context, token *database.ReviewToken) error {
	if token.ID == "" {
		token.ID = newID()
	}
	token.CreatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO review_tokens (id, ad_id, token, client_email, client_name, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		token.ID, token.AdID, token.Token, token.ClientEmail, token.ClientName, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("create review token: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetReviewToken(ctx context.Context, token string) (*database.ReviewToken, error) {
	t, err := scanReviewToken(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM review_tokens WHERE token = $1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review token: %w", err)
	}
	return t, nil
}

func (r *ReviewRepository) ListReviewTokens(ctx context.Context, adID string) ([]database.ReviewToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM review_tokens WHERE ad_id = $1 ORDER BY created_at DESC`, adID)
	if err != nil {
		return nil, fmt.Errorf("list review tokens: %w", err)
	}
	defer rows.Close()
	var tokens []database.ReviewToken
	for rows.Next() {
		t, err := scanReviewToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review token: %w", err)
		}
		tokens = append(tokens, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review tokens: %w", err)
	}
	return tokens, nil
}

func (r *ReviewRepository) SubmitReviewResponse(ctx context.Context, token string, response database.ReviewResponse, feedback string, at time.Time) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE review_tokens SET used_at = $1, response = $2, feedback = $3
		 WHERE token = $4 AND used_at IS NULL`,
		at, string(response), feedback, token)
	if err != nil {
		return fmt.Errorf("submit review response: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.ErrTokenUsed
		}
		return err
	}
	return nil
}
