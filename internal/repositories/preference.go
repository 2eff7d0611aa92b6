package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
)

// PreferenceRepository stores [models.Preference] rows and serves as a [table.Store].
type PreferenceRepository struct {
	db *sql.DB
}

var _ table.Store = (*PreferenceRepository)(nil)

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the value stored under key.
func (r *PreferenceRepository) Get(key string) (string, bool, error) {
	p, err := r.Find(key)
	if errors.Is(err, shared.ErrPreferenceNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Value, true, nil
}

// Set inserts or replaces the value stored under key.
func (r *PreferenceRepository) Set(key, value string) error {
	p := models.NewPreference(key, value)
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO preferences (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, p.Key, p.Value, p.CreatedAt(), p.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// Find retrieves a preference with its timestamps.
func (r *PreferenceRepository) Find(key string) (*models.Preference, error) {
	query := `SELECT key, value, created_at, updated_at FROM preferences WHERE key = ?`

	var (
		p         models.Preference
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.db.QueryRow(query, key).Scan(&p.Key, &p.Value, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPreferenceNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference: %w", err)
	}

	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(updatedAt)
	return &p, nil
}

// Delete removes the preference stored under key.
func (r *PreferenceRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPreferenceNotFound, key)
	}
	return nil
}

// List returns the preferences whose key starts with prefix, ordered by key. An empty prefix lists
// everything.
func (r *PreferenceRepository) List(prefix string) ([]*models.Preference, error) {
	query := `
		SELECT key, value, created_at, updated_at
		FROM preferences
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY key
	`

	rows, err := r.db.Query(query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		var (
			p         models.Preference
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&p.Key, &p.Value, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		p.SetCreatedAt(createdAt)
		p.SetUpdatedAt(updatedAt)
		prefs = append(prefs, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return prefs, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
