package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/shared"
)

// UploadRepository implements [models.Repository] for [models.UploadRecord] persistence.
type UploadRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.UploadRecord] = (*UploadRepository)(nil)

// NewUploadRepository creates a new [UploadRepository] with the given database connection
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload record with generated ID and sequence
func (r *UploadRepository) Create(u *models.UploadRecord) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "upload_log")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO upload_log (id, sequence, piece_id, asset_id, filename, asset_type, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, u.PieceID, nullString(u.AssetID), u.Filename,
		string(u.AssetType), string(u.Status), nullString(u.Error), u.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert upload record: %w", err)
	}

	u.SetID(id)
	u.Sequence = sequence
	return nil
}

const uploadColumns = `id, sequence, piece_id, asset_id, filename, asset_type, status, error, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.UploadRecord, error) {
	var (
		u         models.UploadRecord
		id        string
		assetID   sql.NullString
		assetType string
		status    string
		errText   sql.NullString
		createdAt time.Time
	)
	if err := s.Scan(&id, &u.Sequence, &u.PieceID, &assetID, &u.Filename, &assetType, &status, &errText, &createdAt); err != nil {
		return nil, err
	}

	u.SetID(id)
	u.SetCreatedAt(createdAt)
	u.AssetID = assetID.String
	u.AssetType = models.AssetType(assetType)
	u.Status = models.AssetStatus(status)
	u.Error = errText.String
	return &u, nil
}

// Get retrieves an upload record by ID
func (r *UploadRepository) Get(id string) (*models.UploadRecord, error) {
	row := r.db.QueryRow(`SELECT `+uploadColumns+` FROM upload_log WHERE id = ?`, id)
	u, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("upload record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload record: %w", err)
	}
	return u, nil
}

// Update stores the asset ID, status and error of an existing record
func (r *UploadRepository) Update(u *models.UploadRecord) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `UPDATE upload_log SET asset_id = ?, status = ?, error = ? WHERE id = ?`

	result, err := r.db.Exec(query, nullString(u.AssetID), string(u.Status), nullString(u.Error), u.ID())
	if err != nil {
		return fmt.Errorf("failed to update upload record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("upload record not found: %s", u.ID())
	}
	return nil
}

// Delete removes an upload record by ID
func (r *UploadRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM upload_log WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("upload record not found: %s", id)
	}
	return nil
}

// List retrieves upload records matching criteria, newest first.
//
// Supported criteria: "piece_id", "status", "asset_type" (exact match) and "limit" (int).
func (r *UploadRepository) List(criteria map[string]any) ([]*models.UploadRecord, error) {
	var (
		where []string
		args  []any
	)
	for _, col := range []string{"piece_id", "status", "asset_type"} {
		if v, ok := criteria[col]; ok {
			where = append(where, col+" = ?")
			args = append(args, fmt.Sprint(v))
		}
	}

	query := `SELECT ` + uploadColumns + ` FROM upload_log`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY sequence DESC`
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload records: %w", err)
	}
	defer rows.Close()

	var records []*models.UploadRecord
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload record: %w", err)
		}
		records = append(records, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
