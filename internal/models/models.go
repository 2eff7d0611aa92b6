package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// AssetType is the kind of file attached to a piece.
type AssetType string

const (
	AssetClean  AssetType = "Clean"
	AssetBowing AssetType = "Bowing"
)

// ParseAssetType accepts the asset type names case-insensitively.
func ParseAssetType(s string) (AssetType, error) {
	for _, t := range []AssetType{AssetClean, AssetBowing} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown asset type %q", s)
}

// AssetStatus is the upload state reported back after the direct upload.
type AssetStatus string

const (
	StatusPending  AssetStatus = "Pending"
	StatusUploaded AssetStatus = "Uploaded"
	StatusFailed   AssetStatus = "Failed"
	StatusAborted  AssetStatus = "Aborted"
)

// Part is one instrument part.
type Part struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// PartAsset is a file attached to a piece. UploadURL is only set on creation.
type PartAsset struct {
	ID        string      `json:"id"`
	Filename  string      `json:"filename,omitempty"`
	AssetType AssetType   `json:"asset_type,omitempty"`
	Status    AssetStatus `json:"status,omitempty"`
	UploadURL string      `json:"upload_url,omitempty"`
	Parts     []Part      `json:"parts,omitempty"`
}

// PartIDs returns the IDs of the parts the asset covers.
func (a *PartAsset) PartIDs() []int {
	ids := make([]int, 0, len(a.Parts))
	for _, p := range a.Parts {
		ids = append(ids, p.ID)
	}
	return ids
}

// StringPartOption is a part that a bowing may be assigned to.
type StringPartOption struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// PartAssetList is the asset listing for one piece.
type PartAssetList struct {
	PartAssets        []PartAsset        `json:"part_assets"`
	StringPartOptions []StringPartOption `json:"string_part_options,omitempty"`
}

// Preference is a client preference such as "pieces.limit" = "50".
type Preference struct {
	Key       string
	Value     string
	createdAt time.Time
	updatedAt time.Time
}

// NewPreference creates a [Preference] stamped with the current time.
func NewPreference(key, value string) *Preference {
	now := time.Now()
	return &Preference{Key: key, Value: value, createdAt: now, updatedAt: now}
}

func (p *Preference) ID() string               { return p.Key }
func (p *Preference) CreatedAt() time.Time     { return p.createdAt }
func (p *Preference) UpdatedAt() time.Time     { return p.updatedAt }
func (p *Preference) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *Preference) SetUpdatedAt(t time.Time) { p.updatedAt = t }

func (p *Preference) Validate() error {
	if p.Key == "" {
		return errors.New("preference key is required")
	}
	return nil
}

// UploadRecord is the outcome of one file upload.
type UploadRecord struct {
	id        string
	Sequence  int
	PieceID   string
	AssetID   string
	Filename  string
	AssetType AssetType
	Status    AssetStatus
	Error     string
	createdAt time.Time
}

// NewUploadRecord creates a pending [UploadRecord] for filename.
func NewUploadRecord(pieceID, filename string, assetType AssetType) *UploadRecord {
	return &UploadRecord{
		PieceID:   pieceID,
		Filename:  filename,
		AssetType: assetType,
		Status:    StatusPending,
		createdAt: time.Now(),
	}
}

func (u *UploadRecord) ID() string               { return u.id }
func (u *UploadRecord) SetID(id string)          { u.id = id }
func (u *UploadRecord) CreatedAt() time.Time     { return u.createdAt }
func (u *UploadRecord) SetCreatedAt(t time.Time) { u.createdAt = t }

// UpdatedAt is the creation time; upload records are written once and only change status.
func (u *UploadRecord) UpdatedAt() time.Time { return u.createdAt }

func (u *UploadRecord) Validate() error {
	switch {
	case u.PieceID == "":
		return errors.New("piece id is required")
	case u.Filename == "":
		return errors.New("filename is required")
	case u.AssetType == "":
		return errors.New("asset type is required")
	}
	switch u.Status {
	case StatusPending, StatusUploaded, StatusFailed, StatusAborted:
		return nil
	}
	return fmt.Errorf("invalid upload status %q", u.Status)
}
