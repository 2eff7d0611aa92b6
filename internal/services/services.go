package services

import (
	"context"

	"github.com/desertthunder/parthero/internal/models"
)

// PartAssetService defines the part asset endpoints of the orchestra API.
type PartAssetService interface {
	// CreatePartAsset registers a new file for a piece and returns it with its upload URL.
	CreatePartAsset(ctx context.Context, pieceID, filename string, assetType models.AssetType) (*models.PartAsset, error)

	// UpdatePartAsset reports an upload status, keeping the asset's part assignments.
	UpdatePartAsset(ctx context.Context, pieceID string, asset *models.PartAsset, status models.AssetStatus) error

	// AssignParts replaces the parts an asset covers.
	AssignParts(ctx context.Context, pieceID, assetID string, partIDs []int) (*models.PartAsset, error)

	// ListPartAssets lists the assets of one type attached to a piece.
	ListPartAssets(ctx context.Context, pieceID string, assetType models.AssetType) (*models.PartAssetList, error)

	// DeletePartAsset removes an asset.
	DeletePartAsset(ctx context.Context, pieceID, assetID string) error
}

// ProgramService defines the program endpoints used from the command line.
type ProgramService interface {
	// PatchChecklist updates checklist flags of a program, e.g. {"bowings_completed": true}.
	PatchChecklist(ctx context.Context, programID string, fields map[string]any) error

	// AssignMusician sets the musician playing a part. A zero musicianID clears the assignment.
	// The API answers with the program's assignment status.
	AssignMusician(ctx context.Context, programID string, partID, musicianID int) (map[string]any, error)

	// AddProgramPiece attaches a piece to a program and returns the program's pieces.
	AddProgramPiece(ctx context.Context, programID, pieceID string) ([]map[string]any, error)

	// RemoveProgramPiece detaches a piece and returns the remaining pieces.
	RemoveProgramPiece(ctx context.Context, programID, pieceID string) ([]map[string]any, error)
}
