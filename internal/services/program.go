package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/parthero/internal/shared"
)

func (c *Client) PatchChecklist(ctx context.Context, programID string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no checklist fields", shared.ErrInvalidInput)
	}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/programs/%s/checklist", programID), fields, nil)
}

func (c *Client) AssignMusician(ctx context.Context, programID string, partID, musicianID int) (map[string]any, error) {
	if partID <= 0 {
		return nil, fmt.Errorf("%w: part id must be positive", shared.ErrInvalidInput)
	}

	body := map[string]any{"musician_id": nil}
	if musicianID > 0 {
		body["musician_id"] = musicianID
	}

	status := map[string]any{}
	path := fmt.Sprintf("/api/programs/%s/assignments/part/%d", programID, partID)
	if err := c.do(ctx, http.MethodPatch, path, body, &status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Client) AddProgramPiece(ctx context.Context, programID, pieceID string) ([]map[string]any, error) {
	return c.programPieces(ctx, http.MethodPut, programID, pieceID)
}

func (c *Client) RemoveProgramPiece(ctx context.Context, programID, pieceID string) ([]map[string]any, error) {
	return c.programPieces(ctx, http.MethodDelete, programID, pieceID)
}

func (c *Client) programPieces(ctx context.Context, method, programID, pieceID string) ([]map[string]any, error) {
	if pieceID == "" {
		return nil, fmt.Errorf("%w: piece id is required", shared.ErrInvalidInput)
	}

	pieces := []map[string]any{}
	if err := c.do(ctx, method, fmt.Sprintf("/api/programs/%s/pieces/%s", programID, pieceID), nil, &pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}
