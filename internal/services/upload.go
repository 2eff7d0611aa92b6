package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/shared"
)

const pdfMIME = "application/pdf"

// UploadResult is the outcome of [Client.Upload]. Asset is nil when the asset could not be created.
type UploadResult struct {
	Asset  *models.PartAsset
	Status models.AssetStatus
}

// DetectPDF checks that data is a PDF and returns the detected MIME type.
func DetectPDF(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !mt.Is(pdfMIME) {
		return mt.String(), fmt.Errorf("%w: got %s, only PDF files are allowed", shared.ErrUnsupportedFile, mt.String())
	}
	return mt.String(), nil
}

// Upload attaches a PDF to a piece.
//
// The final status is reported even when ctx is cancelled during the transfer. A failure to report
// it is returned alongside the upload outcome.
func (c *Client) Upload(ctx context.Context, pieceID string, assetType models.AssetType, filename string, data []byte) (*UploadResult, error) {
	if _, err := DetectPDF(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	asset, err := c.CreatePartAsset(ctx, pieceID, filename, assetType)
	if err != nil {
		return nil, fmt.Errorf("could not create part asset for %s: %w", filename, err)
	}

	logger := c.logger.With("piece", pieceID, "asset", asset.ID, "file", filename)
	result := &UploadResult{Asset: asset}

	var uploadErr error
	resp, err := c.upload.R().
		SetContext(ctx).
		SetHeader("Content-Type", pdfMIME).
		SetBody(data).
		Put(asset.UploadURL)
	switch {
	case err != nil:
		result.Status = models.StatusAborted
		uploadErr = fmt.Errorf("%w: %s: %v", shared.ErrUploadAborted, filename, err)
	case resp.IsError() || resp.StatusCode() >= 300:
		result.Status = models.StatusFailed
		uploadErr = fmt.Errorf("%w: %s: upload returned %d", shared.ErrUploadFailed, filename, resp.StatusCode())
	default:
		result.Status = models.StatusUploaded
	}

	if uploadErr != nil {
		logger.Error("upload did not complete", "status", result.Status, "error", uploadErr)
	} else {
		logger.Info("uploaded", "bytes", len(data))
	}

	var reportErr error
	if err := c.UpdatePartAsset(context.WithoutCancel(ctx), pieceID, asset, result.Status); err != nil {
		logger.Warn("could not report upload status", "status", result.Status, "error", err)
		reportErr = fmt.Errorf("failed to report %s status: %w", result.Status, err)
	}

	return result, errors.Join(uploadErr, reportErr)
}

// UploadFile reads path and uploads it with its base name.
func (c *Client) UploadFile(ctx context.Context, pieceID string, assetType models.AssetType, path string) (*UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c.Upload(ctx, pieceID, assetType, filepath.Base(path), data)
}
