package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/parthero/internal/models"
	"github.com/desertthunder/parthero/internal/repositories"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/tasks"
	"github.com/urfave/cli/v3"
)

// AssetsUpload uploads PDF files to a piece and records each outcome in the upload log.
func (r *Runner) AssetsUpload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one PDF file", shared.ErrMissingArgument)
	}

	assetType, err := models.ParseAssetType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: --type %v", shared.ErrInvalidFlag, err)
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	opts := tasks.UploadOpts{
		PieceID:    cmd.String("piece"),
		AssetType:  assetType,
		NumWorkers: cmd.Int("workers"),
	}
	if db, err := r.database(); err == nil {
		opts.Recorder = repositories.NewUploadRepository(db)
	} else {
		r.logger.Warn("upload log unavailable, outcomes will not be recorded", "error", err)
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📤 %s\n", update.Message)
		}
	}()

	result, err := tasks.UploadAll(ctx, client, progressCh, paths, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Upload Complete")
	r.writePlain("Piece: %s (%s)\n", opts.PieceID, assetType)
	r.writePlain("Uploaded: %d/%d\n", result.Succeeded, result.Total)

	if result.Failed > 0 {
		r.writePlainln("Failed (%d):", result.Failed)
		for _, res := range result.Results {
			if res.Err != nil {
				r.writePlain("  • %s [%s]: %v\n", res.Filename, res.Status, res.Err)
			}
		}
		return fmt.Errorf("%w: %d of %d files", shared.ErrUploadFailed, result.Failed, result.Total)
	}
	return nil
}

// AssetsList prints the part assets of a piece.
func (r *Runner) AssetsList(ctx context.Context, cmd *cli.Command) error {
	assetType, err := models.ParseAssetType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: --type %v", shared.ErrInvalidFlag, err)
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	list, err := client.ListPartAssets(ctx, cmd.String("piece"), assetType)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}

	if len(list.PartAssets) == 0 {
		return r.writePlain("No %s assets\n", assetType)
	}
	for _, asset := range list.PartAssets {
		parts := make([]string, 0, len(asset.Parts))
		for _, p := range asset.Parts {
			parts = append(parts, p.DisplayName)
		}
		r.writePlain("%-36s %-9s %s\n", asset.ID, asset.Status, asset.Filename)
		if len(parts) > 0 {
			r.writePlain("    parts: %v\n", parts)
		}
	}
	return nil
}

// AssetsLog prints recorded uploads, newest first.
func (r *Runner) AssetsLog(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if piece := cmd.String("piece"); piece != "" {
		criteria["piece_id"] = piece
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	records, err := repositories.NewUploadRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return r.writePlain("No uploads recorded\n")
	}
	for _, rec := range records {
		r.writePlain("%4d  %s  piece %-6s %-8s %-9s %s\n",
			rec.Sequence, rec.CreatedAt().Format("2006-01-02 15:04"), rec.PieceID, rec.AssetType, rec.Status, rec.Filename)
		if rec.Error != "" {
			r.writePlain("      %s\n", rec.Error)
		}
	}
	return nil
}

// AssetsAssign replaces the parts an asset covers.
func (r *Runner) AssetsAssign(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	asset, err := client.AssignParts(ctx, cmd.String("piece"), cmd.String("asset"), cmd.IntSlice("part"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(asset, true)
	}
	if len(asset.Parts) == 0 {
		return r.writePlain("%s covers no parts\n", asset.ID)
	}
	names := make([]string, 0, len(asset.Parts))
	for _, p := range asset.Parts {
		names = append(names, p.DisplayName)
	}
	return r.writePlain("%s covers %s\n", asset.ID, strings.Join(names, ", "))
}

// AssetsDelete removes an asset from a piece.
func (r *Runner) AssetsDelete(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	assetID := cmd.String("asset")
	if err := client.DeletePartAsset(ctx, cmd.String("piece"), assetID); err != nil {
		return err
	}
	return r.writePlain("Deleted asset %s\n", assetID)
}
