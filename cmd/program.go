package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/parthero/internal/formatter"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/urfave/cli/v3"
)

// parseChecklist turns key=value pairs into checklist fields. Boolean values are sent as booleans.
func parseChecklist(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: --set %q, expected key=value", shared.ErrInvalidFlag, pair)
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			fields[key] = b
		} else {
			fields[key] = value
		}
	}
	return fields, nil
}

// ProgramChecklist updates checklist flags of a program.
func (r *Runner) ProgramChecklist(ctx context.Context, cmd *cli.Command) error {
	fields, err := parseChecklist(cmd.StringSlice("set"))
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: at least one --set key=value", shared.ErrMissingArgument)
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	program := cmd.String("program")
	if err := client.PatchChecklist(ctx, program, fields); err != nil {
		return err
	}
	return r.writePlain("Checklist of program %s updated (%d fields)\n", program, len(fields))
}

// ProgramAssign assigns a musician to a part, or clears the part with --musician 0.
func (r *Runner) ProgramAssign(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	part, musician := cmd.Int("part"), cmd.Int("musician")
	status, err := client.AssignMusician(ctx, cmd.String("program"), part, musician)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}
	if musician > 0 {
		return r.writePlain("Part %d assigned to musician %d\n", part, musician)
	}
	return r.writePlain("Part %d unassigned\n", part)
}

// ProgramPieces attaches or detaches a piece and prints the program's pieces.
func (r *Runner) ProgramPieces(remove bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		client, err := r.client()
		if err != nil {
			return err
		}

		program, piece := cmd.String("program"), cmd.String("piece")
		var pieces []map[string]any
		if remove {
			pieces, err = client.RemoveProgramPiece(ctx, program, piece)
		} else {
			pieces, err = client.AddProgramPiece(ctx, program, piece)
		}
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(pieces, true)
		}
		r.writePlainHeader(fmt.Sprintf("Program %s pieces", program))
		if len(pieces) == 0 {
			return r.writePlain("No pieces\n")
		}
		for _, p := range pieces {
			r.writePlain("%-6s %s\n", formatter.Display(p["id"]), formatter.Display(p["title"]))
		}
		return nil
	}
}
