package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
	"github.com/desertthunder/parthero/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal browser for a configured table.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	name, err := requireName(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/parthero-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	t, err := r.openTable(name, table.Start{})
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, name, t)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
