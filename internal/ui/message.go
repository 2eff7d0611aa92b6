package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/parthero/internal/table"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFetched MsgKind = iota
)

// fetchedMsg is the constructor for [MsgFetched]. meta is the table state once the operation returned.
func fetchedMsg(meta table.Meta) Msg {
	return Msg{kind: MsgFetched, data: meta}
}
