// Package ui implements an interactive terminal browser for a remote paged table using bubbletea's Elm architecture.
//
// The [Model] renders the current page of a table.Table in a bubbles table, with a status line from the table's
// meta and a "Page P of N" line beneath it. Every navigation key runs the matching table operation in a
// [tea.Cmd]; the table applies responses in request order, so a slow page that finishes after a newer one
// is dropped and the grid always shows the latest request.
//
// Keys: n/→ and p/← page, g/G first and last, +/- change the page size by 5 (persisted), / opens the search
// input, tab selects a column and s toggles its sort, r refetches, q quits. Help is displayed via
// charmbracelet/bubbles/help.
package ui
