// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for database and session.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config.toml if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead of applying pending ones",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "session",
				Usage: "Save the browser session (cookie and CSRF token) from a copied cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for the session file (default: server.session_path)",
					},
				},
				Action: r.SetupSession,
			},
		},
	}
}

// tableCommand handles remote listing operations
func tableCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "table",
		Aliases: []string{"t"},
		Usage:   "Query configured remote tables",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List configured tables",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TableList,
			},
			{
				Name:  "page",
				Usage: "Fetch and print one page of a table",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "1-based page number",
						Value: 1,
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Search text",
					},
					&cli.StringSliceFlag{
						Name:  "sort",
						Usage: "Sort field as column[:asc|desc], repeatable",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Rows per page for this request (not saved)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: txt, csv, md or json",
						Value:   "txt",
					},
				},
				Action: r.TablePage,
			},
			{
				Name:      "limit",
				Usage:     "Show or save the page size of a table",
				ArgsUsage: "<name> [size]",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "size"},
				},
				Action: r.TableLimit,
			},
			{
				Name:  "export",
				Usage: "Fetch every page of a table and write it to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, md, txt or json (default: export.format)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: <name>.<format>)",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Search text",
					},
					&cli.StringSliceFlag{
						Name:  "sort",
						Usage: "Sort field as column[:asc|desc], repeatable",
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Stop after this many pages (0 for all)",
					},
				},
				Action: r.TableExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing a table interactively.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse a configured table in the terminal",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Action: r.TUI,
	}
}

// assetsCommand handles part asset operations for a piece
func assetsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "assets",
		Usage: "Upload and list part PDFs",
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload PDF files as part assets of a piece",
				ArgsUsage: "<file.pdf>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "piece",
						Usage:    "Piece ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Asset type: Clean or Bowing",
						Value: "Clean",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent uploads",
						Value: 3,
					},
				},
				Action: r.AssetsUpload,
			},
			{
				Name:  "list",
				Usage: "List part assets of a piece",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "piece",
						Usage:    "Piece ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Asset type: Clean or Bowing",
						Value: "Clean",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AssetsList,
			},
			{
				Name:  "log",
				Usage: "Show recorded uploads",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "piece",
						Usage: "Only uploads for this piece",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only uploads with this status",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 50,
					},
				},
				Action: r.AssetsLog,
			},
			{
				Name:  "assign",
				Usage: "Set the parts an asset covers (no --part clears them)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "piece",
						Usage:    "Piece ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "asset",
						Usage:    "Asset ID",
						Required: true,
					},
					&cli.IntSliceFlag{
						Name:  "part",
						Usage: "Part ID, repeatable",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AssetsAssign,
			},
			{
				Name:  "delete",
				Usage: "Delete an asset from a piece",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "piece",
						Usage:    "Piece ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "asset",
						Usage:    "Asset ID",
						Required: true,
					},
				},
				Action: r.AssetsDelete,
			},
		},
	}
}

// programCommand groups program checklist, assignment and piece commands
func programCommand(r *Runner) *cli.Command {
	programFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "program", Usage: "Program ID", Required: true}
	}
	pieceFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "piece", Usage: "Piece ID", Required: true}
	}
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
	}

	return &cli.Command{
		Name:  "program",
		Usage: "Update program checklists, part assignments and pieces",
		Commands: []*cli.Command{
			{
				Name:  "checklist",
				Usage: "Set checklist flags, e.g. --set bowings_completed=true",
				Flags: []cli.Flag{
					programFlag(),
					&cli.StringSliceFlag{
						Name:  "set",
						Usage: "Checklist field as key=value, repeatable",
					},
				},
				Action: r.ProgramChecklist,
			},
			{
				Name:  "assign",
				Usage: "Assign a musician to a part (--musician 0 clears it)",
				Flags: []cli.Flag{
					programFlag(),
					&cli.IntFlag{
						Name:     "part",
						Usage:    "Part ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "musician",
						Usage: "Musician ID",
					},
					jsonFlag(),
				},
				Action: r.ProgramAssign,
			},
			{
				Name:   "add-piece",
				Usage:  "Attach a piece to a program",
				Flags:  []cli.Flag{programFlag(), pieceFlag(), jsonFlag()},
				Action: r.ProgramPieces(false),
			},
			{
				Name:   "remove-piece",
				Usage:  "Detach a piece from a program",
				Flags:  []cli.Flag{programFlag(), pieceFlag(), jsonFlag()},
				Action: r.ProgramPieces(true),
			},
		},
	}
}

// fixtureCommand runs the local listing server
func fixtureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fixture",
		Usage: "Local listing server for trying tables without the backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve records from a JSON file with the listing contract",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "JSON file with an array of records or a {\"data\": [...]} body",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Host to bind (default: fixture.host)",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Port to bind (default: fixture.port)",
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "Listing path (default: fixture.path)",
					},
				},
				Action: r.FixtureServe,
			},
		},
	}
}
