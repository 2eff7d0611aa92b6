package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/parthero/internal/formatter"
	"github.com/desertthunder/parthero/internal/repositories"
	"github.com/desertthunder/parthero/internal/services"
	"github.com/desertthunder/parthero/internal/shared"
	"github.com/desertthunder/parthero/internal/table"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	registry   *table.Registry
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tableCommand, tuiCommand, assetsCommand, programCommand, fixtureCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// database opens the configured database on first use and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// Close releases the database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// store persists page sizes in the preferences table, falling back to memory when the database
// is unavailable.
func (r *Runner) store() table.Store {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("preferences unavailable, page size will not be saved", "error", err)
		return table.NewMemoryStore()
	}
	return repositories.NewPreferenceRepository(db)
}

// tables returns the registry every command registers its tables in.
func (r *Runner) tables() *table.Registry {
	if r.registry == nil {
		r.registry = table.NewRegistry(
			table.WithHTTPClient(r.httpClient),
			table.WithStore(r.store()),
			table.WithLogger(shared.WithLogger(r.logger, "component", "table")),
		)
	}
	return r.registry
}

// tableConfig converts the [tables.<name>] section into a [table.Config].
func (r *Runner) tableConfig(name string) (table.Config, error) {
	tc, err := r.config.Table(name)
	if err != nil {
		return table.Config{}, err
	}

	endpoint, err := r.config.EndpointURL(tc.Endpoint)
	if err != nil {
		return table.Config{}, err
	}

	formatters, err := formatter.ParseAll(tc.Formatters)
	if err != nil {
		return table.Config{}, fmt.Errorf("table %s: %w", name, err)
	}

	keyPrefix := tc.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = name
	}

	return table.Config{
		URL:       endpoint,
		KeyPrefix: keyPrefix,
		Limit:     tc.Limit,
		MultiSort: tc.MultiSort,
		Args: table.Args{
			Limit:  tc.Args.Limit,
			Offset: tc.Args.Offset,
			Search: tc.Args.Search,
			Sort:   tc.Args.Sort,
		},
		Messages: table.Messages{
			Loading: tc.Messages.Loading,
			Failed:  tc.Messages.Failed,
			Summary: tc.Messages.Summary,
		},
		Headers:    tc.Headers,
		Formatters: formatters,
		Columns:    tc.Columns,
		Noun:       tc.Noun,
	}, nil
}

// openTable registers the named table with start applied on Init.
func (r *Runner) openTable(name string, start table.Start) (*table.Table, error) {
	cfg, err := r.tableConfig(name)
	if err != nil {
		return nil, err
	}
	return r.tables().Register(name, cfg, table.WithStart(start)), nil
}

// client builds an API client from the saved browser session.
func (r *Runner) client() (*services.Client, error) {
	if r.config.Server.SessionPath == "" {
		return nil, fmt.Errorf("%w: server.session_path", shared.ErrMissingConfig)
	}
	session, err := shared.LoadSession(r.config.Server.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'parthero setup session' first)", err)
	}
	return services.NewClient(session, r.config.Server.BaseURL,
		services.WithHTTPClient(r.httpClient),
		services.WithLogger(r.logger),
	)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
