package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/employeedir/core/internal/adapters/export"
	"github.com/employeedir/core/internal/adapters/repository"
	"github.com/employeedir/core/internal/application/services"
	"github.com/employeedir/core/internal/domain/entities"
	"github.com/employeedir/core/internal/infrastructure/config"
	"github.com/employeedir/core/internal/infrastructure/database"
	"github.com/employeedir/core/internal/infrastructure/logger"
	"github.com/employeedir/core/internal/infrastructure/server"
	"github.com/employeedir/core/internal/ports"
)

// Version is overridden at build time with -ldflags
var Version = "1.0.0"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Employee Directory API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands for the postgres backend",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.OutOrStdout(), "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.OutOrStdout(), "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd.OutOrStdout())
		},
	})

	return migrateCmd
}

// NewEmployeeCommand creates the employee management command
func NewEmployeeCommand() *cobra.Command {
	employeeCmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employee records directly in the configured store",
	}

	employeeCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc ports.EmployeeService) error {
				employees, err := svc.ListAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(employees))
				return nil
			})
		},
	})

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := requestFromFlags(cmd)
			return withService(cmd.Context(), func(ctx context.Context, svc ports.EmployeeService) error {
				employee, err := svc.Create(ctx, req)
				if err != nil {
					return err
				}
				printEmployee(cmd.OutOrStdout(), "Employee created", employee)
				return nil
			})
		},
	}
	addEmployeeFlags(createCmd)
	employeeCmd.AddCommand(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an employee; an omitted title is cleared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req := requestFromFlags(cmd)
			return withService(cmd.Context(), func(ctx context.Context, svc ports.EmployeeService) error {
				employee, err := svc.Update(ctx, id, req)
				if err != nil {
					return err
				}
				printEmployee(cmd.OutOrStdout(), "Employee updated", employee)
				return nil
			})
		},
	}
	addEmployeeFlags(updateCmd)
	employeeCmd.AddCommand(updateCmd)

	employeeCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd.Context(), func(ctx context.Context, svc ports.EmployeeService) error {
				if err := svc.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Employee %d deleted\n", id)
				return nil
			})
		},
	})

	return employeeCmd
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all employees as json, yaml or xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if format == export.FormatXLSX && output == "-" {
				return fmt.Errorf("xlsx export needs --output <file>")
			}

			return withService(cmd.Context(), func(ctx context.Context, svc ports.EmployeeService) error {
				employees, err := svc.ListAll(ctx)
				if err != nil {
					return err
				}

				if output == "-" {
					return export.Write(cmd.OutOrStdout(), format, employees)
				}

				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := export.Write(f, format, employees); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d employees to %s\n", len(employees), output)
				return nil
			})
		},
	}

	exportCmd.Flags().String("format", "json", "Export format (json, yaml, xlsx)")
	exportCmd.Flags().StringP("output", "o", "-", "Output file, - for stdout")
	return exportCmd
}

// NewTokenCommand creates the token command used to mint write tokens
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage write tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for create, update and delete requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			token, expiresAt, err := services.NewAuthService(cfg.Auth).Issue(subject)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "Expires: %s\n", expiresAt.UTC().Format(time.RFC3339))
			if !cfg.Auth.Enabled {
				fmt.Fprintln(cmd.ErrOrStderr(), "Note: AUTH_ENABLED is false, the server does not check tokens")
			}
			return nil
		},
	}
	issueCmd.Flags().String("subject", "", "Who the token is issued to (required)")
	issueCmd.MarkFlagRequired("subject")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the Employee Directory version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Employee Directory v%s\n", Version)
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, closeStore, err := openStore(ctx, cfg, appLogger, repository.NewStoreMetrics(registry))
	if err != nil {
		appLogger.Errorw("Failed to open document store", "error", err)
		return err
	}
	defer closeStore()

	if err := store.EnsureInitialized(ctx); err != nil {
		appLogger.Errorw("Failed to initialize document store", "error", err)
		return err
	}

	if !cfg.Metrics.Enabled {
		registry = nil
	}

	srv, err := server.New(cfg, store, registry, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	appLogger.Infow("Starting Employee Directory API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"storage_backend", cfg.Storage.Backend,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Errorw("Server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}

// openStore builds the configured document store wrapped with logging and
// metrics. The returned func releases the store and any shared client.
func openStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, metrics *repository.StoreMetrics) (ports.DocumentStore, func(), error) {
	var conns repository.Connections
	release := func() {
		if conns.DB != nil {
			conns.DB.Close()
		}
		if conns.Redis != nil {
			conns.Redis.Close()
		}
	}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		conns.DB = db
	case config.BackendRedis:
		client, err := database.NewRedis(ctx, cfg.Redis, appLogger)
		if err != nil {
			return nil, nil, err
		}
		conns.Redis = client
	}

	store, err := repository.NewDocumentStore(cfg, conns)
	if err != nil {
		release()
		return nil, nil, err
	}

	instrumented := repository.NewInstrumentedStore(store, cfg.Storage.Backend, metrics, appLogger)
	closeFn := func() {
		instrumented.Close()
		release()
	}
	return instrumented, closeFn, nil
}

// withService runs fn against an EmployeeService over the configured store.
// CLI logs go to stderr so stdout stays clean for command output.
func withService(ctx context.Context, fn func(context.Context, ports.EmployeeService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Logger.Output != "file" {
		cfg.Logger.Output = "stderr"
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Sync()

	store, closeStore, err := openStore(ctx, cfg, appLogger, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(ctx, services.NewEmployeeService(store, appLogger))
}

func runMigration(out io.Writer, direction string) error {
	m, closeFn, err := newMigrator()
	if err != nil {
		return err
	}
	defer closeFn()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion(out io.Writer) error {
	m, closeFn, err := newMigrator()
	if err != nil {
		return err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(out, "Current migration version: %d\n", version)
	fmt.Fprintf(out, "Dirty: %t\n", dirty)
	return nil
}

func newMigrator() (*migrate.Migrate, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, func() { m.Close() }, nil
}

func addEmployeeFlags(cmd *cobra.Command) {
	cmd.Flags().String("first-name", "", "Employee first name (required)")
	cmd.Flags().String("last-name", "", "Employee last name (required)")
	cmd.Flags().String("title", "", "Employee title")
}

func requestFromFlags(cmd *cobra.Command) ports.EmployeeRequest {
	firstName, _ := cmd.Flags().GetString("first-name")
	lastName, _ := cmd.Flags().GetString("last-name")
	title, _ := cmd.Flags().GetString("title")
	return ports.EmployeeRequest{FirstName: firstName, LastName: lastName, Title: title}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, entities.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func printEmployee(out io.Writer, heading string, e *entities.Employee) {
	fmt.Fprintf(out, "%s:\n", heading)
	fmt.Fprintf(out, "  ID: %d\n", e.ID)
	fmt.Fprintf(out, "  Name: %s %s\n", e.FirstName, e.LastName)
	if e.Title != "" {
		fmt.Fprintf(out, "  Title: %s\n", e.Title)
	}
}

func renderTable(employees []entities.Employee) string {
	rows := make([][]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, []string{strconv.Itoa(e.ID), e.FirstName, e.LastName, e.Title})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "First", "Last", "Title").
		Rows(rows...)

	if len(employees) == 0 {
		return t.String() + "\nNo employees yet"
	}
	return t.String()
}
