package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/marshallshelly/cultivar/cmd/cultivar/output"
	"github.com/marshallshelly/cultivar/cmd/cultivar/tui"
	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/pkg/migration"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/spf13/cobra"
)

var (
	interactive bool
	dryRun      bool
	downSQL     bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or drop the database schema",
	Long: `Create or drop the tables behind growers, strains, batches and terpenes.

The schema is derived from the models and tracked in schema_migrations, so
applying it twice is a no-op.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context(), tui.Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop the schema and every row in it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context(), tui.Down)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the schema is applied and how the database differs from the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

var migrateSQLCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the schema SQL without connecting",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := planSchema()
		if err != nil {
			return err
		}
		script := m.UpSQL()
		if downSQL {
			script = m.DownSQL()
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), script)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateSQLCmd)

	for _, c := range []*cobra.Command{migrateUpCmd, migrateDownCmd} {
		c.Flags().BoolVarP(&interactive, "interactive", "i", false, "Preview and confirm in an interactive UI")
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Print the statements without running them")
	}
	migrateSQLCmd.Flags().BoolVar(&downSQL, "down", false, "Print the statements that drop the schema")
}

func planSchema() (migration.Migration, error) {
	tables, err := models.Tables()
	if err != nil {
		return migration.Migration{}, err
	}
	return migration.NewPlanner().Plan(tables)
}

// applySchema creates the schema if it has not been applied yet.
func applySchema(ctx context.Context, db *runtime.DB) error {
	m, err := planSchema()
	if err != nil {
		return err
	}
	executor := migration.NewExecutor(db.Pool())
	if err := executor.Initialize(ctx); err != nil {
		return err
	}
	if _, err := executor.Apply(ctx, m); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func runMigrate(ctx context.Context, direction tui.Direction) error {
	m, err := planSchema()
	if err != nil {
		return err
	}

	stmts := m.Up
	if direction == tui.Down {
		stmts = m.Down
	}
	if dryRun {
		output.Section(fmt.Sprintf("DRY RUN - migrate %s %s", direction, m.Version))
		output.SQL(stmts)
		return nil
	}

	cfg, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	executor := migration.NewExecutor(db.Pool())
	if err := executor.Initialize(ctx); err != nil {
		return err
	}

	if interactive {
		final, err := tui.Run(ctx, executor, m, direction)
		if err != nil {
			return err
		}
		return final.Err()
	}

	var changed bool
	if direction == tui.Up {
		output.Section("Applying Schema")
		output.Info("Applying %s - %s...", m.Version, m.Name)
		changed, err = executor.Apply(ctx, m)
	} else {
		output.Section("Dropping Schema")
		output.Warning("Rolling back %s - %s...", m.Version, m.Name)
		changed, err = executor.Rollback(ctx, m)
	}
	if err != nil {
		output.Error("Migration %s failed: %v", m.Version, err)
		return err
	}

	switch {
	case changed:
		output.Success("Migrated %s %s", direction, m.Version)
	case direction == tui.Up:
		output.Muted("Schema already applied, nothing to do")
	default:
		output.Muted("Schema not applied, nothing to roll back")
	}
	return nil
}

type schemaStatus struct {
	Migration migration.MigrationRecord `json:"migration"`
	Stale     bool                      `json:"stale"`
	Drift     []migration.Drift         `json:"drift"`
}

func runMigrateStatus(ctx context.Context) error {
	m, err := planSchema()
	if err != nil {
		return err
	}
	tables, err := models.Tables()
	if err != nil {
		return err
	}

	cfg, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	executor := migration.NewExecutor(db.Pool())
	if err := executor.Initialize(ctx); err != nil {
		return err
	}
	record, err := executor.Status(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	drift, err := migration.NewIntrospector(db.Pool()).Drift(ctx, tables)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}

	status := schemaStatus{Migration: record, Stale: record.Stale(m), Drift: drift}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t----------")
	appliedAt := "N/A"
	if record.AppliedAt != nil {
		appliedAt = record.AppliedAt.Format("2006-01-02 15:04:05")
	}
	label := string(record.Status)
	if status.Stale {
		label = "stale"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n", record.Version, record.Name, output.StatusIcon(label), label, appliedAt)
	_ = w.Flush()

	if record.Error != nil {
		output.Error("Last attempt failed: %s", *record.Error)
	}
	if status.Stale {
		output.Warning("Applied from different statements than the current models")
	}

	if len(drift) == 0 {
		fmt.Println()
		output.Success("Database matches the models")
		return nil
	}
	output.Section("Drift")
	for _, d := range drift {
		output.Warning("%s", d)
	}
	return nil
}
