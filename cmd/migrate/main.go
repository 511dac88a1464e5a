package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"watercare/internal/config"
	"watercare/internal/repository"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func main() {
	// Load .env file (ignore error if not present)
	_ = godotenv.Load()

	command := "help"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up", "down", "status", "reset":
	default:
		printUsage()
		if command != "help" {
			os.Exit(1)
		}
		os.Exit(0)
	}

	printInfo("=== Watercare Migration Runner ===\n")

	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load configuration", err)
	}
	if !cfg.HasDatabase() {
		fail("Dispatch log database is not configured", fmt.Errorf("POSTGRES_PASSWORD is empty"))
	}

	migrations, err := loadMigrations(repository.Migrations, "migrations")
	if err != nil {
		fail("Failed to load migrations", err)
	}

	printInfo("Connecting to database...")
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		fail("Failed to open database connection", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fail("Failed to ping database", err)
	}
	printSuccess("✓ Connected to database\n")

	if err := createMigrationTable(db); err != nil {
		fail("Failed to create migration table", err)
	}

	switch command {
	case "up":
		err = runUp(db, migrations)
	case "down":
		err = runDown(db, migrations)
	case "status":
		err = showStatus(db, migrations)
	case "reset":
		err = runReset(db, migrations)
	}
	if err != nil {
		fail(fmt.Sprintf("%s failed", command), err)
	}

	printInfo("\nOperation completed successfully")
}

// runUp applies all pending migrations
func runUp(db *sql.DB, migrations []Migration) error {
	printInfo("Running pending migrations...\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	pending := pendingMigrations(migrations, applied)
	if len(pending) == 0 {
		printSuccess("✓ All migrations are up to date")
		return nil
	}

	for _, m := range pending {
		printInfo(fmt.Sprintf("Applying migration %03d_%s...", m.Version, m.Name))
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %03d_%s: %w", m.Version, m.Name, err)
		}
		printSuccess(fmt.Sprintf("  ✓ Migration %03d applied", m.Version))
	}

	printSuccess(fmt.Sprintf("\n✓ Successfully applied %d migration(s)", len(pending)))
	return nil
}

// runDown rolls back the last applied migration
func runDown(db *sql.DB, migrations []Migration) error {
	printInfo("Rolling back last migration...\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	last, ok := latestApplied(migrations, applied)
	if !ok {
		printWarning("No migrations to rollback")
		return nil
	}

	if err := revertMigration(db, last); err != nil {
		return fmt.Errorf("failed to rollback migration %03d_%s: %w", last.Version, last.Name, err)
	}

	printSuccess(fmt.Sprintf("✓ Rolled back migration %03d_%s", last.Version, last.Name))
	return nil
}

// runReset rolls back every applied migration and reapplies them all
func runReset(db *sql.DB, migrations []Migration) error {
	printWarning("Resetting database (rollback all + reapply all)...\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if _, ok := applied[m.Version]; !ok {
			continue
		}
		if err := revertMigration(db, m); err != nil {
			return fmt.Errorf("failed to rollback migration %03d_%s: %w", m.Version, m.Name, err)
		}
		printSuccess(fmt.Sprintf("  ✓ Migration %03d rolled back", m.Version))
	}

	return runUp(db, migrations)
}

// showStatus prints every known migration with its applied state
func showStatus(db *sql.DB, migrations []Migration) error {
	printInfo("Migration Status:\n")

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	fmt.Printf("%s%-10s %-40s %-12s %-20s%s\n",
		colorBold, "VERSION", "NAME", "STATUS", "APPLIED AT", colorReset)
	fmt.Println(strings.Repeat("-", 85))

	appliedCount := 0
	for _, m := range migrations {
		status, statusColor, appliedAt := "pending", colorYellow, "-"
		if a, ok := applied[m.Version]; ok {
			appliedCount++
			status, statusColor = "applied", colorGreen
			if a.AppliedAt != nil {
				appliedAt = a.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}

		fmt.Printf("%-10s %-40s %s%-12s%s %-20s\n",
			fmt.Sprintf("%03d", m.Version), m.Name, statusColor, status, colorReset, appliedAt)
	}

	fmt.Println(strings.Repeat("-", 85))
	printInfo(fmt.Sprintf("\nSummary: %d/%d migrations applied", appliedCount, len(migrations)))
	return nil
}

func fail(msg string, err error) {
	printError(fmt.Sprintf("%s: %v", msg, err))
	os.Exit(1)
}

func printSuccess(msg string) {
	fmt.Printf("%s%s%s\n", colorGreen, msg, colorReset)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorRed, msg, colorReset)
}

func printInfo(msg string) {
	fmt.Printf("%s%s%s\n", colorCyan, msg, colorReset)
}

func printWarning(msg string) {
	fmt.Printf("%s%s%s\n", colorYellow, msg, colorReset)
}

func printUsage() {
	printInfo("=== Watercare Migration Runner ===\n")
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("\nCommands:")
	fmt.Println("  up       - Apply all pending migrations")
	fmt.Println("  down     - Rollback the last applied migration")
	fmt.Println("  status   - Show current migration status")
	fmt.Println("  reset    - Rollback all migrations and reapply them")
	fmt.Println("  help     - Show this help message")
	fmt.Println("\nNotes:")
	fmt.Println("  - Migrations are embedded from internal/repository/migrations")
	fmt.Println("  - Applied versions are tracked in the 'schema_migrations' table")
	fmt.Println("  - Each migration runs in a transaction")
}
