package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"watercare/internal/config"
	"watercare/internal/models"
	"watercare/internal/repository"
	"watercare/internal/service"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Command-line flags
var (
	recordsCount = flag.Int("records", 12, "Number of water tests to create")
	dryRun       = flag.Bool("dry-run", false, "Validate and print the records without posting them")
	showHelp     = flag.Bool("help", false, "Show usage information")
)

func main() {
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	// Load .env file (ignore error if not present)
	_ = godotenv.Load()

	printInfo("=== Watercare Seeder ===\n")

	cfg, err := config.Load()
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}

	client, err := repository.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		printError(fmt.Sprintf("Failed to create API client: %v", err))
		os.Exit(1)
	}
	repo := repository.NewWaterTestRepository(client)

	// Only Build is used, so no store or dispatcher is wired
	intake := service.NewIntakeService(repo, nil, nil, zerolog.Nop())

	if !*dryRun {
		printInfo(fmt.Sprintf("Checking %s...", cfg.API.BaseURL))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		err := repo.Ping(ctx)
		cancel()
		if err != nil {
			printError(fmt.Sprintf("Remote API unreachable: %v", err))
			os.Exit(1)
		}
		printSuccess("✓ Remote API reachable\n")
	}

	created, err := seedRecords(context.Background(), intake, repo, sampleDrafts(*recordsCount, time.Now().In(cfg.Location())), *dryRun)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed water tests: %v", err))
		os.Exit(1)
	}

	printInfo("\n=== Seeding Summary ===")
	if *dryRun {
		printWarning(fmt.Sprintf("Dry run: %d water tests validated, nothing posted", created))
	} else {
		printSuccess(fmt.Sprintf("✓ Water tests created: %d", created))
	}
	printInfo("\nSeeding completed successfully!")
}

// seedRecords builds each draft into a record and posts it unless dryRun is set
func seedRecords(ctx context.Context, intake *service.IntakeService, repo repository.WaterTestRepository, drafts []models.EntryDraft, dryRun bool) (int, error) {
	printInfo(fmt.Sprintf("Seeding %d water tests...", len(drafts)))

	created := 0
	for _, draft := range drafts {
		record, err := intake.Build(draft)
		if err != nil {
			return created, fmt.Errorf("invalid sample %q: %w", draft.CustomerName, err)
		}

		if dryRun {
			fmt.Printf("  %s %-20s %-12s filter=%t\n", record.Mobile, record.CustomerName, record.Place, record.FilterInstalled)
			created++
			continue
		}

		if _, err := repo.Create(ctx, record); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", record.Mobile, err)
		}
		created++
	}

	return created, nil
}

// sampleDrafts generates varied intake drafts. Every third customer has a filter installed.
func sampleDrafts(count int, today time.Time) []models.EntryDraft {
	names := []string{"Arun Kumar", "Priya Nair", "Suresh Babu", "Lakshmi Menon", "Rahul Das", "Anitha Joseph", "Vijay Pillai", "Deepa Thomas", "Manoj Varma", "Sneha Iyer"}
	places := []string{"Kochi", "Thrissur", "Kozhikode", "Kottayam", "Palakkad", "Alappuzha", "Kollam", "Kannur"}
	remarks := []string{"", "Yellow stains on tiles", "Smell after rain", "", "Hard water, scaling in kettle"}

	drafts := make([]models.EntryDraft, 0, count)
	for i := 0; i < count; i++ {
		draft := models.EntryDraft{
			CustomerName: names[i%len(names)],
			Mobile:       fmt.Sprintf("98470%05d", i+1),
			Place:        places[i%len(places)],
			WaterSource:  models.WaterSources[i%len(models.WaterSources)],
			TDS:          fmt.Sprintf("%d", 120+(i*37)%600),
			IronPPM:      fmt.Sprintf("%.1f", float64((i*3)%25)/10),
			PipelineType: models.PipelineTypePVC,
			Remarks:      remarks[i%len(remarks)],
		}
		if i%2 == 1 {
			draft.PipelineType = models.PipelineTypeUPVC
		}
		if i%3 == 0 {
			draft.FilterInstalled = true
			draft.InstallationDate = today.AddDate(0, 0, -i).Format(models.DateLayout)
		}
		drafts = append(drafts, draft)
	}
	return drafts
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
	printInfo("=== Watercare Seeder ===\n")
	fmt.Println("Usage: go run ./cmd/seed [flags]")
	fmt.Println("\nFlags:")
	fmt.Println("  -records N   Number of water tests to create (default 12)")
	fmt.Println("  -dry-run     Validate and print the records without posting them")
	fmt.Println("  -help        Show this help message")
	fmt.Println("\nRecords are posted to API_URL/watertests without sending notifications.")
}
