// Command backfill assigns contract numbers to rentals that predate the
// allocator. It runs against the same database as the API and can be executed
// repeatedly; rentals already covered by the ledger are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/config"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	var (
		orgID   = flag.Uint("organization", 0, "restrict the run to a single organization id (0 means all active renters)")
		actorID = flag.Uint("actor", 0, "back-office user id recorded on ledger rows (0 means system)")
		dryRun  = flag.Bool("dry-run", false, "compute and log assignments without writing")
	)
	flag.Parse()

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	logger := log.New(os.Stdout, "backfill ", log.LstdFlags|log.LUTC)

	flow := businessflow.NewNumberBackfillFlow(
		repository.NewOrganizationRepository(db),
		repository.NewRentalRepository(db),
		repository.NewSequenceLedgerRepository(db),
		db,
		logger,
	)

	opts := businessflow.BackfillOptions{DryRun: *dryRun || cfg.Backfill.DryRunDefault}
	if *orgID != 0 {
		id := *orgID
		opts.OrganizationID = &id
	}
	if *actorID != 0 {
		id := *actorID
		opts.ActorID = &id
	}

	report, err := flow.Run(context.Background(), opts)
	if err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	for _, org := range report.Organizations {
		logger.Printf("organization=%d scanned=%d assigned=%d skipped_ledger=%d first=%d last=%d",
			org.OrganizationID, org.Scanned, org.Assigned, org.SkippedLedger, org.FirstNumber, org.LastNumber)
	}
	if report.DryRun {
		logger.Println("dry run, no rows were written")
	}
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
