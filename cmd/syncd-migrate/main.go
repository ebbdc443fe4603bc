package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cuemby/syncd/pkg/store"
)

var (
	dbPath     = flag.String("db-path", "./syncd.db", "syncd SQLite database path")
	dryRun     = flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	backupPath = flag.String("backup", "", "Path to back up the database before migration (default: <db-path>.backup)")
)

func main() {
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("syncd database migration tool")
	log.Println("==============================")

	_, statErr := os.Stat(*dbPath)
	exists := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		log.Fatalf("Failed to stat %s: %v", *dbPath, statErr)
	}

	log.Printf("Database: %s", *dbPath)
	log.Printf("Dry run: %v", *dryRun)

	if !exists {
		log.Println("No existing database found; a fresh one will be created")
	} else if !*dryRun {
		backupFile := *backupPath
		if backupFile == "" {
			backupFile = *dbPath + ".backup"
		}
		log.Printf("Creating backup: %s", backupFile)
		if err := copyFile(*dbPath, backupFile); err != nil {
			log.Fatalf("Failed to create backup: %v", err)
		}
		log.Println("Backup created successfully")
	}

	if *dryRun {
		log.Println("\n[DRY RUN] Would open the database and apply schema.sql idempotently.")
		log.Println("Run without --dry-run to perform the migration.")
		return
	}

	// store.Open applies schema.sql via CREATE TABLE/INDEX IF NOT EXISTS, so
	// opening is itself the migration step whether the file is fresh or
	// already exists.
	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	log.Println("\nMigration completed successfully.")
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return os.WriteFile(dst, input, 0o600)
}
