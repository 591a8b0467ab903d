package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BackupDatabase writes a SQL dump of the chat schema via mysqldump when it
// is installed. Connection settings come from the same DB_* env vars Connect
// reads; DB_BACKUP_FLAGS may append extra mysqldump flags.
func BackupDatabase(outPath string) error {
	if _, err := exec.LookPath("mysqldump"); err != nil {
		return fmt.Errorf("mysqldump not found in PATH: %w", err)
	}

	args := []string{
		"-h", getenv("DB_HOST", "127.0.0.1"),
		"-P", getenv("DB_PORT", "3306"),
		"-u", getenv("DB_USER", "root"),
	}
	if pass := os.Getenv("DB_PASS"); pass != "" {
		args = append(args, "-p"+pass)
	}
	if extra := os.Getenv("DB_BACKUP_FLAGS"); extra != "" {
		args = append(args, strings.Fields(extra)...)
	}
	args = append(args, getenv("DB_NAME", "chatboard"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, "mysqldump", args...)

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	cmd.Stdout = outFile
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysqldump failed: %w", err)
	}
	return nil
}

// RunMigrationsWithBackup auto-migrates the given models inside a
// transaction. When DB_BACKUP_PATH is set a dump is taken first, so a bad
// schema change on a development database can be restored by hand. The
// backup is best-effort: a failed dump logs and does not block migration.
func RunMigrationsWithBackup(db *gorm.DB, models ...interface{}) error {
	if backupPath := os.Getenv("DB_BACKUP_PATH"); backupPath != "" {
		log.Printf("[database] dumping schema to %s before migration", backupPath)
		if err := BackupDatabase(backupPath); err != nil {
			log.Printf("[database] pre-migration backup skipped: %v", err)
		}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.AutoMigrate(models...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
