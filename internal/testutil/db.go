package testutil

import (
	"strings"
	"testing"

	"github.com/andrewpaige1/flashcards-api/config"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the schema
// applied. Each test gets its own database, named after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := config.Open("sqlite", "file:"+name+"?mode=memory&cache=shared", gormlogger.Discard)
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})
	return gdb
}
