package main

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestCreateMigrationFiles(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	upPath, downPath, err := create("add_quiz_tags", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(upPath, "20260304050607_add_quiz_tags.up.sql") || !strings.HasSuffix(downPath, "20260304050607_add_quiz_tags.down.sql") {
		t.Fatalf("unexpected paths %s %s", upPath, downPath)
	}
	for _, path := range []string{upPath, downPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
	if _, _, err := create("add_quiz_tags", now); err == nil {
		t.Fatalf("expected existing migration to be refused")
	}
	if _, _, err := create("has space", now); err == nil {
		t.Fatalf("expected name with spaces to be refused")
	}
}
