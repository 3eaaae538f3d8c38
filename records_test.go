package castsweep

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"castsweep/neynar"
)

func TestRecordWriterAppendsImmediately(t *testing.T) {
	dir := t.TempDir()
	rw := NewRecordWriter(dir, 42, "20260831_120000")

	users := testUsers(2)
	for _, u := range users {
		if err := rw.Append(u); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// Read back before Close: rows must already be durable on disk, as
	// they would be after a crash mid-run.
	records, err := LoadRecords(rw.Path())
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records before close, got %d", len(records))
	}
	if records[0].FID != 1 || records[0].Username != "user1" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].UnfollowedAt == "" {
		t.Error("expected unfollowed_at to be set")
	}
	if _, err := time.Parse(time.RFC3339, records[1].UnfollowedAt); err != nil {
		t.Errorf("unfollowed_at is not rfc3339: %v", err)
	}

	if err := rw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecordWriterNoFileWithoutAppends(t *testing.T) {
	dir := t.TempDir()
	rw := NewRecordWriter(dir, 42, "20260831_120000")

	if err := rw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := os.Stat(rw.Path()); !os.IsNotExist(err) {
		t.Fatal("expected no record file when nothing was appended")
	}
}

func TestLoadRecordsMalformedRowFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unfollowed_users_42_20260831_120000.csv")

	content := strings.Join([]string{
		"fid,username,display_name,unfollowed_at",
		"1,user1,User 1,2026-08-31T12:00:00Z",
		"not-a-number,user2,User 2,2026-08-31T12:00:01Z",
		"3,user3,User 3,2026-08-31T12:00:02Z",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadRecords(path)
	if err == nil {
		t.Fatal("expected error for malformed fid")
	}
	if records != nil {
		t.Fatalf("expected no partial load, got %d records", len(records))
	}
}

func TestLoadRecordsMissingFile(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLatestRecordFile(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "unfollowed_users_42_20260830_090000.csv")
	newer := filepath.Join(dir, "unfollowed_users_42_20260831_090000.csv")
	otherFID := filepath.Join(dir, "unfollowed_users_7_20260831_100000.csv")

	for _, p := range []string{older, newer, otherFID} {
		if err := os.WriteFile(p, []byte("fid,username,display_name,unfollowed_at\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	if err := os.Chtimes(older, now.Add(-2*time.Hour), now.Add(-2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(newer, now, now); err != nil {
		t.Fatal(err)
	}

	got, err := LatestRecordFile(dir, 42)
	if err != nil {
		t.Fatalf("latest record file: %v", err)
	}
	if got != newer {
		t.Fatalf("expected %s, got %s", newer, got)
	}
}

func TestLatestRecordFileAbsent(t *testing.T) {
	_, err := LatestRecordFile(t.TempDir(), 42)
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestRecordRoundTripPreservesFields(t *testing.T) {
	dir := t.TempDir()
	rw := NewRecordWriter(dir, 42, "20260831_120000")

	u := neynar.User{FID: 9, Username: "name,with comma", DisplayName: `quoted "name"`}
	if err := rw.Append(u); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := LoadRecords(rw.Path())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Username != u.Username || records[0].DisplayName != u.DisplayName {
		t.Fatalf("fields not preserved: %+v", records[0])
	}
}
