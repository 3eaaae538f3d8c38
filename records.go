package castsweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"castsweep/neynar"
)

// ErrNoRecords is returned by LatestRecordFile when no record file exists
// for the given FID.
var ErrNoRecords = errors.New("no record files found")

var recordHeader = []string{"fid", "username", "display_name", "unfollowed_at"}

// UnfollowRecord is one row of a record file: an account that was
// successfully unfollowed during some past run.
type UnfollowRecord struct {
	FID          int64
	Username     string
	DisplayName  string
	UnfollowedAt string
}

// RecordWriter appends unfollow records to a per-run CSV file. The file
// is created lazily on the first append, so a run that unfollows nothing
// (or a dry run, which never appends) leaves no file behind. Every row is
// flushed as it is written; a crash mid-run leaves all completed rows
// valid on disk.
type RecordWriter struct {
	path string
	f    *os.File
	w    *csv.Writer
}

func NewRecordWriter(dir string, fid int64, timestamp string) *RecordWriter {
	return &RecordWriter{
		path: filepath.Join(dir, fmt.Sprintf("unfollowed_users_%d_%s.csv", fid, timestamp)),
	}
}

func (rw *RecordWriter) Path() string {
	return rw.path
}

func (rw *RecordWriter) Append(u neynar.User) error {
	if rw.f == nil {
		if err := os.MkdirAll(filepath.Dir(rw.path), 0755); err != nil {
			return fmt.Errorf("failed to create record dir: %w", err)
		}

		_, statErr := os.Stat(rw.path)
		writeHeader := os.IsNotExist(statErr)

		f, err := os.OpenFile(rw.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open record file: %w", err)
		}
		rw.f = f
		rw.w = csv.NewWriter(f)

		if writeHeader {
			if err := rw.w.Write(recordHeader); err != nil {
				return fmt.Errorf("failed to write record header: %w", err)
			}
		}
	}

	row := []string{
		strconv.FormatInt(u.FID, 10),
		u.Username,
		u.DisplayName,
		time.Now().Format(time.RFC3339),
	}
	if err := rw.w.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	rw.w.Flush()
	return rw.w.Error()
}

func (rw *RecordWriter) Close() error {
	if rw.f == nil {
		return nil
	}
	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		rw.f.Close()
		return err
	}
	return rw.f.Close()
}

// LoadRecords parses a record file in full. A malformed row fails the
// whole load; replaying a half-parsed file would silently skip accounts.
func LoadRecords(path string) ([]UnfollowRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse record file %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("record file %s is empty", path)
	}
	if rows[0][0] != recordHeader[0] {
		return nil, fmt.Errorf("record file %s has unexpected header %q", path, rows[0])
	}

	var records []UnfollowRecord
	for i, row := range rows[1:] {
		fid, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("record file %s row %d has invalid fid %q", path, i+2, row[0])
		}
		records = append(records, UnfollowRecord{
			FID:          fid,
			Username:     row[1],
			DisplayName:  row[2],
			UnfollowedAt: row[3],
		})
	}

	return records, nil
}

// LatestRecordFile returns the most recently modified record file for the
// given FID, so a refollow without an explicit path picks up the newest
// unfollow run.
func LatestRecordFile(dir string, fid int64) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("unfollowed_users_%d_*.csv", fid)))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoRecords
	}

	var newest string
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = m
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", ErrNoRecords
	}

	return newest, nil
}
