package store

import (
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)

	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	entries := []Download{
		{PostID: "1", Author: "a", Kind: "video", URL: "https://v/1.mp4", Filename: "a_1.mp4", Status: StatusSaved, CreatedAt: base},
		{PostID: "2", Author: "b", Kind: "image", URL: "https://i/2.jpg", Filename: "b_2.jpg", Status: StatusFailed, Error: "server returned 404 Not Found", CreatedAt: base.Add(time.Minute)},
		{PostID: "3", Author: "c", Kind: "blob_video", URL: "https://v/3.mp4", Filename: "c_3.mp4", Status: StatusSaved, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		if err := s.Record(&entries[i]); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if entries[i].ID == 0 {
			t.Error("Record did not set ID")
		}
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	// Newest first.
	if got[0].PostID != "3" || got[1].PostID != "2" || got[2].PostID != "1" {
		t.Errorf("order = %s, %s, %s", got[0].PostID, got[1].PostID, got[2].PostID)
	}
	if got[1].Status != StatusFailed || got[1].Error == "" {
		t.Errorf("failed row = %+v", got[1])
	}
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 5; i++ {
		d := Download{
			PostID:    "p",
			URL:       "https://v/x.mp4",
			Filename:  "x.mp4",
			Status:    StatusSaved,
			CreatedAt: time.Date(2024, 1, 15, 12, i, 0, 0, time.UTC),
		}
		if err := s.Record(&d); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d rows, want 2", len(got))
	}
}

func TestRecordFillsCreatedAt(t *testing.T) {
	s := testStore(t)

	d := Download{PostID: "1", URL: "https://v/1.mp4", Filename: "f.mp4", Status: StatusSaved}
	if err := s.Record(&d); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if d.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
}

func TestRecentEmpty(t *testing.T) {
	s := testStore(t)

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}
