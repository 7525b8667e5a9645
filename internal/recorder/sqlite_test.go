package recorder

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "history.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events := []QueryEvent{
		{RequestID: "a", At: base, Input: "Sample Corp", Code: "000001", Source: "mock",
			Start: "20240101", End: "20240131", Rows: 23, Outcome: OutcomeOK, Duration: 120 * time.Millisecond},
		{RequestID: "b", At: base.Add(time.Minute), Input: "Nope", Outcome: OutcomeNotFound, Message: "company not found"},
		{RequestID: "c", At: base.Add(2 * time.Minute), Input: "000001", Code: "000001", Outcome: OutcomeWarning},
	}
	for i := range events {
		if err := r.RecordQuery(&events[i]); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := r.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].RequestID != "c" || got[1].RequestID != "b" {
		t.Errorf("expected newest first, got %s,%s", got[0].RequestID, got[1].RequestID)
	}
	if got[1].Message != "company not found" || got[1].Outcome != OutcomeNotFound {
		t.Errorf("unexpected event %+v", got[1])
	}

	all, _ := r.Recent(10)
	last := all[len(all)-1]
	if last.Rows != 23 || last.Duration != 120*time.Millisecond || !last.At.Equal(base) {
		t.Errorf("round trip mismatch: %+v", last)
	}
}

func TestSQLiteRecorder_RecentZeroLimit(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "h.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := r.Recent(0)
	if err != nil || got != nil {
		t.Errorf("expected nil,nil got %v,%v", got, err)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordQuery(&QueryEvent{}); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.Recent(5); got != nil {
		t.Errorf("expected nil history, got %v", got)
	}
}
