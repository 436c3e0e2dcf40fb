package state

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bbrc/scout/internal/api"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.UpdateStats(api.Stats{PapersFound: 5, EmailsSent: 2}, nil)
	s.UpdateStatus(api.Status{Status: "online", Version: "1.0.0"}, nil)
	s.UpdateLogs([]string{"a", "b"}, nil)

	snap := s.Snapshot()
	stats, ok := snap.Stats.Data()
	if !ok || stats.PapersFound != 5 {
		t.Fatalf("snapshot stats = %#v ok=%v, want papers=5", stats, ok)
	}
	if !snap.Status.Value().Online() {
		t.Fatalf("snapshot status = %#v, want online", snap.Status.Value())
	}
	if snap.Stats.Updated().Before(before) {
		t.Fatalf("Updated = %v, want >= %v", snap.Stats.Updated(), before)
	}
	if snap.LastError() != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError())
	}

	logs := snap.Logs.Value()
	logs[0] = "mutated"
	if got := s.Snapshot().Logs.Value()[0]; got != "a" {
		t.Fatalf("Snapshot should clone logs; got %q want %q", got, "a")
	}
}

func TestStore_UpdateLogsCopiesInput(t *testing.T) {
	var s Store
	lines := []string{"x"}
	s.UpdateLogs(lines, nil)
	lines[0] = "y"
	if got := s.Snapshot().Logs.Value()[0]; got != "x" {
		t.Fatalf("UpdateLogs aliased caller slice; got %q", got)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.UpdateStats(api.Stats{PapersFound: 9}, nil)
	s.UpdateLogs([]string{"INFO ok"}, nil)

	origErr := errors.New("boom")
	s.BeginStats()
	s.UpdateStats(api.Stats{}, origErr)
	s.UpdateLogs(nil, errors.New("logs down"))

	snap := s.Snapshot()
	if snap.Stats.Value().PapersFound != 9 {
		t.Fatalf("stats changed on error: got %#v", snap.Stats.Value())
	}
	if got := snap.Logs.Value(); len(got) != 1 || got[0] != "INFO ok" {
		t.Fatalf("logs changed on error: got %#v", got)
	}
	if snap.Stats.Err() == nil || snap.Stats.Err().Error() != "boom" {
		t.Fatalf("Stats.Err = %v, want boom", snap.Stats.Err())
	}
	if reflect.ValueOf(snap.Stats.Err()).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.Stats.Err(), origErr) {
		t.Fatalf("cloned error should wrap original")
	}
	if snap.Stats.View(nil) != ViewPopulated {
		t.Fatalf("View = %v, want populated after failure with prior data", snap.Stats.View(nil))
	}
}

func TestStore_OfflineAfterTwoFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.UpdateStatus(api.Status{}, errors.New("fail 1"))
	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	s.UpdateStatus(api.Status{}, errors.New("fail 2"))
	snap := s.Snapshot()
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}
	if snap.LastError() == nil || snap.LastError().Error() != "fail 2" {
		t.Fatalf("LastError = %v, want fail 2", snap.LastError())
	}

	s.UpdateStatus(api.Status{Status: "online"}, nil)
	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}

func TestStore_ConcurrentWriters(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.BeginStats()
			s.UpdateStats(api.Stats{EmailsSent: n}, nil)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	if !s.Snapshot().Stats.HasData() {
		t.Fatal("HasData() = false after concurrent writes")
	}
}
