package shotman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "url_mapping.json"), filepath.Join(dir, "scan_history.json"))
}

func TestStoreRecordAndMapping(t *testing.T) {
	store := testStore(t)

	store.Record(Outcome{URL: "https://example.com", Path: "shots/example.com.jpg"})
	store.Record(Outcome{URL: "https://b.org", Path: "shots/b.org.jpg"})

	images := store.Images()
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0] != "shots/example.com.jpg" {
		t.Errorf("append order broken: %v", images)
	}

	u, ok := store.SourceURL("example.com.jpg")
	if !ok || u != "https://example.com" {
		t.Errorf("SourceURL(example.com.jpg) = %q, %v", u, ok)
	}
}

func TestStoreIgnoresFailures(t *testing.T) {
	store := testStore(t)

	store.Record(Outcome{URL: "https://example.com", Err: fmt.Errorf("timeout")})
	store.Record(Outcome{URL: "https://example.com"}) // success but no path

	if len(store.Images()) != 0 {
		t.Errorf("failed outcomes must not be recorded: %v", store.Images())
	}
}

// Same input, same file name: the mapping upsert is last-write-wins and
// does not grow for identical inputs.
func TestStoreMappingUpsert(t *testing.T) {
	store := testStore(t)

	store.Record(Outcome{URL: "https://example.com", Path: "shots/example.com.jpg"})
	store.Record(Outcome{URL: "http://example.com", Path: "shots/example.com.jpg"})

	if err := store.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	fresh := NewStore(store.MappingFile, store.HistoryFile)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	u, ok := fresh.SourceURL("example.com.jpg")
	if !ok {
		t.Fatal("mapping entry missing after reload")
	}
	if u != "http://example.com" {
		t.Errorf("expected last writer to win, got %q", u)
	}

	data, err := os.ReadFile(store.MappingFile)
	if err != nil {
		t.Fatalf("reading mapping file: %v", err)
	}
	mapping := make(map[string]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		t.Fatalf("mapping file is not a JSON object: %v", err)
	}
	if len(mapping) != 1 {
		t.Errorf("mapping grew for identical inputs: %v", mapping)
	}
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := testStore(t)
	if err := store.Load(); err != nil {
		t.Errorf("Load of missing mapping file should not error: %v", err)
	}
}

func TestHistoryCapAndOrder(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 25; i++ {
		entry := HistoryEntry{
			Date:      fmt.Sprintf("2024-01-01 00:00:%02d", i),
			InputFile: fmt.Sprintf("input-%d.txt", i),
			TotalURLs: i,
		}
		if err := store.AppendHistory(entry); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	history, err := store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != historyLimit {
		t.Fatalf("history length = %d, want %d", len(history), historyLimit)
	}
	if history[0].InputFile != "input-24.txt" {
		t.Errorf("newest entry not at index 0: %v", history[0])
	}
	if history[len(history)-1].InputFile != "input-5.txt" {
		t.Errorf("oldest entries not evicted: %v", history[len(history)-1])
	}
}

func TestStoreDelete(t *testing.T) {
	store := testStore(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "example.com.jpg")
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	store.Record(Outcome{URL: "https://example.com", Path: path})

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("image file still exists after Delete")
	}
	if _, ok := store.SourceURL("example.com.jpg"); ok {
		t.Error("mapping entry still present after Delete")
	}
	if len(store.Images()) != 0 {
		t.Error("image list still holds deleted path")
	}
}
