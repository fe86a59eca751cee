package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// IngestedItem is one ledger record.
type IngestedItem struct {
	Hash       string    `json:"hash"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Bias       string    `json:"bias"`
	Source     string    `json:"source"`
	IngestedAt time.Time `json:"ingested_at"`
}

// FileLedger keeps the ingestion record in a JSON file. Used when no
// database DSN is configured.
type FileLedger struct {
	filePath string
	ttlHours int
	items    map[string]IngestedItem
	byLink   map[string]string
	mu       sync.RWMutex
}

func NewFileLedger(filePath string, ttlHours int) *FileLedger {
	return &FileLedger{
		filePath: filePath,
		ttlHours: ttlHours,
		items:    make(map[string]IngestedItem),
		byLink:   make(map[string]string),
	}
}

// Load loads the existing ledger from file, dropping expired records.
func (fl *FileLedger) Load() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if _, err := os.Stat(fl.filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(fl.filePath)
	if err != nil {
		return fmt.Errorf("failed to read ledger file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var items []IngestedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal ledger: %w", err)
	}

	cutoffTime := time.Now().Add(-time.Duration(fl.ttlHours) * time.Hour)
	for _, item := range items {
		if item.IngestedAt.After(cutoffTime) {
			fl.items[item.Hash] = item
			fl.byLink[item.Link] = item.Hash
		}
	}

	return nil
}

// Save writes the ledger back to disk.
func (fl *FileLedger) Save() error {
	fl.mu.RLock()
	items := make([]IngestedItem, 0, len(fl.items))
	for _, item := range fl.items {
		items = append(items, item)
	}
	fl.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	if err := os.WriteFile(fl.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}

	return nil
}

// IsIngested checks if an article hash is in the TTL window.
func (fl *FileLedger) IsIngested(hash string) bool {
	fl.mu.RLock()
	defer fl.mu.RUnlock()

	item, exists := fl.items[hash]
	if !exists {
		return false
	}

	cutoffTime := time.Now().Add(-time.Duration(fl.ttlHours) * time.Hour)
	return item.IngestedAt.After(cutoffTime)
}

// IsLinkIngested checks by link.
func (fl *FileLedger) IsLinkIngested(link string) bool {
	fl.mu.RLock()
	hash, exists := fl.byLink[link]
	fl.mu.RUnlock()
	if !exists {
		return false
	}
	return fl.IsIngested(hash)
}

// MarkIngested records the article and persists the ledger.
func (fl *FileLedger) MarkIngested(hash, title, link, bias, source string) error {
	fl.mu.Lock()
	fl.items[hash] = IngestedItem{
		Hash:       hash,
		Title:      title,
		Link:       link,
		Bias:       bias,
		Source:     source,
		IngestedAt: time.Now(),
	}
	fl.byLink[link] = hash
	fl.mu.Unlock()

	return fl.Save()
}

// Cleanup removes expired items from memory.
func (fl *FileLedger) Cleanup() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	cutoffTime := time.Now().Add(-time.Duration(fl.ttlHours) * time.Hour)
	for hash, item := range fl.items {
		if item.IngestedAt.Before(cutoffTime) {
			delete(fl.items, hash)
			delete(fl.byLink, item.Link)
		}
	}
}

// GetStats returns ledger statistics.
func (fl *FileLedger) GetStats() map[string]int {
	fl.mu.RLock()
	defer fl.mu.RUnlock()

	return map[string]int{
		"total_items": len(fl.items),
	}
}
