// Package cache holds small in-process TTL caches for the hottest public read
// paths. The app is single-process, so no external cache is involved.
package cache

import (
	"sync"
	"time"

	"local-baba-api/models"
)

const TTL = 5 * time.Minute

// ── Category list cache ──────────────────────────────────────────────────────

type categoryEntry struct {
	data      []models.Category
	fetchedAt time.Time
}

var (
	catMu    sync.RWMutex
	catCache *categoryEntry
)

func GetCategories() ([]models.Category, bool) {
	catMu.RLock()
	defer catMu.RUnlock()
	if catCache != nil && time.Since(catCache.fetchedAt) < TTL {
		return catCache.data, true
	}
	return nil, false
}

func SetCategories(data []models.Category) {
	catMu.Lock()
	defer catMu.Unlock()
	catCache = &categoryEntry{data: data, fetchedAt: time.Now()}
}

// ── Top-rated restaurants cache ──────────────────────────────────────────────
// Expires by TTL only; a new review shows up within five minutes.

type topEntry struct {
	data      []models.Restaurant
	fetchedAt time.Time
}

var (
	topMu    sync.RWMutex
	topCache *topEntry
)

func GetTopRated() ([]models.Restaurant, bool) {
	topMu.RLock()
	defer topMu.RUnlock()
	if topCache != nil && time.Since(topCache.fetchedAt) < TTL {
		return topCache.data, true
	}
	return nil, false
}

func SetTopRated(data []models.Restaurant) {
	topMu.Lock()
	defer topMu.Unlock()
	topCache = &topEntry{data: data, fetchedAt: time.Now()}
}

// Invalidate drops everything (call on category writes).
func Invalidate() {
	catMu.Lock()
	catCache = nil
	catMu.Unlock()

	topMu.Lock()
	topCache = nil
	topMu.Unlock()
}
