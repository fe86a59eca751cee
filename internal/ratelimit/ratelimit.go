package ratelimit

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AIRateLimiter caps how many hosted AI calls a single day may spend.
// Generation (summaries) and embedding requests are budgeted separately
// because they hit different Gemini endpoints with different quotas.
type AIRateLimiter struct {
	mu             sync.Mutex
	generateCount  int
	embedCount     int
	totalCount     int
	maxGenerate    int
	maxEmbed       int
	maxTotal       int
	resetTime      time.Time
}

// NewAIRateLimiter creates a limiter; zero for any limit means unlimited.
func NewAIRateLimiter(maxGenerate, maxEmbed, maxTotal int) *AIRateLimiter {
	return &AIRateLimiter{
		maxGenerate: maxGenerate,
		maxEmbed:    maxEmbed,
		maxTotal:    maxTotal,
		resetTime:   time.Now().Add(24 * time.Hour), // Reset daily
	}
}

// CanGenerate checks if a generation request fits the budget.
func (rl *AIRateLimiter) CanGenerate() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGenerate > 0 && rl.generateCount >= rl.maxGenerate {
		log.Printf("Gemini generation limit reached (%d/%d)", rl.generateCount, rl.maxGenerate)
		return false
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		log.Printf("Total AI limit reached (%d/%d)", rl.totalCount, rl.maxTotal)
		return false
	}

	return true
}

// CanEmbed checks if an embedding request fits the budget.
func (rl *AIRateLimiter) CanEmbed() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxEmbed > 0 && rl.embedCount >= rl.maxEmbed {
		log.Printf("Embedding limit reached (%d/%d)", rl.embedCount, rl.maxEmbed)
		return false
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		log.Printf("Total AI limit reached (%d/%d)", rl.totalCount, rl.maxTotal)
		return false
	}

	return true
}

// UseGenerate records one generation request against the budget.
func (rl *AIRateLimiter) UseGenerate() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGenerate > 0 && rl.generateCount >= rl.maxGenerate {
		return fmt.Errorf("gemini generation limit exceeded")
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI limit exceeded")
	}

	rl.generateCount++
	rl.totalCount++

	log.Printf("AI usage: generate=%d/%d, total=%d/%d", rl.generateCount, rl.maxGenerate, rl.totalCount, rl.maxTotal)
	return nil
}

// UseEmbed records one embedding request against the budget.
func (rl *AIRateLimiter) UseEmbed() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxEmbed > 0 && rl.embedCount >= rl.maxEmbed {
		return fmt.Errorf("embedding limit exceeded")
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI limit exceeded")
	}

	rl.embedCount++
	rl.totalCount++
	return nil
}

// GetStats returns the current counters.
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"generate_used":  rl.generateCount,
		"generate_limit": rl.maxGenerate,
		"embed_used":     rl.embedCount,
		"embed_limit":    rl.maxEmbed,
		"total_used":     rl.totalCount,
		"total_limit":    rl.maxTotal,
		"reset_time":     rl.resetTime,
	}
}

// checkReset resets counters if reset time has passed
func (rl *AIRateLimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		log.Printf("Resetting AI rate limiter counters")
		rl.generateCount = 0
		rl.embedCount = 0
		rl.totalCount = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
