package ratelimit

import "testing"

func TestUseGenerate_EnforcesLimit(t *testing.T) {
	rl := NewAIRateLimiter(2, 10, 20)

	if err := rl.UseGenerate(); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}
	if err := rl.UseGenerate(); err != nil {
		t.Fatalf("second request rejected: %v", err)
	}
	if err := rl.UseGenerate(); err == nil {
		t.Error("expected third request over limit to fail")
	}
	if rl.CanGenerate() {
		t.Error("CanGenerate should report false at the limit")
	}
	if !rl.CanEmbed() {
		t.Error("embedding budget should be untouched")
	}
}

func TestUseEmbed_EnforcesLimit(t *testing.T) {
	rl := NewAIRateLimiter(10, 1, 20)

	if err := rl.UseEmbed(); err != nil {
		t.Fatalf("first embed rejected: %v", err)
	}
	if err := rl.UseEmbed(); err == nil {
		t.Error("expected second embed over limit to fail")
	}
}

func TestTotalBudgetSharedAcrossKinds(t *testing.T) {
	rl := NewAIRateLimiter(10, 10, 2)

	if err := rl.UseGenerate(); err != nil {
		t.Fatal(err)
	}
	if err := rl.UseEmbed(); err != nil {
		t.Fatal(err)
	}
	if err := rl.UseGenerate(); err == nil {
		t.Error("expected total budget to be exhausted")
	}
	if err := rl.UseEmbed(); err == nil {
		t.Error("expected total budget to be exhausted")
	}
}

func TestZeroLimitsMeanUnlimited(t *testing.T) {
	rl := NewAIRateLimiter(0, 0, 0)

	for i := 0; i < 100; i++ {
		if err := rl.UseGenerate(); err != nil {
			t.Fatalf("unlimited limiter rejected request %d: %v", i, err)
		}
	}
	if !rl.CanEmbed() {
		t.Error("unlimited limiter should always allow embeds")
	}
}

func TestGetStats(t *testing.T) {
	rl := NewAIRateLimiter(5, 5, 10)
	_ = rl.UseGenerate()
	_ = rl.UseEmbed()

	stats := rl.GetStats()
	if stats["generate_used"].(int) != 1 {
		t.Errorf("generate_used = %v, want 1", stats["generate_used"])
	}
	if stats["total_used"].(int) != 2 {
		t.Errorf("total_used = %v, want 2", stats["total_used"])
	}
}
