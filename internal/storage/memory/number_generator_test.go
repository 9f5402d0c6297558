package memory

import (
	"regexp"
	"sync"
	"testing"
)

func TestNumberGenerator_TemplateSubstitution(t *testing.T) {
	gen := NewNumberGenerator()

	got := gen.GenerateNumber("SH{0:yyMMdd}-{1:D5}")
	if matched := regexp.MustCompile(`^SH\d{6}-00001$`).MatchString(got); !matched {
		t.Fatalf("unexpected number format: %s", got)
	}

	// Счётчик у каждого шаблона свой.
	if got := gen.GenerateNumber("PI{0:yyMMdd}-{1:D5}"); !regexp.MustCompile(`^PI\d{6}-00001$`).MatchString(got) {
		t.Fatalf("expected independent counter, got %s", got)
	}
	if got := gen.GenerateNumber("SH{0:yyMMdd}-{1:D5}"); !regexp.MustCompile(`^SH\d{6}-00002$`).MatchString(got) {
		t.Fatalf("expected incremented counter, got %s", got)
	}
}

func TestNumberGenerator_TemplateWithoutPlaceholders(t *testing.T) {
	gen := NewNumberGenerator()

	if got := gen.GenerateNumber("FIXED"); got != "FIXED" {
		t.Fatalf("expected template returned as is, got %s", got)
	}
}

func TestNumberGenerator_ConcurrentUniqueness(t *testing.T) {
	gen := NewNumberGenerator()

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num := gen.GenerateNumber("CO{0:yyMMdd}-{1:D5}")
			mu.Lock()
			numbers[num] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(numbers) != n {
		t.Fatalf("expected %d unique numbers, got %d", n, len(numbers))
	}
}
