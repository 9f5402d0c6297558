package memory

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

var templatePlaceholders = regexp.MustCompile(`\{0:yyMMdd\}|\{1:D5\}`)

// numberGenerator — последовательный генератор номеров документов.
// Понимает шаблоны вида "PI{0:yyMMdd}-{1:D5}": дата и пятизначный счётчик
// на каждый шаблон.
type numberGenerator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewNumberGenerator возвращает in-memory генератор номеров.
func NewNumberGenerator() *numberGenerator {
	return &numberGenerator{counters: make(map[string]int)}
}

// GenerateNumber подставляет дату и следующий счётчик в шаблон.
func (g *numberGenerator) GenerateNumber(template string) string {
	g.mu.Lock()
	g.counters[template]++
	seq := g.counters[template]
	g.mu.Unlock()

	now := time.Now().UTC()
	return templatePlaceholders.ReplaceAllStringFunc(template, func(ph string) string {
		if strings.HasPrefix(ph, "{0:") {
			return now.Format("060102")
		}
		return fmt.Sprintf("%05d", seq)
	})
}
