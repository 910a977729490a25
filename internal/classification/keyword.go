package classification

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/phone-manager/internal/model"
)

// Pattern is a keyword vocabulary that maps to a message type.
type Pattern struct {
	Name     string
	Type     string
	Regex    string
	Priority int // Higher priority patterns are checked first
}

type compiledPattern struct {
	regex *regexp.Regexp
	Pattern
}

// KeywordClassifier matches raw message text against keyword patterns.
type KeywordClassifier struct {
	patterns []compiledPattern
	mu       sync.RWMutex
}

// NewKeywordClassifier compiles the given patterns.
func NewKeywordClassifier(patterns []Pattern) (*KeywordClassifier, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return &KeywordClassifier{patterns: compiled}, nil
}

// DefaultPatterns returns the built-in bill and card vocabularies.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:     "Utility Bill",
			Type:     model.TypeBill,
			Regex:    `\b(DPDC|DESCO|NESCO|WASA|TITAS|ELECTRICITY|PREPAID\s*METER|UTILITY)\b`,
			Priority: 100,
		},
		{
			Name:     "Billing",
			Type:     model.TypeBill,
			Regex:    `\b(BILLS?|BILLING|BILLED|INVOICE)\b`,
			Priority: 90,
		},
		{
			Name:     "Card Due",
			Type:     model.TypeCard,
			Regex:    `\b(CLIENT|DUE|MINIMUM\s*DUE|MIN\s*DUE|TOTAL\s*DUE|CARD\s*DUE)\b`,
			Priority: 50,
		},
	}
}

// Classify implements Classifier.
func (kc *KeywordClassifier) Classify(_ context.Context, in Input) (*Match, error) {
	kc.mu.RLock()
	defer kc.mu.RUnlock()

	for _, p := range kc.patterns {
		if p.regex.MatchString(in.Content) {
			return &Match{
				Type:        p.Type,
				PatternName: p.Name,
				Source:      model.TypeSourceKeyword,
			}, nil
		}
	}

	return nil, nil //nolint:nilnil // No match is a valid result
}

// UpdatePatterns replaces the loaded patterns.
func (kc *KeywordClassifier) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return err
	}

	kc.mu.Lock()
	kc.patterns = compiled
	kc.mu.Unlock()

	return nil
}

// PatternCount returns the number of loaded patterns.
func (kc *KeywordClassifier) PatternCount() int {
	kc.mu.RLock()
	defer kc.mu.RUnlock()
	return len(kc.patterns)
}

func compilePatterns(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, p := range patterns {
		if p.Type == "" {
			return nil, fmt.Errorf("pattern %s has no type", p.Name)
		}

		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, compiledPattern{Pattern: p, regex: regex})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}
