// Package classification decides the message type of a processed row.
//
// Two strategies exist: the keyword classifier tests the raw message text
// against fixed vocabularies, and the model classifier reads the type the
// language model reported. A Chain runs them in a configured order and the
// first strategy that yields a type wins.
package classification

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/phone-manager/internal/model"
)

// Input is what a classifier sees for one row.
type Input struct {
	Fields  model.ExtractedFields
	Content string
}

// Match is a successful classification.
type Match struct {
	Type        string
	PatternName string
	Source      model.TypeSource
}

// Classifier assigns a message type. A nil match with a nil error means the
// classifier has no opinion.
type Classifier interface {
	Classify(ctx context.Context, in Input) (*Match, error)
}

// Precedence names which strategy is consulted first.
type Precedence string

const (
	// PrecedenceModel consults the model-reported type before keywords.
	PrecedenceModel Precedence = "model"
	// PrecedenceKeyword consults keywords before the model-reported type.
	PrecedenceKeyword Precedence = "keyword"
)

// ParsePrecedence validates a configured precedence value.
func ParsePrecedence(s string) (Precedence, error) {
	switch p := Precedence(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PrecedenceModel, nil
	case PrecedenceModel, PrecedenceKeyword:
		return p, nil
	default:
		return "", fmt.Errorf("unknown classification precedence %q (want %q or %q)", s, PrecedenceModel, PrecedenceKeyword)
	}
}

// ModelClassifier uses the type field the model extracted, if any.
type ModelClassifier struct{}

// Classify implements Classifier.
func (ModelClassifier) Classify(_ context.Context, in Input) (*Match, error) {
	if in.Fields.Type == nil {
		return nil, nil //nolint:nilnil // No type reported is a valid result
	}
	t := strings.ToLower(strings.TrimSpace(*in.Fields.Type))
	if t == "" {
		return nil, nil //nolint:nilnil // No type reported is a valid result
	}
	return &Match{Type: t, Source: model.TypeSourceModel}, nil
}

// Chain runs classifiers in order and returns the first match.
type Chain struct {
	classifiers []Classifier
}

// NewChain builds a chain from explicit classifiers.
func NewChain(classifiers ...Classifier) *Chain {
	return &Chain{classifiers: classifiers}
}

// NewDefaultChain orders the model and keyword strategies by precedence.
func NewDefaultChain(p Precedence) (*Chain, error) {
	keyword, err := NewKeywordClassifier(DefaultPatterns())
	if err != nil {
		return nil, err
	}

	switch p {
	case PrecedenceKeyword:
		return NewChain(keyword, ModelClassifier{}), nil
	case PrecedenceModel, "":
		return NewChain(ModelClassifier{}, keyword), nil
	default:
		return nil, fmt.Errorf("unknown classification precedence %q", p)
	}
}

// Classify implements Classifier. An error from one strategy stops the chain.
func (c *Chain) Classify(ctx context.Context, in Input) (*Match, error) {
	for _, cl := range c.classifiers {
		m, err := cl.Classify(ctx, in)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
	return nil, nil //nolint:nilnil // Unclassified is a valid result
}
