package middleware

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/ports"
)

type piiMiddleware struct {
	next     ports.OutcomeStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks extracted fields whose key
// matches one of the patterns. The masked values are also replaced wherever
// they appear in the status lines and error text. Loads are passed through.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.OutcomeStore) ports.OutcomeStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, o *domain.Outcome) error {
	// Deep Clone to avoid side effects on the outcome held by the run.
	cloned := o.Clone()
	if cloned.Result == nil || len(cloned.Result.Fields) == 0 {
		return m.next.Save(ctx, cloned)
	}

	var secrets []string
	for k, v := range cloned.Result.Fields {
		if v != "" && m.matches(k) {
			secrets = append(secrets, v)
			cloned.Result.Fields[k] = domain.RedactedValue
		}
	}
	if len(secrets) > 0 {
		for i, l := range cloned.Lines {
			cloned.Lines[i] = mask(l, secrets)
		}
		cloned.Error = mask(cloned.Error, secrets)
	}
	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, runID string) (*domain.Outcome, error) {
	return m.next.Load(ctx, runID)
}

func (m *piiMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func mask(s string, secrets []string) string {
	for _, v := range secrets {
		s = strings.ReplaceAll(s, v, domain.RedactedValue)
	}
	return s
}
