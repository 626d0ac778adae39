package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/plotline/pkg/domain"
	"github.com/aretw0/plotline/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.FlowStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks node data values whose
// key matches one of the patterns before the flow reaches the store.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.FlowStore) ports.FlowStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, agentID string, flow domain.Flow) error {
	// Clone so the caller's flow keeps its values.
	masked := flow.Clone()
	for i := range masked.Nodes {
		maskMap(masked.Nodes[i].Data, m.patterns)
	}
	return m.next.Save(ctx, agentID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, agentID string) (domain.Flow, error) {
	return m.next.Load(ctx, agentID)
}

func (m *piiMiddleware) Delete(ctx context.Context, agentID string) error {
	return m.next.Delete(ctx, agentID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		switch t := v.(type) {
		case map[string]any:
			maskMap(t, patterns)
		case []any:
			for _, item := range t {
				if sub, ok := item.(map[string]any); ok {
					maskMap(sub, patterns)
				}
			}
		}
	}
}
