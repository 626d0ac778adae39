package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/plotline/pkg/ports"
)

// Source adapts a Loam vault of scenario documents to ports.ScenarioSource.
type Source struct {
	Repo *loam.TypedRepository[ScenarioMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ScenarioMetadata]) *Source {
	return &Source{
		Repo: repo,
	}
}

// GetScenario retrieves a scenario by ID. Loam resolves the file extension,
// so "greeting" finds greeting.md.
func (s *Source) GetScenario(ctx context.Context, id string) (ports.Scenario, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return ports.Scenario{}, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return toScenario(doc.ID, doc.Data, doc.Content), nil
}

// ListScenarios lists all scenarios in the vault, sorted by ID.
func (s *Source) ListScenarios(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		id := scenarioID(doc.ID, doc.Data)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch emits the ID of every scenario document that changes until ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func toScenario(docID string, meta ScenarioMetadata, content string) ports.Scenario {
	id := scenarioID(docID, meta)

	text := strings.TrimSpace(content)
	if text == "" {
		text = strings.TrimSpace(meta.Text)
	}

	agentID := meta.AgentID
	if agentID == "" {
		agentID = id
	}

	return ports.Scenario{
		ID:      id,
		Title:   meta.Title,
		Text:    text,
		AgentID: agentID,
	}
}

// scenarioID prefers the ID from metadata, otherwise the filename.
func scenarioID(docID string, meta ScenarioMetadata) string {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	return trimExtension(rawID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
