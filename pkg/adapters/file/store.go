package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/plotline/pkg/domain"
)

// DefaultPath is used when New is given an empty base path.
var DefaultPath = filepath.Join(".plotline", "flows")

// Store implements ports.FlowStore using the local filesystem.
// It stores each agent's flow as <agentID>.json in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultPath
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(agentID string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("agentID cannot be empty")
	}
	if strings.ContainsAny(agentID, `/\`) || agentID == "." || agentID == ".." || strings.HasPrefix(agentID, "tmp-") {
		return "", fmt.Errorf("invalid agentID %q", agentID)
	}
	return filepath.Join(s.BasePath, agentID+".json"), nil
}

// Save persists the flow to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, agentID string, flow domain.Flow) error {
	destPath, err := s.path(agentID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure flow directory: %w", err)
	}

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	// Same directory as the destination: rename is only atomic within a filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+agentID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing flow file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load retrieves the flow from its JSON file.
func (s *Store) Load(ctx context.Context, agentID string) (domain.Flow, error) {
	filePath, err := s.path(agentID)
	if err != nil {
		return domain.Flow{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Flow{}, domain.ErrFlowNotFound
		}
		return domain.Flow{}, fmt.Errorf("failed to read flow file: %w", err)
	}

	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return domain.Flow{}, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return flow, nil
}

// Delete removes the flow file.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	filePath, err := s.path(agentID)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete flow file: %w", err)
	}
	return nil
}

// List returns all agent IDs with a stored flow, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	agents := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		agents = append(agents, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(agents)
	return agents, nil
}
