// Package process runs a local command as the text-generation collaborator.
//
// The user message is written to the command's stdin and the system prompt
// is passed in the PLOTLINE_SYSTEM_PROMPT environment variable; whatever the
// command prints on stdout is the answer. This fits local model runners such
// as "ollama run <model>" or "llm -m <model>".
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/aretw0/plotline/pkg/domain"
)

// ProviderName identifies the generator in errors and logs.
const ProviderName = "process"

// SystemPromptEnv carries the system instruction to the command.
const SystemPromptEnv = "PLOTLINE_SYSTEM_PROMPT"

// stderrLimit bounds how much of stderr is quoted in errors.
const stderrLimit = 512

// Generator implements ports.Generator by executing a local process.
type Generator struct {
	cfg Config
}

// New creates a process Generator.
func New(cfg Config) (*Generator, error) {
	if cfg.Command == "" {
		return nil, errors.New("process generator needs a command")
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	return &Generator{cfg: cfg}, nil
}

// Name returns the provider name.
func (g *Generator) Name() string { return ProviderName }

// Generate runs the command once. On cancellation the process receives an
// interrupt first and is killed once the grace period is over.
func (g *Generator) Generate(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	cmd := exec.CommandContext(ctx, g.cfg.Command, g.cfg.Args...)
	cmd.Dir = g.cfg.Dir
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = g.cfg.GracePeriod

	env := cmd.Environ()
	for k, v := range g.cfg.Environment {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(env, SystemPromptEnv+"="+systemPrompt)

	cmd.Stdin = strings.NewReader(userMessage)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, clip(msg, stderrLimit))
		}
		return "", &domain.CollaboratorError{Provider: ProviderName, Err: fmt.Errorf("execution failed: %w", err)}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", &domain.CollaboratorError{Provider: ProviderName, Err: errors.New("command printed nothing")}
	}
	return out, nil
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
