package process

import (
	"errors"
	"time"
)

// DefaultGracePeriod is how long a process may run after it was interrupted.
const DefaultGracePeriod = 5 * time.Second

// Config describes the local command used as a generator.
type Config struct {
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`

	// GracePeriod bounds the wait between the interrupt sent on cancellation
	// and a forced kill. Zero means DefaultGracePeriod.
	GracePeriod time.Duration `yaml:"grace_period" json:"grace_period"`
}

// FromArgv builds a Config from a command line split into words.
func FromArgv(argv []string) (Config, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Config{}, errors.New("process generator needs a command")
	}
	return Config{Command: argv[0], Args: append([]string(nil), argv[1:]...)}, nil
}
