package natsworker

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSubjectPrefix is the subject prefix used when Config.SubjectPrefix is empty.
const DefaultSubjectPrefix = "lineseq"

// ErrInvalidConfig is returned when the worker configuration is invalid.
var ErrInvalidConfig = errors.New("natsworker: invalid configuration")

// Config is the configuration of a Worker.
type Config struct {
	// SubjectPrefix is the first subject token. Default: "lineseq".
	SubjectPrefix string `yaml:"subjectPrefix"`

	// Line identifies the production line. Required.
	Line string `yaml:"line"`

	// QueueGroup lets several daemons share the request subject.
	// Empty means the line name.
	QueueGroup string `yaml:"queueGroup"`
}

// SetDefaults fills zero fields with defaults.
func SetDefaults(cfg *Config) {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.QueueGroup == "" {
		cfg.QueueGroup = cfg.Line
	}
}

// Validate checks that subjects built from cfg are well formed.
func (cfg *Config) Validate() error {
	if cfg.Line == "" {
		return fmt.Errorf("%w: line is required", ErrInvalidConfig)
	}
	for name, token := range map[string]string{"subjectPrefix": cfg.SubjectPrefix, "line": cfg.Line} {
		if strings.ContainsAny(token, " \t\r\n*>") {
			return fmt.Errorf("%w: %s %q contains whitespace or wildcards", ErrInvalidConfig, name, token)
		}
	}

	return nil
}

// RequestSubject is the subject requests are received on.
func (cfg *Config) RequestSubject() string {
	return cfg.SubjectPrefix + "." + cfg.Line + ".request"
}

// EventsSubject receives events of requests sent without a reply subject.
func (cfg *Config) EventsSubject() string {
	return cfg.SubjectPrefix + "." + cfg.Line + ".events"
}
