package responder

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/amlctl/types"
)

// Rule is the scripted answer for one command code.
type Rule struct {
	Code    int32         `yaml:"code"`
	Message string        `yaml:"message"`
	Delay   time.Duration `yaml:"delay"`
}

// Script answers commands from a table keyed by command name. Commands
// without a rule get Default.
type Script struct {
	Default Rule            `yaml:"default"`
	Rules   map[string]Rule `yaml:"commands"`
}

// LoadScript reads a YAML script:
//
//	default: {code: 0}
//	commands:
//	  label: {code: 0, message: labeled, delay: 2s}
//	  unload: {code: 16}
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	rules := make(map[string]Rule, len(s.Rules))
	for name, rule := range s.Rules {
		code, err := types.ParseCommandCode(name)
		if err != nil {
			return nil, fmt.Errorf("script: %w", err)
		}
		rules[code.String()] = rule
	}
	s.Rules = rules
	return &s, nil
}

// Handle returns the rule for cmd after its delay. A cancelled ctx cuts the
// delay short.
func (s *Script) Handle(ctx context.Context, cmd *types.Command) types.Completion {
	rule, ok := s.Rules[cmd.Cmd.String()]
	if !ok {
		rule = s.Default
	}
	if rule.Delay > 0 {
		t := time.NewTimer(rule.Delay)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
		t.Stop()
	}
	return types.Completion{Code: rule.Code, Message: rule.Message}
}

var _ Handler = (*Script)(nil)
