package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/risk-warden/internal/core"
)

var (
	ErrPolicyNotFound = errors.New("policy file not found")
	ErrPolicyParsing  = errors.New("policy parsing failed")
)

// LoadRiskPolicy reads a YAML risk policy. A missing file yields the default
// policy together with ErrPolicyNotFound so callers can decide whether that
// matters. An empty path is treated as "use defaults" without error.
func LoadRiskPolicy(path string) (*core.RiskPolicy, error) {
	if path == "" {
		return core.DefaultRiskPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultRiskPolicy(), ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to read policy %s: %w", path, err)
	}

	policy := core.DefaultRiskPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPolicyParsing, err)
	}
	return policy, nil
}

// ResolvePolicy merges the pipeline settings with an optional policy file.
// Core patterns from the file take precedence over the configured list.
func ResolvePolicy(p PipelineConfig) (*core.RiskPolicy, error) {
	policy, err := LoadRiskPolicy(p.PolicyPath)
	if err != nil && !errors.Is(err, ErrPolicyNotFound) {
		return nil, err
	}
	if p.PolicyPath == "" || errors.Is(err, ErrPolicyNotFound) {
		if len(p.CorePatterns) > 0 {
			policy.CorePatterns = append([]string(nil), p.CorePatterns...)
		}
	}
	return policy, nil
}
