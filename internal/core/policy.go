package core

// RiskPolicy is the operator-tunable part of an assessment, loaded from a
// YAML policy file.
type RiskPolicy struct {
	// Path fragments that mark a change as touching a sensitive area.
	// Example: ["auth", "core", "payments/"]
	CorePatterns []string `yaml:"core_patterns"`

	// Extra lines appended to the classification prompt.
	CustomInstructions []string `yaml:"custom_instructions"`
}

// DefaultCorePatterns are used when no policy names any.
var DefaultCorePatterns = []string{"auth", "core"}

// DefaultRiskPolicy returns a policy with the default sensitive areas.
func DefaultRiskPolicy() *RiskPolicy {
	return &RiskPolicy{
		CorePatterns:       append([]string(nil), DefaultCorePatterns...),
		CustomInstructions: []string{},
	}
}
