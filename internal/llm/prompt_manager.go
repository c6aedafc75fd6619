package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

type ModelProvider string
type PromptKey string

const (
	DefaultProvider ModelProvider = "default"
	ClassifyPrompt  PromptKey     = "classify"
)

const promptExt = ".prompt"

// PromptManager renders the embedded prompt templates. A template is looked
// up as key_provider.prompt and falls back to key_default.prompt.
type PromptManager struct {
	set *template.Template
}

func NewPromptManager() (*PromptManager, error) {
	set, err := template.New("prompts").Option("missingkey=error").ParseFS(promptFiles, "prompts/*"+promptExt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded prompts: %w", err)
	}
	for _, t := range set.Templates() {
		if t.Name() == set.Name() {
			continue
		}
		base := strings.TrimSuffix(t.Name(), promptExt)
		if i := strings.LastIndex(base, "_"); i <= 0 || i == len(base)-1 {
			return nil, fmt.Errorf("invalid prompt filename format: %s (expected 'key_provider%s')", t.Name(), promptExt)
		}
	}
	return &PromptManager{set: set}, nil
}

func promptName(key PromptKey, provider ModelProvider) string {
	return string(key) + "_" + string(provider) + promptExt
}

// Get returns the provider-specific template, falling back to the default.
func (pm *PromptManager) Get(key PromptKey, provider ModelProvider) (*template.Template, error) {
	if tmpl := pm.set.Lookup(promptName(key, provider)); tmpl != nil {
		return tmpl, nil
	}
	if tmpl := pm.set.Lookup(promptName(key, DefaultProvider)); tmpl != nil {
		return tmpl, nil
	}
	return nil, fmt.Errorf("no prompt %q for provider %q and no default", key, provider)
}

func (pm *PromptManager) Render(key PromptKey, provider ModelProvider, data any) (string, error) {
	tmpl, err := pm.Get(key, provider)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
