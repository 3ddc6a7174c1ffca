package prompt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
)

const defaultModel = "llama-3.1-8b-instant"
const defaultProvider = "groq"

// MessageTemplate is one chat message with unresolved placeholders.
type MessageTemplate struct {
	Role    domai.Role `yaml:"role"`
	Content string     `yaml:"content"`
}

// Template is a parsed prompt definition. Immutable once cached.
type Template struct {
	Name      string
	Model     string            `yaml:"model"`
	Provider  string            `yaml:"provider"`
	Messages  []MessageTemplate `yaml:"messages"`
	Variables []string          `yaml:"variables"`
}

// Rendered is a fully substituted message list plus the target model.
type Rendered struct {
	Messages []domai.Message
	Model    string
}

// Manager loads, caches and renders prompt templates. Safe for concurrent
// use: the cache is read-mostly and populated at most once per name
// (racing writers recompute the same immutable value, last writer wins).
type Manager struct {
	store Store

	mu    sync.RWMutex
	cache map[string]*Template
}

func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		cache: make(map[string]*Template),
	}
}

// Load returns the parsed template, reading the backing store only on the
// first access for a given name.
func (m *Manager) Load(ctx context.Context, name string) (*Template, error) {
	m.mu.RLock()
	tpl, ok := m.cache[name]
	m.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	data, err := m.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return nil, apperr.NewNotFoundError(fmt.Sprintf("prompt template %q not found", name), err)
		}
		return nil, apperr.NewInternalError(fmt.Sprintf("loading prompt template %q", name), err)
	}

	tpl = &Template{Name: name}
	if err := yaml.Unmarshal(data, tpl); err != nil {
		return nil, apperr.NewValidationError(fmt.Sprintf("prompt template %q is not valid yaml", name), err)
	}
	if tpl.Model == "" {
		tpl.Model = defaultModel
	}
	if tpl.Provider == "" {
		tpl.Provider = defaultProvider
	}

	m.mu.Lock()
	m.cache[name] = tpl
	m.mu.Unlock()

	return tpl, nil
}

// Render substitutes variables into the named template and returns the
// ordered message list plus the template's target model.
func (m *Manager) Render(ctx context.Context, name string, variables map[string]string) (Rendered, error) {
	tpl, err := m.Load(ctx, name)
	if err != nil {
		return Rendered{}, err
	}

	var missing []string
	for _, v := range tpl.Variables {
		if _, ok := variables[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return Rendered{}, apperr.NewValidationError(
			fmt.Sprintf("missing required variables for prompt %q: %s", name, strings.Join(missing, ", ")), nil)
	}

	messages := make([]domai.Message, 0, len(tpl.Messages))
	for _, msg := range tpl.Messages {
		content := Substitute(msg.Content, variables)
		if msg.Role == domai.RoleUser && strings.TrimSpace(content) == "" && len(variables) > 0 {
			content = synthesizeUserContent(tpl, variables)
		}
		messages = append(messages, domai.Message{Role: msg.Role, Content: content})
	}

	return Rendered{Messages: messages, Model: tpl.Model}, nil
}

// Substitute replaces every occurrence of each variable in both supported
// placeholder syntaxes, {{name}} and {name}. Placeholders that match no
// variable are left verbatim.
func Substitute(template string, variables map[string]string) string {
	content := template
	for name, value := range variables {
		content = strings.ReplaceAll(content, "{{"+name+"}}", value)
		content = strings.ReplaceAll(content, "{"+name+"}", value)
	}
	return content
}

// Reserved variable names carry fixed tags in synthesized user content.
const (
	varObjects = "objectsInImage"
	varPanic   = "isPanic"
)

// synthesizeUserContent builds user-message content when the template left
// it empty: tagged blocks in the template's declared variable order, or a
// plain fallback when the template declares no variables.
func synthesizeUserContent(tpl *Template, variables map[string]string) string {
	if len(tpl.Variables) > 0 {
		var parts []string
		for _, name := range tpl.Variables {
			value, ok := variables[name]
			if !ok {
				continue
			}
			switch name {
			case varObjects:
				parts = append(parts, fmt.Sprintf("<Objects>\n%s\n</Objects>", value))
			case varPanic:
				parts = append(parts, fmt.Sprintf("<Panic>%s</Panic>", value))
			default:
				parts = append(parts, fmt.Sprintf("<%s>\n%s\n</%s>", name, value, name))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}

	if len(variables) == 1 {
		for _, value := range variables {
			return value
		}
	}

	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, variables[k]))
	}
	return strings.Join(lines, "\n")
}
