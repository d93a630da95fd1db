package services

import (
	"fmt"
	"strings"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// renderPrompt loads a template and substitutes {name} placeholders.
// Unknown placeholders are left as they are.
func renderPrompt(store driven.PromptStore, name string, vars map[string]string) (string, error) {
	if store == nil {
		return "", fmt.Errorf("load prompt %s: no prompt store", name)
	}
	tmpl, err := store.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}
