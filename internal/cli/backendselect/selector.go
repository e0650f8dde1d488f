package backendselect

import (
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/authfront-dev/authfront/internal/cli/config"
	"github.com/authfront-dev/authfront/internal/cli/userconfig"
)

// promptSelection is swapped in tests
var promptSelection = PromptBackendSelection

// warnings receives non-fatal messages
var warnings io.Writer = os.Stderr

// ResolveBackend determines which backend to use based on the following priority:
// 1. If backendAlias is provided, use that backend
// 2. If user has a selected backend in their local config, use that
// 3. If only one backend in project config, use that
// 4. Otherwise, prompt user to select a backend interactively
func ResolveBackend(projectConfig *config.Config, backendAlias string) (*config.Backend, error) {
	// Priority 1: Use backend alias if provided
	if backendAlias != "" {
		return projectConfig.GetBackendByAlias(backendAlias)
	}

	// Priority 2: Use selected backend from user config
	selectedURL, err := userconfig.GetSelectedBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		backend, err := projectConfig.GetBackendByURL(selectedURL)
		if err == nil {
			return backend, nil
		}
		// Selected backend no longer exists in project config, clear it and continue
		_ = userconfig.SetSelectedBackend("")
	}

	// Priority 3: If only one backend, use it automatically
	if len(projectConfig.Backends) == 1 {
		backend := &projectConfig.Backends[0]
		remember(backend)
		return backend, nil
	}

	// Priority 4: Prompt user to select a backend
	backend, err := promptSelection(projectConfig)
	if err != nil {
		return nil, err
	}
	remember(backend)

	return backend, nil
}

func remember(backend *config.Backend) {
	if err := userconfig.SetSelectedBackend(backend.URL); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Fprintf(warnings, "Warning: failed to save selected backend: %v\n", err)
	}
}

// PromptBackendSelection shows an interactive prompt for the user to select a backend
func PromptBackendSelection(projectConfig *config.Config) (*config.Backend, error) {
	if len(projectConfig.Backends) == 0 {
		return nil, fmt.Errorf("no backends configured in %s", config.ConfigFileName)
	}

	type backendOption struct {
		Label   string
		Backend *config.Backend
	}

	options := make([]backendOption, len(projectConfig.Backends))
	for i := range projectConfig.Backends {
		backend := &projectConfig.Backends[i]
		options[i] = backendOption{
			Label:   fmt.Sprintf("%s (%s)", backend.Alias, backend.URL),
			Backend: backend,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a backend",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection cancelled: %w", err)
	}

	return options[index].Backend, nil
}

// GetBackendByURLOrAlias finds a backend by URL or alias
func GetBackendByURLOrAlias(cfg *config.Config, urlOrAlias string) (*config.Backend, error) {
	if backend, err := cfg.GetBackendByURL(urlOrAlias); err == nil {
		return backend, nil
	}
	if backend, err := cfg.GetBackendByAlias(urlOrAlias); err == nil {
		return backend, nil
	}
	return nil, fmt.Errorf("backend with URL or alias '%s' not found", urlOrAlias)
}
