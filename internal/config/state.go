package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/store/jsonstore"
)

const stateFileName = "state.json"

// State is what `tada tenant use` remembers between runs.
type State struct {
	Tenant    string    `json:"tenant"`
	UpdatedAt time.Time `json:"updated_at"`
}

func statePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// LoadState returns the saved state, or nil when nothing was saved.
func LoadState() (*State, error) {
	p, err := statePath()
	if err != nil {
		return nil, err
	}
	var st State
	found, err := jsonstore.Load(p, &st)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &st, nil
}

// SaveTenant persists tenant as the current tenant (file mode 0600).
func SaveTenant(tenant string) error {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return fmt.Errorf("empty tenant")
	}
	if strings.ContainsAny(tenant, "/?#") {
		return fmt.Errorf("tenant %q must not contain '/', '?' or '#'", tenant)
	}
	p, err := statePath()
	if err != nil {
		return err
	}
	st := State{Tenant: tenant, UpdatedAt: time.Now().UTC()}
	if err := jsonstore.Save(p, st, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// ClearState forgets the saved tenant.
func ClearState() error {
	p, err := statePath()
	if err != nil {
		return err
	}
	return jsonstore.Remove(p)
}
