//go:build !windows

package infra

import (
	"fmt"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// UnsupportedRegistry has no uninstall registry to read. Every location is
// unreachable, so a scan fails with domain.ErrNoRegistryRoot instead of
// reporting an empty inventory.
type UnsupportedRegistry struct{}

// NewRegistryReader returns the platform registry reader.
func NewRegistryReader() domain.RegistryReader {
	return &UnsupportedRegistry{}
}

func (r *UnsupportedRegistry) Open(loc domain.RegistryLocation) (domain.RegistryKey, error) {
	return nil, fmt.Errorf("open %s: %w", loc, domain.ErrUnsupportedPlatform)
}

// Ensure UnsupportedRegistry implements domain.RegistryReader.
var _ domain.RegistryReader = (*UnsupportedRegistry)(nil)
