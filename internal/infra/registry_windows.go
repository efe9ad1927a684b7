//go:build windows

package infra

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// WindowsRegistry implements domain.RegistryReader over the live registry.
type WindowsRegistry struct{}

// NewRegistryReader returns the platform registry reader.
func NewRegistryReader() domain.RegistryReader {
	return &WindowsRegistry{}
}

var hives = map[domain.RegistryRoot]registry.Key{
	domain.RootLocalMachine: registry.LOCAL_MACHINE,
	domain.RootCurrentUser:  registry.CURRENT_USER,
	domain.RootClassesRoot:  registry.CLASSES_ROOT,
	domain.RootUsers:        registry.USERS,
}

func (r *WindowsRegistry) Open(loc domain.RegistryLocation) (domain.RegistryKey, error) {
	hive, ok := hives[loc.Root]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownRoot, loc.Root)
	}
	k, err := registry.OpenKey(hive, loc.Path, registry.READ)
	if err != nil {
		return nil, mapRegistryErr(loc.String(), err)
	}
	return &windowsKey{key: k}, nil
}

type windowsKey struct {
	key registry.Key
}

func (k *windowsKey) SubKeyNames() ([]string, error) {
	return k.key.ReadSubKeyNames(-1)
}

func (k *windowsKey) OpenSubKey(name string) (domain.RegistryKey, error) {
	sub, err := registry.OpenKey(k.key, name, registry.READ)
	if err != nil {
		return nil, mapRegistryErr(name, err)
	}
	return &windowsKey{key: sub}, nil
}

func (k *windowsKey) StringValue(name string) (string, error) {
	val, _, err := k.key.GetStringValue(name)
	return val, err
}

func (k *windowsKey) IntegerValue(name string) (uint64, error) {
	val, _, err := k.key.GetIntegerValue(name)
	return val, err
}

func (k *windowsKey) Close() error {
	return k.key.Close()
}

func mapRegistryErr(path string, err error) error {
	if errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrLocationNotFound, path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

// Ensure WindowsRegistry implements domain.RegistryReader.
var _ domain.RegistryReader = (*WindowsRegistry)(nil)
