package domain

import "errors"

var (
	// ErrNoRegistryRoot means not a single configured location could be reached.
	ErrNoRegistryRoot = errors.New("no registry root reachable")

	// ErrLocationNotFound is returned by RegistryReader when a location does not exist.
	ErrLocationNotFound = errors.New("registry location not found")

	// ErrUnknownRoot is returned for hive names that are not recognised.
	ErrUnknownRoot = errors.New("unknown registry root")

	// ErrEmptySelection rejects an uninstall request with no records.
	ErrEmptySelection = errors.New("no programs selected")

	// ErrExecutableNotFound wraps launch failures caused by a missing executable.
	ErrExecutableNotFound = errors.New("executable not found")

	// ErrElevationUnsupported is returned where no privileged launch facility exists.
	ErrElevationUnsupported = errors.New("elevated launch not supported on this platform")

	// ErrUnsupportedPlatform is returned by platform adapters that have no implementation here.
	ErrUnsupportedPlatform = errors.New("not supported on this platform")
)
