// Package usecase contains application business logic.
package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// Registry value names read from each uninstall entry.
const (
	valueDisplayName     = "DisplayName"
	valueUninstall       = "UninstallString"
	valueQuietUninstall  = "QuietUninstallString"
	valuePublisher       = "Publisher"
	valueDisplayVersion  = "DisplayVersion"
	valueInstallLocation = "InstallLocation"
	valueSystemComponent = "SystemComponent"
)

// ScanOptions tunes what the scanner keeps.
type ScanOptions struct {
	// HideSystemComponents drops entries flagged SystemComponent=1.
	HideSystemComponents bool
	Metrics              domain.MetricsRecorder
}

// ScannerImpl implements domain.Scanner.
type ScannerImpl struct {
	reader     domain.RegistryReader
	locations  []domain.RegistryLocation
	hideSystem bool
	metrics    domain.MetricsRecorder
	logger     *zap.Logger
}

// NewScanner creates a scanner over locations, enumerated in the given order.
func NewScanner(
	reader domain.RegistryReader,
	locations []domain.RegistryLocation,
	opts ScanOptions,
	logger *zap.Logger,
) domain.Scanner {
	locs := make([]domain.RegistryLocation, len(locations))
	copy(locs, locations)
	return &ScannerImpl{
		reader:     reader,
		locations:  locs,
		hideSystem: opts.HideSystemComponents,
		metrics:    metricsOrNop(opts.Metrics),
		logger:     logger,
	}
}

// Scan enumerates every location and returns the deduplicated inventory
// sorted case-insensitively by name. A location that does not exist is
// skipped; the scan fails only when no location could be reached at all.
func (s *ScannerImpl) Scan() ([]domain.ProgramRecord, error) {
	seen := make(map[domain.RecordKey]struct{})
	records := make([]domain.ProgramRecord, 0)
	reachable := 0
	var failures []error

	for _, loc := range s.locations {
		err := s.scanLocation(loc, func(rec domain.ProgramRecord) {
			key := rec.DedupKey()
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			records = append(records, rec)
		})

		switch {
		case err == nil:
			reachable++
		case errors.Is(err, domain.ErrLocationNotFound):
			reachable++
			s.logger.Debug("registry location absent", zap.Stringer("location", loc))
		default:
			failures = append(failures, err)
			s.logger.Warn("registry location unreachable",
				zap.Stringer("location", loc),
				zap.Error(err))
		}
	}

	if reachable == 0 {
		if len(failures) == 0 {
			return nil, fmt.Errorf("%w: no locations configured", domain.ErrNoRegistryRoot)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrNoRegistryRoot, errors.Join(failures...))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
	})

	s.metrics.ObserveScan(len(records))
	s.logger.Info("registry scan complete",
		zap.Int("records", len(records)),
		zap.Int("locations", len(s.locations)),
		zap.Int("unreachable", len(failures)))

	return records, nil
}

func (s *ScannerImpl) scanLocation(loc domain.RegistryLocation, emit func(domain.ProgramRecord)) error {
	key, err := s.reader.Open(loc)
	if err != nil {
		return err
	}
	defer key.Close()

	names, err := key.SubKeyNames()
	if err != nil {
		// The root answered; an unlistable location just contributes nothing.
		s.logger.Warn("failed to list registry subkeys",
			zap.Stringer("location", loc),
			zap.Error(err))
		return nil
	}

	for _, name := range names {
		if rec, ok := s.readEntry(key, loc, name); ok {
			emit(rec)
		}
	}
	return nil
}

// readEntry opens one child key and always closes it before returning.
func (s *ScannerImpl) readEntry(parent domain.RegistryKey, loc domain.RegistryLocation, name string) (domain.ProgramRecord, bool) {
	sub, err := parent.OpenSubKey(name)
	if err != nil {
		s.logger.Debug("failed to open uninstall entry",
			zap.Stringer("location", loc),
			zap.String("subkey", name),
			zap.Error(err))
		return domain.ProgramRecord{}, false
	}
	defer sub.Close()

	rec := domain.ProgramRecord{
		Name:                  readString(sub, valueDisplayName),
		UninstallCommand:      readString(sub, valueUninstall),
		QuietUninstallCommand: readString(sub, valueQuietUninstall),
		Publisher:             readString(sub, valuePublisher),
		Version:               readString(sub, valueDisplayVersion),
		InstallLocation:       readString(sub, valueInstallLocation),
		SourceKey:             loc.String() + `\` + name,
	}
	if rec.Name == "" {
		return domain.ProgramRecord{}, false
	}
	if s.hideSystem && isSystemComponent(sub) {
		return domain.ProgramRecord{}, false
	}
	return rec, true
}

// readString degrades any read failure to "".
func readString(key domain.RegistryKey, name string) string {
	val, err := key.StringValue(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(val)
}

func isSystemComponent(key domain.RegistryKey) bool {
	val, err := key.IntegerValue(valueSystemComponent)
	return err == nil && val == 1
}

// Ensure ScannerImpl implements domain.Scanner.
var _ domain.Scanner = (*ScannerImpl)(nil)
