package usecase

import (
	"fmt"
	"strings"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

// Filter keeps records whose name, publisher or version contains query,
// case-insensitively. An empty query keeps everything.
func Filter(records []domain.ProgramRecord, query string) []domain.ProgramRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]domain.ProgramRecord, 0, len(records))
	for _, r := range records {
		hay := strings.ToLower(r.Name + " " + r.Publisher + " " + r.Version)
		if strings.Contains(hay, q) {
			out = append(out, r)
		}
	}
	return out
}

// Select returns the records named by names, in inventory order. Names match
// case-insensitively and a name may match several records. Every name must
// match at least one record.
func Select(records []domain.ProgramRecord, names []string) ([]domain.ProgramRecord, error) {
	if len(names) == 0 {
		return nil, domain.ErrEmptySelection
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = false
	}

	out := make([]domain.ProgramRecord, 0, len(names))
	for _, r := range records {
		key := strings.ToLower(r.Name)
		if _, ok := wanted[key]; ok {
			wanted[key] = true
			out = append(out, r)
		}
	}

	for _, n := range names {
		if !wanted[strings.ToLower(strings.TrimSpace(n))] {
			return nil, fmt.Errorf("no installed program named %q", n)
		}
	}
	return out, nil
}
