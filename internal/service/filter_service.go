package service

import (
	"strings"
	"time"

	"watercare/internal/models"
)

// Search returns the records matching a free-text query.
// Name, mobile and place match case-insensitively; tds and iron match as plain substrings.
// An empty or whitespace-only query returns records unchanged; otherwise the query is matched as typed.
func Search(records []models.CustomerRecord, query string) []models.CustomerRecord {
	if strings.TrimSpace(query) == "" {
		return records
	}
	q := query
	lower := strings.ToLower(q)

	result := make([]models.CustomerRecord, 0)
	for _, r := range records {
		if containsFold(r.CustomerName, lower) ||
			containsFold(r.Mobile, lower) ||
			containsFold(r.Place, lower) ||
			strings.Contains(r.TDS, q) ||
			strings.Contains(r.IronPPM, q) {
			result = append(result, r)
		}
	}
	return result
}

// ApplyFilters returns the records satisfying every predicate of criteria.
// Creation dates are compared in loc.
func ApplyFilters(records []models.CustomerRecord, criteria models.FilterCriteria, loc *time.Location) []models.CustomerRecord {
	if criteria.IsZero() {
		return records
	}

	place := strings.ToLower(criteria.Place)
	result := make([]models.CustomerRecord, 0)
	for i := range records {
		r := &records[i]

		switch criteria.InstallationStatus {
		case models.InstallationInstalled:
			if !r.FilterInstalled {
				continue
			}
		case models.InstallationNotInstalled:
			if r.FilterInstalled {
				continue
			}
		}

		if place != "" && !containsFold(r.Place, place) {
			continue
		}

		if criteria.Date != "" && r.CreatedDate(loc) != criteria.Date {
			continue
		}

		result = append(result, *r)
	}
	return result
}

// ParseInstallationStatus maps the query value of the installation filter.
// Empty means "all".
func ParseInstallationStatus(value string) (models.InstallationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(models.InstallationAll):
		return models.InstallationAll, true
	case string(models.InstallationInstalled):
		return models.InstallationInstalled, true
	case string(models.InstallationNotInstalled):
		return models.InstallationNotInstalled, true
	default:
		return "", false
	}
}

// containsFold reports whether s contains lowerSubstr, ignoring case. lowerSubstr must be lower case.
func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}
