package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/internal/services"
)

// TrendScanner is the content-ingestion collaborator: it turns freshly
// published catalog items into per-user trend alerts. Users who opted out of
// health trend notifications are skipped, and an alert is never created twice
// for the same source.
type TrendScanner struct {
	Users     services.UserStore
	Content   services.ContentStore
	Alerts    services.AlertStore
	Lifecycle *services.AlertService
}

// NewTrendScanner creates a new instance of TrendScanner.
func NewTrendScanner(users services.UserStore, content services.ContentStore, alerts services.AlertStore, lifecycle *services.AlertService) *TrendScanner {
	return &TrendScanner{
		Users:     users,
		Content:   content,
		Alerts:    alerts,
		Lifecycle: lifecycle,
	}
}

// RunScan matches content published in the last 24h against every user's
// selected conditions and creates alerts for the matches.
func (t *TrendScanner) RunScan(ctx context.Context) error {
	users, err := t.Users.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %v", err)
	}

	fresh, err := t.Content.GetContentSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to fetch recent content: %v", err)
	}
	if len(fresh) == 0 {
		return nil
	}

	created := 0
	for _, user := range users {
		if !user.NotificationPreferences.HealthTrends {
			continue
		}

		matches := services.FilterByConditions(fresh, user.SelectedConditions)
		for _, item := range matches {
			exists, err := t.Alerts.HasAlertForSource(ctx, user.ID, item.URL)
			if err != nil {
				logrus.WithError(err).Warn("Failed to check for existing alert")
				continue
			}
			if exists {
				continue
			}

			score := relevanceScore(item, user.SelectedConditions)
			alert := &models.HealthTrendAlert{
				UserID:         user.ID,
				Timestamp:      time.Now(),
				Title:          item.Title,
				Summary:        item.Summary,
				SourceURL:      item.URL,
				RelevanceScore: score,
				Category:       categoryFor(item.Type),
				Priority:       priorityFor(score),
			}
			if err := t.Lifecycle.CreateAlert(ctx, alert); err != nil {
				logrus.WithError(err).Warnf("Failed to create alert for user %s", user.ID.Hex())
				continue
			}
			created++
		}
	}

	logrus.WithFields(logrus.Fields{
		"fresh":   len(fresh),
		"created": created,
	}).Info("Trend scan completed")
	return nil
}

// relevanceScore is the fraction of an item's relevance set the user has
// selected. Universal items get a modest baseline.
func relevanceScore(item models.Content, selected []string) float64 {
	if len(item.RelevantConditions) == 0 {
		return 0.4
	}
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}
	overlap := 0
	for _, id := range item.RelevantConditions {
		if _, ok := set[id]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(item.RelevantConditions))
}

func categoryFor(contentType models.ContentType) models.AlertCategory {
	switch contentType {
	case models.ContentResearch:
		return models.AlertResearch
	case models.ContentVideo:
		return models.AlertLifestyle
	default:
		return models.AlertTreatment
	}
}

func priorityFor(score float64) models.AlertPriority {
	switch {
	case score >= 0.75:
		return models.PriorityHigh
	case score >= 0.4:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
