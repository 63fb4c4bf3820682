package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
)

// Summarizer is the external AI collaborator. We pass prompts through and
// take the reply at face value; model behavior is not our concern.
type Summarizer interface {
	ChatCompletion(ctx context.Context, system, user string, temperature float64) (string, error)
}

// fallbackRecommendations is served when the collaborator is unreachable.
var fallbackRecommendations = []string{
	"Track your symptoms consistently to identify patterns",
	"Maintain a regular sleep schedule",
	"Stay hydrated throughout the day",
	"Consider stress management techniques",
	"Consult your healthcare provider for personalized advice",
}

// InsightsService turns symptom history into patterns, summaries and
// recommendations via the external model.
type InsightsService struct {
	logs       SymptomLogStore
	summarizer Summarizer
}

func NewInsightsService(logs SymptomLogStore, summarizer Summarizer) *InsightsService {
	return &InsightsService{logs: logs, summarizer: summarizer}
}

// AnalyzeSymptomPatterns asks the model for patterns in the user's recent
// diary entries.
func (s *InsightsService) AnalyzeSymptomPatterns(ctx context.Context, userID primitive.ObjectID) ([]models.SymptomPattern, error) {
	logs, err := s.logs.GetUserLogs(ctx, userID, defaultLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load symptom logs: %v", err)
	}
	if len(logs) == 0 {
		return []models.SymptomPattern{}, nil
	}

	prompt := buildPatternPrompt(logs)
	system := "You are a health data analyst. Provide insights based on symptom patterns. " +
		"Always include confidence levels and suggest consulting healthcare providers for medical decisions. " +
		"Return a JSON array of objects with fields: pattern, frequency, common_triggers, suggested_actions, confidence."

	reply, err := s.summarizer.ChatCompletion(ctx, system, prompt, 0.3)
	if err != nil {
		logrus.WithError(err).Error("Pattern analysis request failed")
		return nil, fmt.Errorf("pattern analysis failed: %v", err)
	}

	var patterns []models.SymptomPattern
	if err := json.Unmarshal([]byte(extractJSON(reply)), &patterns); err != nil {
		logrus.WithError(err).Warn("Pattern analysis reply was not valid JSON")
		return nil, fmt.Errorf("failed to decode pattern analysis: %v", err)
	}
	return patterns, nil
}

// GenerateRecommendations produces personalized management suggestions,
// falling back to generic guidance when the collaborator fails.
func (s *InsightsService) GenerateRecommendations(ctx context.Context, user *models.User) []string {
	logs, err := s.logs.GetUserLogs(ctx, user.ID, 10)
	if err != nil || len(logs) == 0 {
		return fallbackRecommendations
	}

	prompt := fmt.Sprintf(
		"Based on these symptom logs and health conditions (%s), provide 3-5 personalized health management recommendations.\n\nRecent logs:\n%s\n\nReturn a JSON array of recommendation strings.",
		strings.Join(user.SelectedConditions, ", "),
		formatLogs(logs),
	)
	system := "You are a health coach providing evidence-based lifestyle recommendations. " +
		"Always emphasize consulting healthcare providers for medical decisions."

	reply, err := s.summarizer.ChatCompletion(ctx, system, prompt, 0.4)
	if err != nil {
		logrus.WithError(err).Warn("Recommendation request failed, using fallback")
		return fallbackRecommendations
	}

	var recommendations []string
	if err := json.Unmarshal([]byte(extractJSON(reply)), &recommendations); err != nil || len(recommendations) == 0 {
		return fallbackRecommendations
	}
	return recommendations
}

// SummarizeTrend condenses a piece of health news for a user's conditions.
func (s *InsightsService) SummarizeTrend(ctx context.Context, title, content string, conditions []string) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize this health research/news for someone with %s:\n\nTitle: %s\nContent: %s\n\nKeep it under 200 words and accessible to non-medical professionals.",
		strings.Join(conditions, ", "), title, content,
	)
	system := "You are a health information specialist. Summarize complex medical information " +
		"in accessible language while maintaining accuracy."

	summary, err := s.summarizer.ChatCompletion(ctx, system, prompt, 0.4)
	if err != nil {
		return "", fmt.Errorf("trend summary failed: %v", err)
	}
	return summary, nil
}

func buildPatternPrompt(logs []models.SymptomLog) string {
	var b strings.Builder
	b.WriteString("Analyze the following symptom logs and identify patterns:\n")
	b.WriteString(formatLogs(logs))
	b.WriteString("\nPlease identify common symptom patterns, potential triggers, suggested actions for management, and your confidence level.")
	return b.String()
}

func formatLogs(logs []models.SymptomLog) string {
	var b strings.Builder
	for _, log := range logs {
		fmt.Fprintf(&b, "\nDate: %s\nSymptoms: %s\nTriggers: %s\nSeverity: %d/10\n",
			log.Timestamp.Format("2006-01-02"),
			strings.Join(log.Symptoms, ", "),
			strings.Join(log.Triggers, ", "),
			log.Severity,
		)
		if log.Notes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", log.Notes)
		}
	}
	return b.String()
}

// extractJSON strips markdown fences models sometimes wrap around JSON.
func extractJSON(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return strings.TrimSpace(trimmed)
}
