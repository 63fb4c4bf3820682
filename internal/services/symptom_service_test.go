package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vistara-apps/healthsync/internal/models"
)

func TestCreateSymptomLog(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()

	t.Run("valid entry is stored with owner and timestamp", func(t *testing.T) {
		store := &fakeSymptomLogStore{}
		svc := NewSymptomService(store)

		created, err := svc.CreateLog(ctx, userID, &models.SymptomLog{
			Symptoms: []string{"headache", "nausea"},
			Triggers: []string{"stress"},
			Severity: 7,
			Mood:     4,
			TreatmentResponses: []models.TreatmentResponse{
				{Treatment: "rest", Effectiveness: 6},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, userID, created.UserID)
		assert.False(t, created.Timestamp.IsZero())
		assert.Len(t, store.logs, 1)
	})

	t.Run("entry without symptoms is rejected and nothing is stored", func(t *testing.T) {
		store := &fakeSymptomLogStore{}
		svc := NewSymptomService(store)

		_, err := svc.CreateLog(ctx, userID, &models.SymptomLog{Severity: 5})
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Empty(t, store.logs)
	})

	t.Run("severity outside 1-10 is rejected and nothing is stored", func(t *testing.T) {
		store := &fakeSymptomLogStore{}
		svc := NewSymptomService(store)

		_, err := svc.CreateLog(ctx, userID, &models.SymptomLog{
			Symptoms: []string{"headache"},
			Severity: 11,
		})
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Empty(t, store.logs)
	})

	t.Run("treatment effectiveness outside 1-10 is rejected", func(t *testing.T) {
		store := &fakeSymptomLogStore{}
		svc := NewSymptomService(store)

		_, err := svc.CreateLog(ctx, userID, &models.SymptomLog{
			Symptoms:           []string{"headache"},
			Severity:           5,
			TreatmentResponses: []models.TreatmentResponse{{Treatment: "rest", Effectiveness: 0}},
		})
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Empty(t, store.logs)
	})

	t.Run("caller-supplied timestamp is kept", func(t *testing.T) {
		store := &fakeSymptomLogStore{}
		svc := NewSymptomService(store)

		yesterday := time.Now().Add(-24 * time.Hour)
		created, err := svc.CreateLog(ctx, userID, &models.SymptomLog{
			Symptoms:  []string{"fatigue"},
			Severity:  3,
			Timestamp: yesterday,
		})
		require.NoError(t, err)
		assert.Equal(t, yesterday, created.Timestamp)
	})
}

func TestGetSymptomLogs(t *testing.T) {
	ctx := context.Background()
	store := &fakeSymptomLogStore{}
	svc := NewSymptomService(store)

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateLog(ctx, owner, &models.SymptomLog{Symptoms: []string{"headache"}, Severity: 5})
		require.NoError(t, err)
	}
	_, err := svc.CreateLog(ctx, stranger, &models.SymptomLog{Symptoms: []string{"cough"}, Severity: 2})
	require.NoError(t, err)

	t.Run("only the owner's entries come back", func(t *testing.T) {
		logs, err := svc.GetLogs(ctx, owner, 0)
		require.NoError(t, err)
		require.Len(t, logs, 3)
		for _, l := range logs {
			assert.Equal(t, owner, l.UserID)
		}
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		logs, err := svc.GetLogs(ctx, owner, 10_000)
		require.NoError(t, err)
		assert.Len(t, logs, 3)
	})
}
