package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs", "query-log.db")

	repo, err := NewSQLiteQueryRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	now := time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC)
	testData := []entities.QueryRecord{
		{ID: "q-1", AskedAt: now, Question: "What is the current power generation?", Intent: entities.IntentGeneration, Outcome: entities.OutcomeAnswered},
		{ID: "q-2", AskedAt: now.Add(time.Minute), Question: "spot prices?", Intent: entities.IntentPrice, Outcome: entities.OutcomeFailed, Error: "prices data unavailable"},
		{ID: "q-3", AskedAt: now.Add(2 * time.Minute), Question: "hello", Intent: entities.IntentOverview, Outcome: entities.OutcomeAnswered},
	}
	for _, rec := range testData {
		require.NoError(t, repo.RecordQuery(rec))
	}

	recent, err := repo.RecentQueries(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "q-3", recent[0].ID)
	assert.Equal(t, "q-2", recent[1].ID)
	assert.Equal(t, entities.IntentPrice, recent[1].Intent)
	assert.Equal(t, "prices data unavailable", recent[1].Error)
	assert.True(t, recent[1].AskedAt.Equal(now.Add(time.Minute)), "asked_at %s", recent[1].AskedAt)
	assert.Empty(t, recent[0].Error)

	counts, err := repo.CountByOutcome()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{entities.OutcomeAnswered: 2, entities.OutcomeFailed: 1}, counts)
}

func TestQueryLogInMemory(t *testing.T) {
	repo, err := NewSQLiteQueryRepository("")
	require.NoError(t, err)
	defer repo.Close()
	assert.Equal(t, MemoryPath, repo.DBPath)

	require.NoError(t, repo.RecordQuery(entities.QueryRecord{
		Question: "carbon?", Intent: entities.IntentCarbon, Outcome: entities.OutcomeAnswered,
	}))

	recent, err := repo.RecentQueries(0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.NotEmpty(t, recent[0].ID)
	assert.False(t, recent[0].AskedAt.IsZero())
}

func TestQueryLogDuplicateID(t *testing.T) {
	repo, err := NewSQLiteQueryRepository(MemoryPath)
	require.NoError(t, err)
	defer repo.Close()

	rec := entities.QueryRecord{ID: "same", Question: "q", Intent: entities.IntentOverview, Outcome: entities.OutcomeAnswered}
	require.NoError(t, repo.RecordQuery(rec))
	assert.Error(t, repo.RecordQuery(rec))
}
