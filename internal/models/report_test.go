package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"botstats/internal/models"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	t.Parallel()

	r := &models.StatsReport{ServerID: "abc"}
	r.Normalize()

	assert.Equal(t, models.UnknownVersion, r.ModVersion)
	assert.Equal(t, models.UnknownVersion, r.MinecraftVersion)
	assert.Equal(t, models.UnknownVersion, r.ServerCore)
	assert.NotNil(t, r.BotsList)
	assert.Empty(t, r.BotsList)
	assert.NotNil(t, r.PlayersList)
	assert.Empty(t, r.PlayersList)
	assert.Zero(t, r.BotsCount)
	assert.Zero(t, r.BotsSpawnedTotal)
}

func TestNormalizeKeepsProvidedValues(t *testing.T) {
	t.Parallel()

	r := &models.StatsReport{
		ServerID:         "abc",
		ModVersion:       "1.4.2",
		MinecraftVersion: "1.20.1",
		ServerCore:       "paper",
		BotsList:         []string{"bot_steve"},
		PlayersList:      []models.PlayerEntry{{Name: "alex", IsOp: true}},
	}
	r.Normalize()

	assert.Equal(t, "1.4.2", r.ModVersion)
	assert.Equal(t, "1.20.1", r.MinecraftVersion)
	assert.Equal(t, "paper", r.ServerCore)
	assert.Equal(t, []string{"bot_steve"}, r.BotsList)
	assert.Equal(t, []models.PlayerEntry{{Name: "alex", IsOp: true}}, r.PlayersList)
}

func TestServerRecordCloneIsDeep(t *testing.T) {
	t.Parallel()

	rec := &models.ServerRecord{
		BotsCount: 3,
		BotsList:  []string{"a", "b"},
		PlayersList: []models.PlayerEntry{
			{Name: "alex"},
		},
	}

	c := rec.Clone()
	rec.BotsList[0] = "mutated"
	rec.PlayersList[0].Name = "mutated"

	assert.Equal(t, "a", c.BotsList[0])
	assert.Equal(t, "alex", c.PlayersList[0].Name)
}
