package character_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dianahille/pyphoria/internal/game/character"
)

func ptr[T any](v T) *T { return &v }

func TestBuild_Defaults(t *testing.T) {
	c, err := character.Build(" Ada ", "Lovelace", "human")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "Ada Lovelace", c.FullName())
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.Experience)
	assert.Equal(t, 10, c.Energy)
	assert.Equal(t, character.Attributes{Strength: 1, Dexterity: 1, Intelligence: 1}, c.Attributes)
	assert.Zero(t, c.LootChance)
}

func TestBuild_UniqueIDs(t *testing.T) {
	a, err := character.Build("A", "", "human")
	require.NoError(t, err)
	b, err := character.Build("A", "", "human")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "A", a.FullName())
}

func TestBuild_RejectsBadNames(t *testing.T) {
	_, err := character.Build("  ", "x", "human")
	assert.Error(t, err)

	_, err = character.Build(strings.Repeat("a", 51), "x", "human")
	assert.Error(t, err)

	_, err = character.Build("a", strings.Repeat("b", 51), "human")
	assert.Error(t, err)
}

func TestLootProfile(t *testing.T) {
	c, err := character.Build("Ada", "", "human")
	require.NoError(t, err)
	c.Level = 12
	c.LootChance = 0.5
	c.LootQuality = 2

	p := c.LootProfile()
	assert.Equal(t, c.ID, p.ID)
	assert.Equal(t, 12, p.Level)
	assert.Equal(t, 0.5, p.Modifiers.Chance)
	assert.Equal(t, 2.0, p.Modifiers.Quality)
}

func TestPatch_AppliesOnlySetFields(t *testing.T) {
	c, err := character.Build("Ada", "Lovelace", "human")
	require.NoError(t, err)
	id := c.ID

	err = character.Patch{Level: ptr(7), LootQuality: ptr(1.5), Surname: ptr("King")}.Apply(c)
	require.NoError(t, err)

	assert.Equal(t, id, c.ID)
	assert.Equal(t, 7, c.Level)
	assert.Equal(t, 1.5, c.LootQuality)
	assert.Equal(t, "King", c.Surname)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, 10, c.Energy)
}

func TestPatch_InvalidLeavesCharacterUnchanged(t *testing.T) {
	c, err := character.Build("Ada", "Lovelace", "human")
	require.NoError(t, err)
	before := *c

	err = character.Patch{Level: ptr(0), Energy: ptr(50)}.Apply(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level must be >= 1")
	assert.Equal(t, before, *c)
}

func TestPatch_Validate(t *testing.T) {
	cases := []struct {
		name  string
		patch character.Patch
		ok    bool
	}{
		{"empty", character.Patch{}, true},
		{"blank name", character.Patch{Name: ptr(" ")}, false},
		{"negative energy", character.Patch{Energy: ptr(-1)}, false},
		{"negative strength", character.Patch{Strength: ptr(-3)}, false},
		{"chance below -1", character.Patch{LootChance: ptr(-1.5)}, false},
		{"quality -1", character.Patch{LootQuality: ptr(-1.0)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, character.Patch{}.Empty())
	assert.False(t, character.Patch{Level: ptr(2)}.Empty())
}

func TestProperty_ValidLevelPatchApplies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 1000).Draw(rt, "level")
		c, err := character.Build("Ada", "", "human")
		require.NoError(rt, err)
		require.NoError(rt, character.Patch{Level: &level}.Apply(c))
		assert.Equal(rt, level, c.Level)
	})
}
