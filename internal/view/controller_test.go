package view

import (
	"errors"
	"testing"

	"github.com/nconklindev/er2view/internal/moderator"
	"github.com/nconklindev/er2view/internal/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []moderator.Moderator {
	return []moderator.Moderator{
		{Type: types.KindSolid, Mod: "Thermal", ID: "graphite", Absorption: moderator.Num(0.1)},
		{Type: types.KindSolid, Mod: "Basic", ID: "lead", Absorption: moderator.Num(0.2)},
		{Type: types.KindFluid, Mod: "Basic", ID: "water", Absorption: moderator.Missing()},
		{Type: types.KindFluid, Mod: "Mekanism", ID: "steam", Absorption: moderator.Num(0.4)},
	}
}

func rowIDs(c *Controller) []string {
	var out []string
	for _, r := range c.Rows() {
		out = append(out, r.ID)
	}
	return out
}

func TestNew_InitialView(t *testing.T) {
	c := New(records(), zerolog.Nop())

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, []string{"Basic", "Mekanism", "Thermal"}, c.Mods())
	assert.Equal(t, []string{"graphite", "lead", "water", "steam"}, rowIDs(c))
	assert.Empty(t, c.SelectedMods())
	assert.Empty(t, c.SortField())
	assert.False(t, c.Done())
}

func TestHandle_SelectionWaitsForUpdate(t *testing.T) {
	c := New(records(), zerolog.Nop())

	require.NoError(t, c.Handle(ToggleMod{Mod: "Basic"}))
	assert.True(t, c.Selected("Basic"))
	assert.Equal(t, []string{"graphite", "lead", "water", "steam"}, rowIDs(c))
	assert.Empty(t, c.AppliedMods())

	require.NoError(t, c.Handle(Update{}))
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, []string{"lead", "water"}, rowIDs(c))
	assert.Equal(t, []string{"Basic"}, c.AppliedMods())

	require.NoError(t, c.Handle(ToggleMod{Mod: "Basic"}))
	require.NoError(t, c.Handle(Update{}))
	assert.Len(t, c.Rows(), 4)
}

func TestHandle_SortRendersImmediately(t *testing.T) {
	c := New(records(), zerolog.Nop())

	require.NoError(t, c.Handle(SelectMods{Mods: []string{"Basic", "Mekanism"}}))
	require.NoError(t, c.Handle(SelectSort{Field: moderator.FieldAbsorption}))

	// Choosing a sort also applies the pending selection.
	assert.Equal(t, []string{"steam", "lead", "water"}, rowIDs(c))
	assert.Equal(t, moderator.FieldAbsorption, c.SortField())
}

func TestHandle_UnknownSortFieldIsRejected(t *testing.T) {
	c := New(records(), zerolog.Nop())
	require.NoError(t, c.Handle(SelectSort{Field: moderator.FieldID}))

	err := c.Handle(SelectSort{Field: "density"})
	assert.True(t, errors.Is(err, moderator.ErrUnknownField))
	assert.Equal(t, moderator.FieldID, c.SortField())
	assert.Equal(t, StateIdle, c.State())
}

func TestHandle_UnknownModsIgnored(t *testing.T) {
	c := New(records(), zerolog.Nop())

	require.NoError(t, c.Handle(ToggleMod{Mod: "Bogus"}))
	require.NoError(t, c.Handle(SelectMods{Mods: []string{"Bogus", "Thermal"}}))
	assert.Equal(t, []string{"Thermal"}, c.SelectedMods())
}

func TestHandle_Exit(t *testing.T) {
	c := New(records(), zerolog.Nop())

	require.NoError(t, c.Handle(Exit{}))
	assert.True(t, c.Done())
	assert.NoError(t, c.Handle(Exit{}))
	assert.ErrorIs(t, c.Handle(Update{}), ErrClosed)
	assert.ErrorIs(t, c.Handle(ToggleMod{Mod: "Basic"}), ErrClosed)
}

func TestHandle_DoesNotMutateRecords(t *testing.T) {
	recs := records()
	c := New(recs, zerolog.Nop())

	require.NoError(t, c.Handle(SelectSort{Field: moderator.FieldAbsorption}))
	assert.Equal(t, records(), recs)
	assert.Equal(t, records(), c.Records())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "rendering", StateRendering.String())
	assert.Equal(t, "State(7)", State(7).String())
}
