package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNewItem(t *testing.T) {
	order := DefaultOrder()
	existing := sampleCatalog()
	order.Sort(existing)

	updated, added, err := existing.Add(Item{ID: 9999, Shortname: "weapon.new", Name: "New Gun"}, order)
	require.NoError(t, err)

	assert.Len(t, updated, len(existing)+1)
	assert.True(t, order.IsSorted(updated.Shortnames()))
	assert.Equal(t, Item{ID: 9999, Shortname: "weapon.new", Name: "New Gun", Description: ""}, added)

	found, ok := updated.FindByID(9999)
	require.True(t, ok)
	assert.Equal(t, "weapon.new", found.Shortname)

	// The receiver is left untouched.
	assert.Len(t, existing, 3)
}

func TestAddInsertsInOrder(t *testing.T) {
	order := DefaultOrder()
	existing := sampleCatalog()
	order.Sort(existing)

	updated, _, err := existing.Add(Item{ID: 5, Shortname: "pistol.m92", Name: "M92 Pistol"}, order)
	require.NoError(t, err)
	assert.Equal(t, []string{"axe.salvaged", "pistol.m92", "rifle.ak", "rifle.bolt"}, updated.Shortnames())
}

func TestAddRejectsDuplicateID(t *testing.T) {
	existing := sampleCatalog()

	_, _, err := existing.Add(Item{ID: 1545779598, Shortname: "rifle.ak47u", Name: "AK47u"}, DefaultOrder())
	require.Error(t, err)

	var dupErr *DuplicateIDError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, int64(1545779598), dupErr.ID)
	assert.Equal(t, "Assault Rifle", dupErr.Existing.Name)
	assert.Contains(t, err.Error(), "already exists")
	assert.True(t, IsDuplicate(err))
}

func TestAddRejectsDuplicateShortname(t *testing.T) {
	existing := sampleCatalog()

	_, _, err := existing.Add(Item{ID: 77, Shortname: "  rifle.ak ", Name: "Another AK"}, DefaultOrder())
	require.Error(t, err)

	var dupErr *DuplicateShortnameError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "rifle.ak", dupErr.Shortname)
	assert.True(t, IsDuplicate(err))
}

func TestAddRequiresShortnameAndName(t *testing.T) {
	existing := sampleCatalog()

	_, _, err := existing.Add(Item{ID: 1, Shortname: "   ", Name: "Blank"}, DefaultOrder())
	assert.ErrorIs(t, err, ErrEmptyShortname)

	_, _, err = existing.Add(Item{ID: 1, Shortname: "blank", Name: "\t"}, DefaultOrder())
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.False(t, IsDuplicate(err))
}

func TestNormalizeTrimsAndComposes(t *testing.T) {
	item := Normalize(Item{
		ID:          1,
		Shortname:   " hat.cafe\u0301 ",
		Name:        " Cafe\u0301 Hat ",
		Description: "  worn  ",
	})
	assert.Equal(t, "hat.caf\u00e9", item.Shortname)
	assert.Equal(t, "Caf\u00e9 Hat", item.Name)
	assert.Equal(t, "worn", item.Description)
}

func TestAddRejectsZeroID(t *testing.T) {
	_, _, err := sampleCatalog().Add(Item{ID: 0, Shortname: "weapon.new", Name: "New Gun"}, DefaultOrder())
	assert.ErrorIs(t, err, ErrZeroID)
	assert.False(t, IsDuplicate(err))
}

func TestAddRejectsPathLikeShortname(t *testing.T) {
	existing := sampleCatalog()

	for _, shortname := range []string{"sub/x", `sub\x`, "..", "../escape", "a..b"} {
		t.Run(shortname, func(t *testing.T) {
			_, _, err := existing.Add(Item{ID: 9999, Shortname: shortname, Name: "X"}, DefaultOrder())
			assert.ErrorIs(t, err, ErrInvalidShortname)
		})
	}
}

func TestValidShortname(t *testing.T) {
	assert.True(t, ValidShortname("rifle.ak"))
	assert.True(t, ValidShortname("hat.café"))
	assert.False(t, ValidShortname("sub/x"))
	assert.False(t, ValidShortname(`sub\x`))
	assert.False(t, ValidShortname("x..png"))
}
