package services

import (
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
)

func TestNextVersionNumberStartsAtOne(t *testing.T) {
	assert.Equal(t, 1, nextVersionNumber(nil))
	assert.Equal(t, 1, nextVersionNumber([]models.Version{}))
}

func TestNextVersionNumberIncrementsPastMax(t *testing.T) {
	versions := []models.Version{
		{VersionNumber: 1},
		{VersionNumber: 2},
		{VersionNumber: 3},
	}
	assert.Equal(t, 4, nextVersionNumber(versions))
}

func TestNextVersionNumberUnorderedList(t *testing.T) {
	// Restore backups are appended after older snapshots, so the list
	// is not necessarily sorted.
	versions := []models.Version{
		{VersionNumber: 3},
		{VersionNumber: 1},
		{VersionNumber: 5},
		{VersionNumber: 2},
	}
	assert.Equal(t, 6, nextVersionNumber(versions))
}

func TestNextVersionNumberSequence(t *testing.T) {
	var versions []models.Version
	for i := 1; i <= 5; i++ {
		n := nextVersionNumber(versions)
		assert.Equal(t, i, n)
		versions = append(versions, models.Version{VersionNumber: n})
	}
}

func TestCurrentVersionNumberDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, currentVersionNumber(nil))
	assert.Equal(t, 1, currentVersionNumber([]models.Version{}))
}

func TestCurrentVersionNumberIsHighestSnapshot(t *testing.T) {
	versions := []models.Version{
		{VersionNumber: 1},
		{VersionNumber: 2},
		{VersionNumber: 3},
	}
	assert.Equal(t, 3, currentVersionNumber(versions))
	// One behind what the next push would take.
	assert.Equal(t, nextVersionNumber(versions)-1, currentVersionNumber(versions))
}

func TestFindVersion(t *testing.T) {
	versions := []models.Version{
		{VersionNumber: 1, Remark: "Version 1"},
		{VersionNumber: 2, Remark: "before redesign"},
	}

	v, ok := findVersion(versions, 2)
	assert.True(t, ok)
	assert.Equal(t, "before redesign", v.Remark)

	_, ok = findVersion(versions, 7)
	assert.False(t, ok)
}
