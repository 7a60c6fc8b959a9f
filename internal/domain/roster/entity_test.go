package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantau-kelas/monitoring-hub/internal/domain/shared"
)

func TestNewClassRoster(t *testing.T) {
	class, err := NewClassRoster(NewClassParams{
		ID:              "7-A",
		Name:            "7 - A",
		HomeroomTeacher: "Budi Santoso, S.Pd",
		Students: []Student{
			{ID: "7A-1", Name: "Ahmad"},
			{ID: "7A-2", Name: "Budi"},
		},
	})
	require.NoError(t, err)

	assert.True(t, class.Custom)
	assert.True(t, class.IsScorable())
	assert.Equal(t, 2, class.Size())
}

func TestNewClassRoster_Validation(t *testing.T) {
	valid := NewClassParams{
		ID:   "7-A",
		Name: "7 - A",
		Students: []Student{
			{ID: "7A-1", Name: "Ahmad"},
		},
	}

	empty := valid
	empty.Name = "  "
	_, err := NewClassRoster(empty)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	noStudents := valid
	noStudents.Students = nil
	_, err = NewClassRoster(noStudents)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	dup := valid
	dup.Students = []Student{
		{ID: "7A-1", Name: "Ahmad"},
		{ID: "7A-1", Name: "Budi"},
	}
	_, err = NewClassRoster(dup)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSeedClasses(t *testing.T) {
	classes := SeedClasses()
	require.Len(t, classes, 16)

	names := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		assert.True(t, c.IsScorable(), "seed class %s has no students", c.Name)
		assert.False(t, c.Custom)
		assert.NotEmpty(t, c.HomeroomTeacher)

		_, dup := names[c.Name]
		assert.False(t, dup, "duplicate class name %s", c.Name)
		names[c.Name] = struct{}{}

		ids := make(map[string]struct{}, len(c.Students))
		for _, st := range c.Students {
			assert.NotEmpty(t, st.Name)
			_, dup := ids[st.ID]
			assert.False(t, dup, "duplicate student id %s in %s", st.ID, c.Name)
			ids[st.ID] = struct{}{}
		}
	}
}

func TestSeedClasses_ReturnsFreshCopies(t *testing.T) {
	first := SeedClasses()
	first[0].Students[0].Name = "changed"

	second := SeedClasses()
	assert.Equal(t, "Abharina Azzuhra", second[0].Students[0].Name)
}

func TestSeedClasses_KnownRosters(t *testing.T) {
	classes := SeedClasses()

	byName := make(map[string]*ClassRoster)
	for _, c := range classes {
		byName[c.Name] = c
	}

	require.Contains(t, byName, "4 - A")
	assert.Equal(t, 33, byName["4 - A"].Size())
	assert.Equal(t, "4A-1", byName["4 - A"].Students[0].ID)

	require.Contains(t, byName, "1-Intensif Putra")
	assert.Equal(t, 9, byName["1-Intensif Putra"].Size())

	require.Contains(t, byName, "3-Intensif IPS")
	assert.Equal(t, 13, byName["3-Intensif IPS"].Size())
	assert.Equal(t, "Doni Subianto, SE", byName["3-Intensif IPS"].HomeroomTeacher)
}
