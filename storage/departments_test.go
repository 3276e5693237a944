package storage

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentSet(t *testing.T) {
	t.Run("add rejects blanks and case-insensitive duplicates", func(t *testing.T) {
		set := newDepartmentSet([]string{"General", "Cardiology"})

		assert.ErrorIs(t, set.add("   "), ErrEmptyDepartmentName)
		assert.ErrorIs(t, set.add("cardiology"), ErrDepartmentExists)
		assert.ErrorIs(t, set.add(" GENERAL "), ErrInvalidOperation)

		require.NoError(t, set.add("  Oncology "))
		assert.Equal(t, []string{"General", "Cardiology", "Oncology"}, set.list())
	})

	t.Run("rename keeps position and reports the stored name", func(t *testing.T) {
		set := newDepartmentSet([]string{"General", "Cardiology", "Oncology"})

		previous, current, err := set.rename("CARDIOLOGY", "Heart")
		require.NoError(t, err)
		assert.Equal(t, "Cardiology", previous)
		assert.Equal(t, "Heart", current)
		assert.Equal(t, []string{"General", "Heart", "Oncology"}, set.list())

		_, _, err = set.rename("Heart", "oncology")
		assert.ErrorIs(t, err, ErrDepartmentExists)
		_, _, err = set.rename("Missing", "Other")
		assert.ErrorIs(t, err, ErrDepartmentNotFound)
		_, _, err = set.rename("Heart", " ")
		assert.ErrorIs(t, err, ErrEmptyDepartmentName)
	})

	t.Run("rename may change only the casing", func(t *testing.T) {
		set := newDepartmentSet([]string{"General", "cardiology"})

		previous, current, err := set.rename("cardiology", "Cardiology")
		require.NoError(t, err)
		assert.Equal(t, "cardiology", previous)
		assert.Equal(t, "Cardiology", current)
		assert.Equal(t, []string{"General", "Cardiology"}, set.list())
	})

	t.Run("remove falls back to the new first entry", func(t *testing.T) {
		set := newDepartmentSet([]string{"General", "Cardiology", "Oncology"})

		removed, fallback, err := set.remove("general")
		require.NoError(t, err)
		assert.Equal(t, "General", removed)
		assert.Equal(t, "Cardiology", fallback)
		assert.Equal(t, []string{"Cardiology", "Oncology"}, set.list())
	})

	t.Run("remove refuses the last department", func(t *testing.T) {
		set := newDepartmentSet([]string{"General"})

		_, _, err := set.remove("General")
		assert.ErrorIs(t, err, ErrLastDepartment)
		assert.ErrorIs(t, err, ErrInvalidOperation)
		assert.Equal(t, []string{"General"}, set.list())

		_, _, err = set.remove("Other")
		assert.ErrorIs(t, err, ErrDepartmentNotFound)
	})
}

func TestNormalizeDepartments(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil gets defaults", in: nil, want: []string{"General", "Administration"}},
		{name: "blanks only get defaults", in: []string{" ", ""}, want: []string{"General", "Administration"}},
		{name: "trims and dedups", in: []string{" ER ", "er", "Lab"}, want: []string{"ER", "Lab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeDepartments(tt.in))
		})
	}
}

func departmentOf(t *testing.T, env testEnv, id uint) *string {
	t.Helper()
	thought, err := env.store.GetThought(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, thought)
	return thought.Department
}

func TestAddThenRemoveDepartmentRestoresList(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env testEnv) {
		ctx := context.Background()
		clinic := seedClinic(t, env, "North", "General", "Cardiology")

		require.NoError(t, env.store.AddDepartment(ctx, clinic.ID, "Radiology"))
		departments, err := env.store.GetDepartments(ctx, clinic.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"General", "Cardiology", "Radiology"}, departments)

		require.NoError(t, env.store.RemoveDepartment(ctx, clinic.ID, "radiology"))
		departments, err = env.store.GetDepartments(ctx, clinic.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"General", "Cardiology"}, departments)
	})
}

func TestResolveDepartment(t *testing.T) {
	departments := []string{"General", "Front Desk"}

	name, err := ResolveDepartment(departments, "  front desk ")
	require.NoError(t, err)
	assert.Equal(t, "Front Desk", name)

	_, err = ResolveDepartment(departments, "Basement")
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
	_, err = ResolveDepartment(departments, " ")
	assert.ErrorIs(t, err, ErrEmptyDepartmentName)
}

func TestDepartmentErrors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env testEnv) {
		ctx := context.Background()
		clinic := seedClinic(t, env, "North", "General")

		assert.ErrorIs(t, env.store.AddDepartment(ctx, clinic.ID, "general"), ErrDepartmentExists)
		assert.ErrorIs(t, env.store.AddDepartment(ctx, clinic.ID, " "), ErrEmptyDepartmentName)
		assert.ErrorIs(t, env.store.UpdateDepartment(ctx, clinic.ID, "Missing", "X"), ErrDepartmentNotFound)
		assert.ErrorIs(t, env.store.RemoveDepartment(ctx, clinic.ID, "General"), ErrLastDepartment)

		assert.ErrorIs(t, env.store.AddDepartment(ctx, 999, "X"), ErrNotFound)
		assert.ErrorIs(t, env.store.UpdateDepartment(ctx, 999, "General", "X"), ErrNotFound)
		assert.ErrorIs(t, env.store.RemoveDepartment(ctx, 999, "General"), ErrNotFound)

		departments, err := env.store.GetDepartments(ctx, clinic.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"General"}, departments)

		unknown, err := env.store.GetDepartments(ctx, 999)
		require.NoError(t, err)
		assert.Equal(t, []string{"General"}, unknown)
	})
}

func TestRenameDepartmentCascadesWithinClinic(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env testEnv) {
		ctx := context.Background()
		north := seedClinic(t, env, "North", "General", "Cardiology")
		south := seedClinic(t, env, "South", "General", "Cardiology")
		alice := seedUser(t, env, north.ID, "alice")
		carol := seedUser(t, env, south.ID, "carol")

		moved := seedThought(t, env, north.ID, alice.ID, "moved", strPtr("Cardiology"))
		stays := seedThought(t, env, north.ID, alice.ID, "stays", strPtr("General"))
		none := seedThought(t, env, north.ID, alice.ID, "none", nil)
		elsewhere := seedThought(t, env, south.ID, carol.ID, "elsewhere", strPtr("Cardiology"))

		require.NoError(t, env.store.UpdateDepartment(ctx, north.ID, "cardiology", "Heart"))

		departments, err := env.store.GetDepartments(ctx, north.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"General", "Heart"}, departments)

		assert.Equal(t, "Heart", *departmentOf(t, env, moved.ID))
		assert.Equal(t, "General", *departmentOf(t, env, stays.ID))
		assert.Nil(t, departmentOf(t, env, none.ID))
		assert.Equal(t, "Cardiology", *departmentOf(t, env, elsewhere.ID))

		// Cascades are structural: no edit count and no history
		cascaded, err := env.store.GetThought(ctx, moved.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, cascaded.EditCount)
		history, err := env.store.GetThoughtHistory(ctx, moved.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}

func TestRemoveDepartmentReassignsToFirst(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env testEnv) {
		ctx := context.Background()
		clinic := seedClinic(t, env, "North", "General", "Cardiology", "Oncology")
		alice := seedUser(t, env, clinic.ID, "alice")

		general := seedThought(t, env, clinic.ID, alice.ID, "general", strPtr("General"))
		oncology := seedThought(t, env, clinic.ID, alice.ID, "oncology", strPtr("Oncology"))

		require.NoError(t, env.store.RemoveDepartment(ctx, clinic.ID, "General"))
		assert.Equal(t, "Cardiology", *departmentOf(t, env, general.ID))
		assert.Equal(t, "Oncology", *departmentOf(t, env, oncology.ID))

		require.NoError(t, env.store.RemoveDepartment(ctx, clinic.ID, "Cardiology"))
		assert.Equal(t, "Oncology", *departmentOf(t, env, general.ID))

		err := env.store.RemoveDepartment(ctx, clinic.ID, "Oncology")
		assert.ErrorIs(t, err, ErrLastDepartment)
		departments, err := env.store.GetDepartments(ctx, clinic.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Oncology"}, departments)
		assert.Equal(t, "Oncology", *departmentOf(t, env, general.ID))
	})
}

func TestDepartmentListNeverEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env testEnv) {
		ctx := context.Background()
		clinic := seedClinic(t, env, "North")
		alice := seedUser(t, env, clinic.ID, "alice")
		thought := seedThought(t, env, clinic.ID, alice.ID, "tracked", strPtr("General"))

		names := []string{"General", "Administration", "Cardiology", "Lab", "ER", "lab", " "}
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 60; i++ {
			name := names[rng.Intn(len(names))]
			var err error
			switch rng.Intn(3) {
			case 0:
				err = env.store.AddDepartment(ctx, clinic.ID, name)
			case 1:
				err = env.store.RemoveDepartment(ctx, clinic.ID, name)
			default:
				err = env.store.UpdateDepartment(ctx, clinic.ID, name, names[rng.Intn(len(names))]+"x")
			}
			if err != nil {
				require.True(t, errors.Is(err, ErrInvalidOperation), "unexpected error: %v", err)
			}

			departments, err := env.store.GetDepartments(ctx, clinic.ID)
			require.NoError(t, err)
			require.NotEmpty(t, departments)

			stored, err := env.store.GetClinic(ctx, clinic.ID)
			require.NoError(t, err)
			require.NotEmpty(t, stored.Departments)

			// The tracked thought always points at a live department
			dept := departmentOf(t, env, thought.ID)
			require.NotNil(t, dept)
			assert.Contains(t, []string(stored.Departments), *dept)
		}
	})
}

func TestCreateThoughtKeepsUnknownDepartment(t *testing.T) {
	forEachBackend(t, func(t *testing.T, env testEnv) {
		clinic := seedClinic(t, env, "North")
		alice := seedUser(t, env, clinic.ID, "alice")

		thought, err := env.store.CreateThought(context.Background(), dto.InsertThought{
			ClinicID:   clinic.ID,
			Title:      "Free form",
			Content:    "Unlisted department",
			Category:   "facilities",
			Department: strPtr("Basement"),
		}, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Basement", *thought.Department)
		assert.Equal(t, "facilities", thought.Category)
		assert.Equal(t, models.ChangeCreated, mustHistory(t, env, thought.ID)[0].ChangeType)
	})
}

func mustHistory(t *testing.T, env testEnv, id uint) []dto.HistoryEntry {
	t.Helper()
	history, err := env.store.GetThoughtHistory(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	return history
}
