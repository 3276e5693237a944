package services

import (
	"context"
	"testing"
	"time"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/models"
	"github.com/clinic-thoughts/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *storage.MemStorage
	auth     *AuthService
	setup    *SetupService
	thoughts *ThoughtService
	clinics  *ClinicService
	users    *UserService

	admin Actor
	alice Actor
	bob   Actor
	// outsider administers another clinic
	outsider Actor
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()
	store := storage.NewMemStorage(log)

	f := &fixture{
		store:    store,
		auth:     NewAuthService(store, "test-secret", log),
		setup:    NewSetupService(store, log),
		thoughts: NewThoughtService(store, log),
		clinics:  NewClinicService(store, log),
		users:    NewUserService(store, log),
	}

	result, err := f.setup.Setup(ctx, dto.SetupFirstAdminRequest{
		Username:   "admin",
		Email:      "admin@north.test",
		Password:   "admin-pass",
		ClinicName: "North",
	})
	require.NoError(t, err)
	f.admin = Actor{UserID: result.User.ID, Role: models.RoleAdmin, ClinicID: result.User.ClinicID}

	register := func(username string, clinicID uint) Actor {
		user, err := f.auth.Register(ctx, dto.RegisterRequest{
			Username: username,
			Email:    username + "@clinic.test",
			Password: username + "-pass",
			ClinicID: clinicID,
		})
		require.NoError(t, err)
		return Actor{UserID: user.ID, Role: user.Role, ClinicID: user.ClinicID}
	}
	f.alice = register("alice", result.Clinic.ID)
	f.bob = register("bob", result.Clinic.ID)

	south, err := store.CreateClinic(ctx, dto.InsertClinic{Name: "South"})
	require.NoError(t, err)
	outsider, err := store.CreateUser(ctx, dto.InsertUser{
		Username: "southadmin", Email: "admin@south.test", Password: "x",
		Role: models.RoleAdmin, ClinicID: &south.ID,
	})
	require.NoError(t, err)
	f.outsider = Actor{UserID: outsider.ID, Role: models.RoleAdmin, ClinicID: outsider.ClinicID}
	return f
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()
	setup := NewSetupService(storage.NewMemStorage(log), log)

	needs, err := setup.NeedsSetup(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	result, err := setup.Setup(ctx, dto.SetupFirstAdminRequest{
		Username: "admin", Email: "a@x.test", Password: "admin-pass", ClinicName: "North",
		Departments: []string{"ER", "Lab"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, result.User.Role)
	assert.NotEqual(t, "admin-pass", result.User.Password)
	assert.Equal(t, []string{"ER", "Lab"}, []string(result.Clinic.Departments))

	_, err = setup.Setup(ctx, dto.SetupFirstAdminRequest{
		Username: "again", Email: "b@x.test", Password: "admin-pass", ClinicName: "Other",
	})
	assert.ErrorIs(t, err, storage.ErrSetupComplete)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, dto.RegisterRequest{Username: "alice", Email: "new@clinic.test", Password: "secret1", ClinicID: *f.admin.ClinicID})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "newbie", Email: "alice@clinic.test", Password: "secret1", ClinicID: *f.admin.ClinicID})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = f.auth.Register(ctx, dto.RegisterRequest{Username: "newbie", Email: "newbie@clinic.test", Password: "secret1", ClinicID: 999})
	assert.ErrorIs(t, err, ErrClinicNotFound)

	resp, err := f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "alice-pass"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.UserID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	claims, err := f.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, f.alice.UserID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, string(models.RoleUser), claims.Role)
	require.NotNil(t, claims.ClinicID)
	assert.Equal(t, *f.alice.ClinicID, *claims.ClinicID)

	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	user := models.User{ID: 1, Username: "alice", Role: models.RoleUser}

	other := NewAuthService(f.store, "another-secret", logger.Nop())
	foreign, _, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = f.auth.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	f.auth.now = func() time.Time { return time.Now().Add(-2 * TokenTTL) }
	expired, _, err := f.auth.GenerateToken(user)
	require.NoError(t, err)
	f.auth.now = time.Now
	_, err = f.auth.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestThoughtVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.thoughts.Create(ctx, f.alice, dto.CreateThoughtRequest{Title: "alice", Content: "c"})
	require.NoError(t, err)
	theirs, err := f.thoughts.Create(ctx, f.bob, dto.CreateThoughtRequest{Title: "bob", Content: "c"})
	require.NoError(t, err)

	list, err := f.thoughts.List(ctx, f.alice, true, dto.ThoughtFilters{})
	require.NoError(t, err)
	require.Len(t, list.Thoughts, 1)
	assert.Equal(t, mine.ID, list.Thoughts[0].ID)
	assert.Zero(t, list.UnreadCount)

	adminList, err := f.thoughts.List(ctx, f.admin, false, dto.ThoughtFilters{})
	require.NoError(t, err)
	assert.Equal(t, 2, adminList.TotalCount)
	assert.EqualValues(t, 2, adminList.UnreadCount)

	_, err = f.thoughts.Get(ctx, f.alice, theirs.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	got, err := f.thoughts.Get(ctx, f.alice, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Title)

	outsiderList, err := f.thoughts.List(ctx, f.outsider, false, dto.ThoughtFilters{})
	require.NoError(t, err)
	assert.Empty(t, outsiderList.Thoughts)
	_, err = f.thoughts.Get(ctx, f.outsider, mine.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestThoughtAdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thought, err := f.thoughts.Create(ctx, f.alice, dto.CreateThoughtRequest{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = f.thoughts.Update(ctx, f.alice, thought.ID, dto.ThoughtUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.thoughts.Delete(ctx, f.alice, thought.ID), ErrForbidden)
	assert.ErrorIs(t, f.thoughts.MarkRead(ctx, f.alice, thought.ID), ErrForbidden)
	_, err = f.thoughts.History(ctx, f.alice, thought.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.thoughts.UnreadCount(ctx, f.alice)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.thoughts.Update(ctx, f.outsider, thought.ID, dto.ThoughtUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	updated, err := f.thoughts.Update(ctx, f.admin, thought.ID, dto.ThoughtUpdate{Title: strPtr("edited")})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.EditCount)

	require.NoError(t, f.thoughts.MarkRead(ctx, f.admin, thought.ID))
	unread, err := f.thoughts.UnreadCount(ctx, f.admin)
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.NoError(t, f.thoughts.Delete(ctx, f.admin, thought.ID))
	history, err := f.thoughts.History(ctx, f.admin, thought.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.ChangeDeleted, history[0].ChangeType)

	// Deleted thoughts vanish from the author's own view
	_, err = f.thoughts.Get(ctx, f.alice, thought.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, f.thoughts.Delete(ctx, f.admin, 999), storage.ErrNotFound)
}

func TestThoughtDepartmentUsesStoredName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.thoughts.Create(ctx, f.alice, dto.CreateThoughtRequest{Title: "t", Content: "c", Department: strPtr("Basement")})
	assert.ErrorIs(t, err, storage.ErrDepartmentNotFound)
	assert.ErrorIs(t, err, storage.ErrInvalidOperation)

	thought, err := f.thoughts.Create(ctx, f.alice, dto.CreateThoughtRequest{Title: "t", Content: "c", Department: strPtr(" general ")})
	require.NoError(t, err)
	require.NotNil(t, thought.Department)
	assert.Equal(t, "General", *thought.Department)

	_, err = f.clinics.RenameDepartment(ctx, f.admin, "General", "Front Desk")
	require.NoError(t, err)
	stored, err := f.thoughts.Get(ctx, f.alice, thought.ID)
	require.NoError(t, err)
	assert.Equal(t, "Front Desk", *stored.Department)

	_, err = f.thoughts.Update(ctx, f.admin, thought.ID, dto.ThoughtUpdate{Department: strPtr("Basement")})
	assert.ErrorIs(t, err, storage.ErrDepartmentNotFound)
	updated, err := f.thoughts.Update(ctx, f.admin, thought.ID, dto.ThoughtUpdate{Department: strPtr("ADMINISTRATION")})
	require.NoError(t, err)
	assert.Equal(t, "Administration", *updated.Department)

	_, err = f.clinics.RemoveDepartment(ctx, f.admin, "Administration")
	require.NoError(t, err)
	stored, err = f.thoughts.Get(ctx, f.alice, thought.ID)
	require.NoError(t, err)
	assert.Equal(t, "Front Desk", *stored.Department)

	cleared, err := f.thoughts.Update(ctx, f.admin, thought.ID, dto.ThoughtUpdate{Department: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Department)
}

func TestClinicDepartments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	departments, err := f.clinics.Departments(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Administration"}, departments)

	_, err = f.clinics.AddDepartment(ctx, f.alice, "Lab")
	assert.ErrorIs(t, err, ErrForbidden)

	departments, err = f.clinics.AddDepartment(ctx, f.admin, "Lab")
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Administration", "Lab"}, departments)

	departments, err = f.clinics.RenameDepartment(ctx, f.admin, "lab", "Laboratory")
	require.NoError(t, err)
	assert.Equal(t, []string{"General", "Administration", "Laboratory"}, departments)

	departments, err = f.clinics.RemoveDepartment(ctx, f.admin, "General")
	require.NoError(t, err)
	assert.Equal(t, []string{"Administration", "Laboratory"}, departments)

	_, err = f.clinics.AddDepartment(ctx, f.admin, "laboratory")
	assert.ErrorIs(t, err, storage.ErrInvalidOperation)

	clinic, err := f.clinics.Update(ctx, f.admin, dto.ClinicUpdate{Name: strPtr("North Clinic")})
	require.NoError(t, err)
	assert.Equal(t, "North Clinic", clinic.Name)
	_, err = f.clinics.Update(ctx, f.alice, dto.ClinicUpdate{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := f.clinics.ListPublic(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.List(ctx, f.alice)
	assert.ErrorIs(t, err, ErrForbidden)
	members, err := f.users.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	updated, err := f.users.Update(ctx, f.alice, f.alice.UserID, dto.UpdateProfileRequest{
		Email:    strPtr("alice@new.test"),
		Password: strPtr("fresh-pass"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.test", updated.Email)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Username: "alice", Password: "fresh-pass"})
	assert.NoError(t, err)

	admin := models.RoleAdmin
	_, err = f.users.Update(ctx, f.alice, f.alice.UserID, dto.UpdateProfileRequest{Role: &admin})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.users.Update(ctx, f.alice, f.bob.UserID, dto.UpdateProfileRequest{Email: strPtr("x@y.test")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.users.Update(ctx, f.outsider, f.bob.UserID, dto.UpdateProfileRequest{Email: strPtr("x@y.test")})
	assert.ErrorIs(t, err, ErrForbidden)

	promoted, err := f.users.Update(ctx, f.admin, f.bob.UserID, dto.UpdateProfileRequest{Role: &admin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	assert.ErrorIs(t, f.users.Delete(ctx, f.admin, f.admin.UserID), ErrForbidden)
	assert.ErrorIs(t, f.users.Delete(ctx, f.alice, f.bob.UserID), ErrForbidden)
	require.NoError(t, f.users.Delete(ctx, f.admin, f.alice.UserID))
	assert.ErrorIs(t, f.users.Delete(ctx, f.admin, f.alice.UserID), storage.ErrNotFound)
}
