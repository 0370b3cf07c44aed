package services

import (
	"context"
	"errors"
	"testing"

	"github.com/coldenflo/ICeducation/database"
	"github.com/coldenflo/ICeducation/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testSeed() database.SeedData {
	two := 2
	return database.SeedData{
		Version: 3,
		Institutions: []model.Institution{
			newInstitution("1", "Zhejiang-University", "Zhejiang University", "Hangzhou", "MBBS"),
			newInstitution("2", "Fudan-University", "Fudan University", "Shanghai", "Journalism"),
			func() model.Institution {
				inst := newInstitution("3", "Harbin-Institute", "Harbin Institute of Technology", "Harbin", "Aerospace Engineering")
				inst.CountryRanking = &two
				return inst
			}(),
		},
		Credentials: []model.Credential{{Username: "admin", Password: "admin123", IsAdmin: true}},
	}
}

func newInstitution(id, slug, name, location, program string) model.Institution {
	inst := model.Institution{
		ID:       id,
		Slug:     slug,
		Name:     name,
		Location: location,
		Programs: []model.Program{{Name: program, Language: "English"}},
	}
	inst.Normalize()
	return inst
}

func newTestStore(t *testing.T) (*CatalogueStore, *database.MemoryStore) {
	t.Helper()
	kv := database.NewMemoryStore()
	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(context.Background())
	return store, kv
}

func TestInitializeFreshEnvironment(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	list := store.List(ctx)
	assert.Len(t, list, 3)
	assert.Equal(t, testSeed().Institutions, list)
	assert.Equal(t, 3, store.Version(ctx))

	_, err := kv.Get(ctx, CredentialsKey)
	assert.NoError(t, err)
}

func TestInitializeIsIdempotent(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	before, err := kv.Get(ctx, CatalogueKey)
	require.NoError(t, err)

	store.Initialize(ctx)

	after, err := kv.Get(ctx, CatalogueKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInitializeKeepsCurrentEdits(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remove(ctx, "1"))
	store.Initialize(ctx)

	assert.Len(t, store.List(ctx), 2)
}

func TestInitializeReplacesOutdatedCatalogue(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{"version":2,"institutions":[{"id":"x","name":"Custom","slug":"custom"}]}`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)

	assert.Equal(t, testSeed().Institutions, store.List(ctx))
	assert.Equal(t, 3, store.Version(ctx))
	_, found := store.FindByID(ctx, "x")
	assert.False(t, found)
}

func TestInitializeLeavesNewerCatalogue(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{"version":9,"institutions":[{"id":"x","name":"Custom","slug":"custom"}]}`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "x", list[0].ID)
	assert.Equal(t, 9, store.Version(ctx))
}

func TestInitializeOverwritesMalformedCatalogue(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{not json`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	assert.Empty(t, store.List(ctx))

	store.Initialize(ctx)
	assert.Len(t, store.List(ctx), 3)
}

func TestInitializeDoesNotReseedCredentials(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CredentialsKey, []byte(`[{"username":"editor","password":"pw","isAdmin":true}]`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)

	_, ok := store.Authenticate(ctx, "admin", "admin123")
	assert.False(t, ok)
	user, ok := store.Authenticate(ctx, "editor", "pw")
	assert.True(t, ok)
	assert.Equal(t, "editor", user.Username)
}

func TestListReadsLegacyField(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{"version":3,"universities":[{"id":"old","name":"Old","slug":"old"}]}`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "old", list[0].ID)
}

func TestListWithoutCatalogue(t *testing.T) {
	store := NewCatalogueStore(database.NewMemoryStore(), testSeed(), zap.NewNop())

	list := store.List(context.Background())
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Equal(t, 0, store.Version(context.Background()))
}

func TestCreateThenFind(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	inst := newInstitution("new-1", "Tsinghua-University", "Tsinghua University", "Beijing", "Physics")
	require.NoError(t, store.Create(ctx, inst))

	got, ok := store.FindByID(ctx, "new-1")
	require.True(t, ok)
	assert.Equal(t, inst, got)

	list := store.List(ctx)
	assert.Len(t, list, 4)
	assert.Equal(t, "new-1", list[len(list)-1].ID)
	assert.Equal(t, 3, store.Version(ctx))
}

func TestMutationsKeepNewerVersion(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{"version":9,"institutions":[{"id":"x","name":"Custom","slug":"custom"}]}`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)
	require.Equal(t, 9, store.Version(ctx))

	require.NoError(t, store.Create(ctx, newInstitution("y", "y", "Added", "Here", "X")))
	assert.Equal(t, 9, store.Version(ctx))

	updated := newInstitution("x", "custom", "Custom renamed", "There", "Y")
	require.NoError(t, store.Update(ctx, updated))
	assert.Equal(t, 9, store.Version(ctx))

	require.NoError(t, store.Remove(ctx, "y"))
	assert.Equal(t, 9, store.Version(ctx))

	list := store.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Custom renamed", list[0].Name)
}

func TestWriteBeforeInitializeKeepsOutdatedVersion(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CatalogueKey, []byte(`{"version":1,"institutions":[{"id":"x","name":"Stale","slug":"stale"}]}`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	require.NoError(t, store.Create(ctx, newInstitution("y", "y", "Added", "Here", "X")))
	assert.Equal(t, 1, store.Version(ctx))
	assert.Len(t, store.List(ctx), 2)

	// the outdated catalogue is still migrated
	store.Initialize(ctx)
	assert.Equal(t, 3, store.Version(ctx))
	assert.Equal(t, testSeed().Institutions, store.List(ctx))
}

func TestCreateWithoutCatalogueLeavesItUnversioned(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogueStore(database.NewMemoryStore(), testSeed(), zap.NewNop())

	require.NoError(t, store.Create(ctx, newInstitution("y", "y", "Added", "Here", "X")))
	assert.Equal(t, 0, store.Version(ctx))
	assert.Len(t, store.List(ctx), 1)

	store.Initialize(ctx)
	assert.Equal(t, testSeed().Institutions, store.List(ctx))
}

func TestCreateDoesNotMutateCaller(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	inst := model.Institution{
		ID:           "s-1",
		Name:         "Scholarship University",
		Scholarships: []model.Scholarship{{Type: "full"}},
	}
	require.NoError(t, store.Create(ctx, inst))

	assert.Nil(t, inst.Scholarships[0].Benefits)
	assert.Nil(t, inst.Programs)

	// nil collections are stored as empty ones
	got, ok := store.FindByID(ctx, "s-1")
	require.True(t, ok)
	assert.Equal(t, []string{}, got.Scholarships[0].Benefits)
	assert.Equal(t, []model.Program{}, got.Programs)
	assert.Equal(t, []string{}, got.ApplicationRequirements)
}

func TestCreateOnExistingIDUpdates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	replacement := newInstitution("2", "Fudan", "Fudan University (Handan campus)", "Shanghai", "Economics")
	require.NoError(t, store.Create(ctx, replacement))

	list := store.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, replacement, list[1])
}

func TestUpdatePreservesPosition(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	changed := testSeed().Institutions[0]
	changed.Description = "Updated description"
	require.NoError(t, store.Update(ctx, changed))

	list := store.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, "Updated description", list[0].Description)
	assert.Equal(t, "2", list[1].ID)
}

func TestUpdateMissingIDIsNoop(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	before, err := kv.Get(ctx, CatalogueKey)
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, newInstitution("ghost", "ghost", "Ghost", "Nowhere", "None")))

	after, err := kv.Get(ctx, CatalogueKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remove(ctx, "2"))

	list := store.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "3", list[1].ID)

	_, ok := store.FindByID(ctx, "2")
	assert.False(t, ok)
}

func TestRemoveMissingIDIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remove(ctx, "ghost"))
	assert.Len(t, store.List(ctx), 3)
}

func TestResolve(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	bySlug, ok := store.Resolve(ctx, "Fudan-University")
	require.True(t, ok)
	assert.Equal(t, "2", bySlug.ID)

	byID, ok := store.Resolve(ctx, "3")
	require.True(t, ok)
	assert.Equal(t, "Harbin-Institute", byID.Slug)

	_, ok = store.Resolve(ctx, "fudan-university")
	assert.False(t, ok)
}

func TestResolveFirstMatchWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newInstitution("4", "Fudan-University", "Duplicate Fudan", "Shanghai", "Law")))

	got, ok := store.Resolve(ctx, "Fudan-University")
	require.True(t, ok)
	assert.Equal(t, "2", got.ID)
}

func TestSearch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		term string
		ids  []string
	}{
		{"empty term returns all", "", []string{"1", "2", "3"}},
		{"name is case-insensitive", "fudan", []string{"2"}},
		{"location", "HANGZHOU", []string{"1"}},
		{"program name", "aerospace", []string{"3"}},
		{"shared substring keeps order", "university", []string{"1", "2"}},
		{"no match", "oxford", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Search(ctx, tt.term)
			ids := []string{}
			for _, inst := range got {
				ids = append(ids, inst.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user, ok := store.Authenticate(ctx, "admin", "admin123")
	require.True(t, ok)
	assert.Equal(t, model.PublicUser{Username: "admin", IsAdmin: true}, user)

	for _, tc := range [][2]string{
		{"admin", "wrong"},
		{"Admin", "admin123"},
		{"admin", "ADMIN123"},
		{"", ""},
	} {
		_, ok := store.Authenticate(ctx, tc[0], tc[1])
		assert.False(t, ok, "%q/%q", tc[0], tc[1])
	}
}

func TestAuthenticateMalformedCredentials(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, CredentialsKey, []byte(`{"username":"admin"}`)))

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)

	_, ok := store.Authenticate(ctx, "admin", "admin123")
	assert.False(t, ok)
}

func TestAuthenticateHashedCredentials(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	seed := testSeed().WithAdmin("admin", string(hash))
	store := NewCatalogueStore(database.NewMemoryStore(), seed, zap.NewNop(), WithHashedCredentials())
	store.Initialize(ctx)

	_, ok := store.Authenticate(ctx, "admin", "admin123")
	assert.True(t, ok)
	_, ok = store.Authenticate(ctx, "admin", "nope")
	assert.False(t, ok)
}

func TestReseed(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remove(ctx, "1"))
	require.NoError(t, store.Reseed(ctx))

	assert.Equal(t, testSeed().Institutions, store.List(ctx))
}

type failingKV struct {
	*database.MemoryStore
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestWriteErrorsSurface(t *testing.T) {
	ctx := context.Background()
	kv := failingKV{database.NewMemoryStore()}
	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())

	// Initialize swallows the failure
	store.Initialize(ctx)
	assert.Empty(t, store.List(ctx))

	err := store.Create(ctx, newInstitution("n", "n", "New", "Here", "X"))
	assert.ErrorContains(t, err, "disk full")
}

func TestCatalogueStoreOnSQLite(t *testing.T) {
	ctx := context.Background()
	kv := newSQLiteKV(t)

	store := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	store.Initialize(ctx)

	require.NoError(t, store.Create(ctx, newInstitution("n", "n", "New", "Here", "X")))
	assert.Len(t, store.List(ctx), 4)

	// a second store over the same backend sees the same data
	again := NewCatalogueStore(kv, testSeed(), zap.NewNop())
	again.Initialize(ctx)
	assert.Len(t, again.List(ctx), 4)
}
