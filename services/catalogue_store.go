package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coldenflo/ICeducation/database"
	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/utils/auth"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Persistence keys shared with every backend
const (
	CatalogueKey   = "universitiesData"
	CredentialsKey = "users"
)

// CatalogueStore owns the institution catalogue and the admin credential
// list. All reads go to the backing KeyValue; nothing is cached in memory.
//
// Writers inside one process are serialised. Separate processes sharing a
// backend (the server and catalogctl, say) are last-writer-wins.
type CatalogueStore struct {
	kv          database.KeyValue
	seed        database.SeedData
	log         *zap.Logger
	allowHashed bool

	mu sync.Mutex
}

type CatalogueOption func(*CatalogueStore)

// WithHashedCredentials makes Authenticate accept bcrypt hashes in the
// stored credential list
func WithHashedCredentials() CatalogueOption {
	return func(s *CatalogueStore) {
		s.allowHashed = true
	}
}

// NewCatalogueStore creates a store over kv. Call Initialize before use.
func NewCatalogueStore(kv database.KeyValue, seed database.SeedData, logger *zap.Logger, opts ...CatalogueOption) *CatalogueStore {
	s := &CatalogueStore{
		kv:   kv,
		seed: seed,
		log:  logger.Named("catalogue"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storedCatalogue also accepts the older "universities" field name
type storedCatalogue struct {
	Version      int                 `json:"version"`
	Institutions []model.Institution `json:"institutions"`
	Universities []model.Institution `json:"universities,omitempty"`
}

var errMalformed = errors.New("malformed catalogue")

// Initialize seeds the catalogue when it is missing, unreadable or older than
// the bundled seed, and seeds the credential list when it is missing. It is
// safe to call repeatedly; a current catalogue is left untouched.
func (s *CatalogueStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initializeCatalogue(ctx)
	s.initializeCredentials(ctx)
}

func (s *CatalogueStore) initializeCatalogue(ctx context.Context) {
	cat, err := s.read(ctx)
	switch {
	case errors.Is(err, database.ErrKeyNotFound):
		s.log.Info("catalogue not found, seeding", zap.Int("version", s.seed.Version))
	case errors.Is(err, errMalformed):
		s.log.Error("catalogue unreadable, overwriting with seed", zap.Error(err))
	case err != nil:
		// backend trouble: leave whatever is there alone
		s.log.Error("catalogue read failed", zap.Error(err))
		return
	case cat.Version < s.seed.Version:
		s.log.Info("catalogue outdated, replacing with seed",
			zap.Int("stored_version", cat.Version),
			zap.Int("version", s.seed.Version))
	default:
		return
	}

	if err := s.writeCatalogue(ctx, s.seed.Version, s.seed.Institutions); err != nil {
		s.log.Error("catalogue seed write failed", zap.Error(err))
		return
	}
	s.log.Info("catalogue seeded", zap.Int("institutions", len(s.seed.Institutions)))
}

func (s *CatalogueStore) initializeCredentials(ctx context.Context) {
	_, err := s.kv.Get(ctx, CredentialsKey)
	if err == nil {
		return
	}
	if !errors.Is(err, database.ErrKeyNotFound) {
		s.log.Error("credential read failed", zap.Error(err))
		return
	}

	raw, err := json.Marshal(s.seed.Credentials)
	if err != nil {
		s.log.Error("credential encode failed", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, CredentialsKey, raw); err != nil {
		s.log.Error("credential seed write failed", zap.Error(err))
		return
	}
	s.log.Info("default credentials seeded")
}

// Reseed unconditionally replaces the catalogue with the bundled seed
func (s *CatalogueStore) Reseed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeCatalogue(ctx, s.seed.Version, s.seed.Institutions)
}

// Snapshot returns the persisted container, or the read error
func (s *CatalogueStore) Snapshot(ctx context.Context) (model.Catalogue, error) {
	return s.read(ctx)
}

// Version is the persisted version stamp, 0 when there is none
func (s *CatalogueStore) Version(ctx context.Context) int {
	cat, err := s.read(ctx)
	if err != nil {
		return 0
	}
	return cat.Version
}

// List returns every institution in stored order. A missing or unreadable
// catalogue yields an empty list.
func (s *CatalogueStore) List(ctx context.Context) []model.Institution {
	cat, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrKeyNotFound) {
			s.log.Error("catalogue read failed", zap.Error(err))
		}
		return []model.Institution{}
	}
	return cat.Institutions
}

// FindByID returns the institution with the given identifier
func (s *CatalogueStore) FindByID(ctx context.Context, id string) (model.Institution, bool) {
	for _, inst := range s.List(ctx) {
		if inst.ID == id {
			return inst, true
		}
	}
	return model.Institution{}, false
}

// Resolve finds the first institution whose slug or identifier equals key
func (s *CatalogueStore) Resolve(ctx context.Context, key string) (model.Institution, bool) {
	for _, inst := range s.List(ctx) {
		if inst.Slug == key || inst.ID == key {
			return inst, true
		}
	}
	return model.Institution{}, false
}

// Search matches term case-insensitively against name, location and
// program names. An empty term returns everything.
func (s *CatalogueStore) Search(ctx context.Context, term string) []model.Institution {
	all := s.List(ctx)
	if term == "" {
		return all
	}
	return FilterInstitutions(all, term)
}

// FilterInstitutions keeps the institutions matching term, preserving order
func FilterInstitutions(list []model.Institution, term string) []model.Institution {
	fold := cases.Fold()
	needle := fold.String(term)

	matches := []model.Institution{}
	for _, inst := range list {
		if institutionMatches(inst, needle, fold) {
			matches = append(matches, inst)
		}
	}
	return matches
}

func institutionMatches(inst model.Institution, needle string, fold cases.Caser) bool {
	if strings.Contains(fold.String(inst.Name), needle) ||
		strings.Contains(fold.String(inst.Location), needle) {
		return true
	}
	for _, p := range inst.Programs {
		if strings.Contains(fold.String(p.Name), needle) {
			return true
		}
	}
	return false
}

// Create appends inst. If the identifier already exists the call is
// treated as Update. Nil collections are stored as empty ones, so a record
// read back may differ from inst only in that respect. The stored version
// stamp is kept as is; only seeding changes it.
func (s *CatalogueStore) Create(ctx context.Context, inst model.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.current(ctx)
	for _, existing := range cat.Institutions {
		if existing.ID == inst.ID {
			s.log.Warn("institution already exists, updating instead", zap.String("id", inst.ID))
			return s.update(ctx, cat, inst)
		}
	}

	inst.Normalize()
	return s.writeCatalogue(ctx, cat.Version, append(cat.Institutions, inst))
}

// Update replaces the institution with the same identifier in place. A
// missing identifier is logged and ignored.
func (s *CatalogueStore) Update(ctx context.Context, inst model.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, s.current(ctx), inst)
}

func (s *CatalogueStore) update(ctx context.Context, cat model.Catalogue, inst model.Institution) error {
	list := cat.Institutions
	for i := range list {
		if list[i].ID == inst.ID {
			inst.Normalize()
			list[i] = inst
			return s.writeCatalogue(ctx, cat.Version, list)
		}
	}
	s.log.Warn("institution not found for update", zap.String("id", inst.ID))
	return nil
}

// Remove deletes the institution with the given identifier. A missing
// identifier is logged and nothing is written.
func (s *CatalogueStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.current(ctx)
	kept := make([]model.Institution, 0, len(cat.Institutions))
	for _, inst := range cat.Institutions {
		if inst.ID != id {
			kept = append(kept, inst)
		}
	}

	if len(kept) == len(cat.Institutions) {
		s.log.Warn("institution not found for delete", zap.String("id", id))
		return nil
	}
	return s.writeCatalogue(ctx, cat.Version, kept)
}

// current is the stored container for a mutation. A missing or unreadable
// catalogue reads as version 0 with no institutions, so the next Initialize
// still seeds it.
func (s *CatalogueStore) current(ctx context.Context) model.Catalogue {
	cat, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrKeyNotFound) {
			s.log.Error("catalogue read failed", zap.Error(err))
		}
		return model.Catalogue{Institutions: []model.Institution{}}
	}
	return cat
}

// Authenticate returns the public user when username and password match a
// stored credential exactly
func (s *CatalogueStore) Authenticate(ctx context.Context, username, password string) (model.PublicUser, bool) {
	raw, err := s.kv.Get(ctx, CredentialsKey)
	if err != nil {
		if !errors.Is(err, database.ErrKeyNotFound) {
			s.log.Error("credential read failed", zap.Error(err))
		}
		return model.PublicUser{}, false
	}

	var creds []model.Credential
	if err := json.Unmarshal(raw, &creds); err != nil {
		s.log.Error("credential list unreadable", zap.Error(err))
		return model.PublicUser{}, false
	}

	for _, c := range creds {
		if c.Username == username && auth.MatchPassword(c.Password, password, s.allowHashed) {
			return c.Public(), true
		}
	}
	return model.PublicUser{}, false
}

func (s *CatalogueStore) read(ctx context.Context) (model.Catalogue, error) {
	raw, err := s.kv.Get(ctx, CatalogueKey)
	if err != nil {
		return model.Catalogue{}, err
	}

	var stored storedCatalogue
	if err := json.Unmarshal(raw, &stored); err != nil {
		return model.Catalogue{}, fmt.Errorf("%w: %v", errMalformed, err)
	}

	list := stored.Institutions
	if list == nil {
		list = stored.Universities
	}
	if list == nil {
		list = []model.Institution{}
	}
	return model.Catalogue{Version: stored.Version, Institutions: list}, nil
}

// writeCatalogue persists list under the given version stamp
func (s *CatalogueStore) writeCatalogue(ctx context.Context, version int, list []model.Institution) error {
	raw, err := json.Marshal(model.Catalogue{
		Version:      version,
		Institutions: list,
	})
	if err != nil {
		return fmt.Errorf("encode catalogue: %w", err)
	}
	if err := s.kv.Set(ctx, CatalogueKey, raw); err != nil {
		s.log.Error("catalogue write failed", zap.Error(err))
		return fmt.Errorf("write catalogue: %w", err)
	}
	return nil
}
