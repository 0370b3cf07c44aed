package database

import (
	"embed"
	"fmt"

	"github.com/coldenflo/ICeducation/model"
	"gopkg.in/yaml.v3"
)

// CurrentDataVersion stamps the bundled institution seed. Bump it whenever
// seeddata/universities.yaml changes; stores holding an older stamp are
// overwritten on the next Initialize, discarding local edits.
const CurrentDataVersion = 28

//go:embed seeddata/*.yaml
var seedFS embed.FS

// SeedData is everything bundled with the binary
type SeedData struct {
	Version      int
	Institutions []model.Institution
	Credentials  []model.Credential
	Documents    []model.Document
	Services     []model.Service
}

// LoadSeed parses the embedded seed files
func LoadSeed() (SeedData, error) {
	seed := SeedData{Version: CurrentDataVersion}

	files := []struct {
		name string
		dest interface{}
	}{
		{"seeddata/universities.yaml", &seed.Institutions},
		{"seeddata/users.yaml", &seed.Credentials},
		{"seeddata/documents.yaml", &seed.Documents},
		{"seeddata/services.yaml", &seed.Services},
	}

	for _, f := range files {
		raw, err := seedFS.ReadFile(f.name)
		if err != nil {
			return SeedData{}, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(raw, f.dest); err != nil {
			return SeedData{}, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}

	for i := range seed.Institutions {
		seed.Institutions[i].Normalize()
	}

	return seed, nil
}

// WithAdmin returns a copy of the seed whose only credential is the given
// admin. An empty username keeps the bundled credentials.
func (s SeedData) WithAdmin(username, password string) SeedData {
	if username == "" {
		return s
	}
	s.Credentials = []model.Credential{{
		Username: username,
		Password: password,
		IsAdmin:  true,
	}}
	return s
}
