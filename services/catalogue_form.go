package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coldenflo/ICeducation/model"
	"github.com/google/uuid"
)

var ErrNameRequired = errors.New("university name is required")

// InstitutionForm is the admin editor's draft. Collection fields are
// multi-line text, one entry per line, with "|" separating the parts.
type InstitutionForm struct {
	Name                    string `json:"name" validate:"required,max=255"`
	Location                string `json:"location" validate:"max=255"`
	Slug                    string `json:"slug" validate:"max=255"`
	Description             string `json:"description"`
	Features                string `json:"features"`
	Image                   string `json:"image" validate:"max=2048"`
	Logo                    string `json:"logo" validate:"max=2048"`
	CountryRanking          string `json:"countryRanking"`
	WorldRanking            string `json:"worldRanking"`
	Programs                string `json:"programs"`
	Scholarships            string `json:"scholarships"`
	AdditionalCosts         string `json:"additionalCosts"`
	ApplicationRequirements string `json:"applicationRequirements"`
	EnglishRequirements     string `json:"englishRequirements"`
	ApplicationDeadline     string `json:"applicationDeadline"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Build turns the draft into an institution with a fresh identifier
func (f InstitutionForm) Build() (model.Institution, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return model.Institution{}, ErrNameRequired
	}

	countryRanking, err := parseRanking("countryRanking", f.CountryRanking)
	if err != nil {
		return model.Institution{}, err
	}
	worldRanking, err := parseRanking("worldRanking", f.WorldRanking)
	if err != nil {
		return model.Institution{}, err
	}

	slug := strings.TrimSpace(f.Slug)
	if slug == "" {
		slug = Slugify(name)
	}

	inst := model.Institution{
		ID:                      uuid.New().String(),
		Slug:                    slug,
		Name:                    name,
		Location:                strings.TrimSpace(f.Location),
		Description:             strings.TrimSpace(f.Description),
		Features:                strings.TrimSpace(f.Features),
		Image:                   strings.TrimSpace(f.Image),
		Logo:                    strings.TrimSpace(f.Logo),
		EnglishRequirements:     strings.TrimSpace(f.EnglishRequirements),
		ApplicationDeadline:     strings.TrimSpace(f.ApplicationDeadline),
		CountryRanking:          countryRanking,
		WorldRanking:            worldRanking,
		Programs:                ParsePrograms(f.Programs),
		Scholarships:            ParseScholarships(f.Scholarships),
		AdditionalCosts:         ParseCosts(f.AdditionalCosts),
		ApplicationRequirements: ParseRequirements(f.ApplicationRequirements),
	}
	inst.Normalize()
	return inst, nil
}

// Slugify replaces each run of whitespace in the trimmed name with "-".
// Case and punctuation are kept.
func Slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-")
}

// ParsePrograms reads "name | language" lines; language defaults to English
func ParsePrograms(raw string) []model.Program {
	programs := []model.Program{}
	for _, line := range nonEmptyLines(raw) {
		name, language := splitPair(line)
		if language == "" {
			language = "English"
		}
		programs = append(programs, model.Program{Name: name, Language: language})
	}
	return programs
}

// ParseScholarships reads "type | benefit; benefit" lines
func ParseScholarships(raw string) []model.Scholarship {
	scholarships := []model.Scholarship{}
	for _, line := range nonEmptyLines(raw) {
		kind, benefitsRaw := splitPair(line)
		benefits := []string{}
		for _, b := range strings.Split(benefitsRaw, ";") {
			if b = strings.TrimSpace(b); b != "" {
				benefits = append(benefits, b)
			}
		}
		scholarships = append(scholarships, model.Scholarship{Type: kind, Benefits: benefits})
	}
	return scholarships
}

// ParseCosts reads "name | amount" lines; a missing amount is empty
func ParseCosts(raw string) []model.Cost {
	costs := []model.Cost{}
	for _, line := range nonEmptyLines(raw) {
		name, amount := splitPair(line)
		costs = append(costs, model.Cost{Name: name, Amount: amount})
	}
	return costs
}

// ParseRequirements returns one requirement per non-empty line
func ParseRequirements(raw string) []string {
	return nonEmptyLines(raw)
}

func nonEmptyLines(raw string) []string {
	lines := []string{}
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitPair returns the first two "|" separated parts, trimmed. Anything
// after a second "|" is ignored.
func splitPair(line string) (string, string) {
	parts := strings.Split(line, "|")
	first := strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return first, ""
	}
	return first, strings.TrimSpace(parts[1])
}

func parseRanking(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%s must be a non-negative whole number", field)
	}
	return &n, nil
}
