package model

import "slices"

// Institution represents one university entry in the catalogue.
// ID is assigned by the caller and never changes once stored.
type Institution struct {
	ID                      string        `json:"id" yaml:"id" validate:"required,max=128"`
	Slug                    string        `json:"slug" yaml:"slug" validate:"omitempty,max=255"`
	Name                    string        `json:"name" yaml:"name" validate:"required,max=255"`
	Location                string        `json:"location" yaml:"location" validate:"max=255"`
	Description             string        `json:"description,omitempty" yaml:"description,omitempty"`
	Features                string        `json:"features,omitempty" yaml:"features,omitempty"`
	Image                   string        `json:"image,omitempty" yaml:"image,omitempty" validate:"omitempty,max=2048"`
	Logo                    string        `json:"logo,omitempty" yaml:"logo,omitempty" validate:"omitempty,max=2048"`
	CountryRanking          *int          `json:"countryRanking,omitempty" yaml:"countryRanking,omitempty" validate:"omitempty,min=0"`
	WorldRanking            *int          `json:"worldRanking,omitempty" yaml:"worldRanking,omitempty" validate:"omitempty,min=0"`
	Programs                []Program     `json:"programs" yaml:"programs" validate:"dive"`
	Scholarships            []Scholarship `json:"scholarships" yaml:"scholarships" validate:"dive"`
	AdditionalCosts         []Cost        `json:"additionalCosts" yaml:"additionalCosts" validate:"dive"`
	ApplicationRequirements []string      `json:"applicationRequirements" yaml:"applicationRequirements"`
	ApplicationDeadline     string        `json:"applicationDeadline,omitempty" yaml:"applicationDeadline,omitempty"`
	EnglishRequirements     string        `json:"englishRequirements,omitempty" yaml:"englishRequirements,omitempty"`
}

// Program is a degree programme and its language of instruction
type Program struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Language string `json:"language" yaml:"language"`
}

// Scholarship groups the benefits offered under one scholarship type
type Scholarship struct {
	Type     string   `json:"type" yaml:"type" validate:"required"`
	Benefits []string `json:"benefits" yaml:"benefits"`
}

// Cost is an additional fee. Amount is display text ("3000 CNY/year"),
// never a number.
type Cost struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Amount string `json:"amount" yaml:"amount"`
}

// Catalogue is the versioned container persisted as a single document
type Catalogue struct {
	Version      int           `json:"version" yaml:"version"`
	Institutions []Institution `json:"institutions" yaml:"institutions"`
}

// Normalize replaces nil collections with empty ones so the record always
// serialises with [] rather than null
func (i *Institution) Normalize() {
	if i.Programs == nil {
		i.Programs = []Program{}
	}
	if i.Scholarships == nil {
		i.Scholarships = []Scholarship{}
	} else {
		// the backing array is shared with the caller's copy
		i.Scholarships = slices.Clone(i.Scholarships)
	}
	for k := range i.Scholarships {
		if i.Scholarships[k].Benefits == nil {
			i.Scholarships[k].Benefits = []string{}
		}
	}
	if i.AdditionalCosts == nil {
		i.AdditionalCosts = []Cost{}
	}
	if i.ApplicationRequirements == nil {
		i.ApplicationRequirements = []string{}
	}
}
