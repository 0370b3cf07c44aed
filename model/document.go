package model

// Document is one entry of the application document checklist
type Document struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	RequiredFor string `json:"requiredFor" yaml:"requiredFor"`
	Description string `json:"description" yaml:"description"`
}

// Service is a consultancy service shown on the services page.
// Icon is the front-end icon name.
type Service struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}
