package domain

// TaxonomySnapshot is the raw specialty taxonomy as returned by the remote
// source: an ordered list of display names plus the provider count per name.
type TaxonomySnapshot struct {
	Names  []string       `json:"names"`
	Counts map[string]int `json:"counts"`
}

// TaxonomyMapping is the resolved taxonomy with its bidirectional name/slug
// mapping. NameToSlug and SlugToName are exact inverses over Names; two names
// collapsing to the same slug is a build error, never a silent overwrite.
type TaxonomyMapping struct {
	Names      []string          `json:"names"`
	Counts     map[string]int    `json:"counts"`
	NameToSlug map[string]string `json:"name_to_slug"`
	SlugToName map[string]string `json:"slug_to_name"`
}

// Slug returns the slug for a display name, if the mapping knows it.
func (m *TaxonomyMapping) Slug(name string) (string, bool) {
	s, ok := m.NameToSlug[name]
	return s, ok
}

// Name returns the display name for a slug, if the mapping knows it.
func (m *TaxonomyMapping) Name(slug string) (string, bool) {
	n, ok := m.SlugToName[slug]
	return n, ok
}
