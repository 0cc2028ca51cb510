package resolver

import (
	"fmt"

	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/retry"
	"github.com/vietddude/taxocache/internal/slug"
)

// BuildMapping derives the bidirectional name/slug mapping from a taxonomy
// snapshot. The codec runs once per name. Two distinct names collapsing to
// the same slug fails the build with a slugCollision error instead of
// silently overwriting one mapping with the other. Duplicate names are
// collapsed to their first occurrence.
func BuildMapping(snapshot *domain.TaxonomySnapshot) (*domain.TaxonomyMapping, error) {
	m := &domain.TaxonomyMapping{
		Names:      make([]string, 0, len(snapshot.Names)),
		Counts:     make(map[string]int, len(snapshot.Names)),
		NameToSlug: make(map[string]string, len(snapshot.Names)),
		SlugToName: make(map[string]string, len(snapshot.Names)),
	}

	for _, name := range snapshot.Names {
		if _, seen := m.NameToSlug[name]; seen {
			continue
		}

		s := slug.ToSlug(name)
		if s == "" {
			err := fmt.Errorf("Invalid specialty name %q: no slug", name)
			return nil, retry.Classified(err, "specialty name")
		}

		if prev, taken := m.SlugToName[s]; taken {
			return nil, &retry.ClassifiedError{
				Descriptor: retry.Descriptor{
					Kind:        retry.KindSlugCollision,
					Retryable:   false,
					UserMessage: "The specialty directory is inconsistent. Please try again later.",
				},
				Err: fmt.Errorf("slug collision: %q and %q both map to %q", prev, name, s),
			}
		}

		m.Names = append(m.Names, name)
		m.Counts[name] = snapshot.Counts[name]
		m.NameToSlug[name] = s
		m.SlugToName[s] = name
	}

	return m, nil
}
