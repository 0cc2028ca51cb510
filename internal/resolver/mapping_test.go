package resolver

import (
	"testing"

	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/retry"
)

func TestBuildMapping_Bijective(t *testing.T) {
	m, err := BuildMapping(testSnapshot())
	if err != nil {
		t.Fatalf("BuildMapping failed: %v", err)
	}

	if len(m.NameToSlug) != len(m.SlugToName) {
		t.Fatalf("mapping sizes differ: %d vs %d", len(m.NameToSlug), len(m.SlugToName))
	}
	for _, name := range m.Names {
		s, ok := m.NameToSlug[name]
		if !ok {
			t.Fatalf("name %q missing from NameToSlug", name)
		}
		if back := m.SlugToName[s]; back != name {
			t.Errorf("SlugToName[NameToSlug[%q]] = %q, want %q", name, back, name)
		}
	}
	if m.Counts["Internal Medicine"] != 42 {
		t.Errorf("Counts = %d, want 42", m.Counts["Internal Medicine"])
	}
}

func TestBuildMapping_SlugCollision(t *testing.T) {
	snapshot := &domain.TaxonomySnapshot{
		// Both collapse to "ear_nose_throat".
		Names:  []string{"Ear, Nose & Throat", "Ear Nose Throat"},
		Counts: map[string]int{},
	}

	_, err := BuildMapping(snapshot)
	if err == nil {
		t.Fatal("expected slug collision error")
	}
	if d := retry.Describe(err); d.Kind != retry.KindSlugCollision {
		t.Errorf("kind = %s, want %s", d.Kind, retry.KindSlugCollision)
	}
	if retry.ShouldRetry(err) {
		t.Error("slug collisions should not retry")
	}
}

func TestBuildMapping_DuplicateNamesCollapsed(t *testing.T) {
	snapshot := &domain.TaxonomySnapshot{
		Names:  []string{"Cardiology", "Cardiology"},
		Counts: map[string]int{"Cardiology": 7},
	}

	m, err := BuildMapping(snapshot)
	if err != nil {
		t.Fatalf("BuildMapping failed: %v", err)
	}
	if len(m.Names) != 1 {
		t.Errorf("got %d names, want 1", len(m.Names))
	}
}

func TestBuildMapping_UnsluggableNameRejected(t *testing.T) {
	snapshot := &domain.TaxonomySnapshot{
		Names:  []string{"&&&"},
		Counts: map[string]int{},
	}

	_, err := BuildMapping(snapshot)
	if err == nil {
		t.Fatal("expected error for unsluggable name")
	}
	if d := retry.Describe(err); d.Kind != retry.KindValidation {
		t.Errorf("kind = %s, want %s", d.Kind, retry.KindValidation)
	}
}
