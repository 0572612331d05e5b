package opc

import "fmt"

// Relatable is the relationship contract shared by the package and its
// parts. Each implementation supplies its own Relationships.
type Relatable interface {
	Rels() *Relationships
	// PartRelatedBy returns the target of the single relationship of
	// relType.
	PartRelatedBy(relType string) (Part, error)
	// RelateTo returns the rId of a relationship of relType to target,
	// adding one if needed.
	RelateTo(target Part, relType string) string
	// RelateToExternal is RelateTo for an External target URI.
	RelateToExternal(targetRef, relType string) string
	RelatedPart(rID string) (Part, error)
	TargetRef(rID string) (string, error)
}

// relator implements Relatable over a Relationships value.
type relator struct {
	rels *Relationships
}

// Rels returns the outgoing relationships.
func (r *relator) Rels() *Relationships { return r.rels }

// PartRelatedBy returns the single part related by relType.
func (r *relator) PartRelatedBy(relType string) (Part, error) {
	return r.rels.PartWithRelType(relType)
}

// RelateTo returns the rId relating to target by relType, adding one if
// needed.
func (r *relator) RelateTo(target Part, relType string) string {
	return r.rels.GetOrAdd(relType, target)
}

// RelateToExternal is RelateTo for an External target URI.
func (r *relator) RelateToExternal(targetRef, relType string) string {
	return r.rels.GetOrAddExtRel(relType, targetRef)
}

// RelatedPart returns the target part of rID.
func (r *relator) RelatedPart(rID string) (Part, error) {
	rel, ok := r.rels.Get(rID)
	if !ok {
		return nil, fmt.Errorf("%w: no relationship with id %q", ErrNotFound, rID)
	}
	return rel.TargetPart()
}

// TargetRef returns the Target attribute value of rID.
func (r *relator) TargetRef(rID string) (string, error) {
	rel, ok := r.rels.Get(rID)
	if !ok {
		return "", fmt.Errorf("%w: no relationship with id %q", ErrNotFound, rID)
	}
	return rel.TargetRef(), nil
}
