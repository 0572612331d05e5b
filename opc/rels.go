package opc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yuanying/opcpkg/opc/packuri"
)

// Relationship is a directed edge from an owner (the package or a part) to
// a target part or, for External relationships, to an opaque URI.
type Relationship struct {
	rID        string
	relType    string
	targetMode TargetMode
	target     Part
	targetRef  string
	owner      *Relationships
}

// RID returns the relationship id, unique within its owner.
func (r *Relationship) RID() string { return r.rID }

// RelType returns the relationship type URI.
func (r *Relationship) RelType() string { return r.relType }

// TargetMode returns whether the target is a part or an external URI.
func (r *Relationship) TargetMode() TargetMode { return r.targetMode }

// IsExternal reports whether the target lies outside the package.
func (r *Relationship) IsExternal() bool { return r.targetMode == TargetModeExternal }

// TargetPart returns the part this relationship points to. It fails with
// ErrExternalTarget for External relationships.
func (r *Relationship) TargetPart() (Part, error) {
	if r.IsExternal() {
		return nil, fmt.Errorf("%w: %s points to %q", ErrExternalTarget, r.rID, r.targetRef)
	}
	return r.target, nil
}

// TargetPartName returns the part name of the target part.
func (r *Relationship) TargetPartName() (packuri.URI, error) {
	part, err := r.TargetPart()
	if err != nil {
		return "", err
	}
	return part.PartName(), nil
}

// TargetRef returns the reference serialized in the Target attribute: the
// URI of an External target, or the target part name relative to the
// owner's directory. It is derived from the current part name, so renaming
// the target part keeps it valid.
func (r *Relationship) TargetRef() string {
	if r.IsExternal() {
		return r.targetRef
	}
	return r.target.PartName().RelativeRef(r.owner.baseURI)
}

// Relationships is the set of outgoing relationships of one owner, keyed by
// rId.
type Relationships struct {
	baseURI string
	rels    map[string]*Relationship
}

// NewRelationships returns an empty set for an owner whose directory is
// baseURI ("/" for the package itself).
func NewRelationships(baseURI string) *Relationships {
	return &Relationships{
		baseURI: baseURI,
		rels:    make(map[string]*Relationship),
	}
}

// BaseURI returns the directory relative targets are resolved against.
func (rs *Relationships) BaseURI() string { return rs.baseURI }

// Len returns the number of relationships.
func (rs *Relationships) Len() int { return len(rs.rels) }

// Get returns the relationship with id rID.
func (rs *Relationships) Get(rID string) (*Relationship, bool) {
	rel, ok := rs.rels[rID]
	return rel, ok
}

// Contains reports whether rID is in use.
func (rs *Relationships) Contains(rID string) bool {
	_, ok := rs.rels[rID]
	return ok
}

// All returns every relationship ordered by the integer suffix of its rId.
// Ids that are not of the form "rId<n>" sort after the numbered ones.
func (rs *Relationships) All() []*Relationship {
	all := make([]*Relationship, 0, len(rs.rels))
	for _, rel := range rs.rels {
		all = append(all, rel)
	}
	sort.Slice(all, func(i, j int) bool { return rIDLess(all[i].rID, all[j].rID) })
	return all
}

// ByRelType returns the relationships of relType in rId order.
func (rs *Relationships) ByRelType(relType string) []*Relationship {
	var matching []*Relationship
	for _, rel := range rs.All() {
		if rel.relType == relType {
			matching = append(matching, rel)
		}
	}
	return matching
}

// GetOrAdd returns the rId of the internal relationship of relType to
// target, adding one with the lowest free rId when none exists.
func (rs *Relationships) GetOrAdd(relType string, target Part) string {
	for _, rel := range rs.All() {
		if rel.relType == relType && !rel.IsExternal() && rel.target == target {
			return rel.rID
		}
	}
	rID := rs.nextRID()
	rs.rels[rID] = &Relationship{
		rID:        rID,
		relType:    relType,
		targetMode: TargetModeInternal,
		target:     target,
		owner:      rs,
	}
	return rID
}

// GetOrAddExtRel is GetOrAdd for an External relationship to targetRef.
func (rs *Relationships) GetOrAddExtRel(relType, targetRef string) string {
	for _, rel := range rs.All() {
		if rel.relType == relType && rel.IsExternal() && rel.targetRef == targetRef {
			return rel.rID
		}
	}
	rID := rs.nextRID()
	rs.rels[rID] = &Relationship{
		rID:        rID,
		relType:    relType,
		targetMode: TargetModeExternal,
		targetRef:  targetRef,
		owner:      rs,
	}
	return rID
}

// PartWithRelType returns the target part of the single relationship of
// relType. It fails with ErrNotFound when there is none and with
// ErrAmbiguousRelationship when there are several.
func (rs *Relationships) PartWithRelType(relType string) (Part, error) {
	matching := rs.ByRelType(relType)
	switch len(matching) {
	case 0:
		return nil, fmt.Errorf("%w: no relationship of type %q", ErrNotFound, relType)
	case 1:
		return matching[0].TargetPart()
	default:
		return nil, fmt.Errorf("%w: %d relationships of type %q", ErrAmbiguousRelationship, len(matching), relType)
	}
}

// Pop removes and returns the relationship with rID, or nil if there is
// none. Removal is unconditional.
func (rs *Relationships) Pop(rID string) *Relationship {
	rel, ok := rs.rels[rID]
	if !ok {
		return nil
	}
	delete(rs.rels, rID)
	return rel
}

// XML serializes the set as a ".rels" item, one <Relationship> per entry in
// rId order.
func (rs *Relationships) XML() ([]byte, error) {
	out := xmlRelationships{Namespace: NamespaceRelationships}
	for _, rel := range rs.All() {
		x := xmlRelationship{
			ID:     rel.rID,
			Type:   rel.relType,
			Target: rel.TargetRef(),
		}
		if rel.IsExternal() {
			x.TargetMode = string(TargetModeExternal)
		}
		out.Relationships = append(out.Relationships, x)
	}
	return marshalPackageXML(&out)
}

// load replaces the set with the relationships in raw. Internal
// relationships whose target is not in parts are left out and returned.
func (rs *Relationships) load(raw *xmlRelationships, parts map[packuri.URI]Part) []xmlRelationship {
	rs.rels = make(map[string]*Relationship, len(raw.Relationships))

	var dropped []xmlRelationship
	for _, x := range raw.Relationships {
		rel := &Relationship{
			rID:        x.ID,
			relType:    x.Type,
			targetMode: x.targetMode(),
			owner:      rs,
		}
		if rel.IsExternal() {
			rel.targetRef = x.Target
		} else {
			target, ok := parts[packuri.FromRelRef(rs.baseURI, x.Target)]
			if !ok {
				dropped = append(dropped, x)
				continue
			}
			rel.target = target
		}
		rs.rels[x.ID] = rel
	}
	return dropped
}

// nextRID returns the lowest "rId<n>" not in use, filling gaps left by
// removals.
func (rs *Relationships) nextRID() string {
	for n := 1; ; n++ {
		rID := "rId" + strconv.Itoa(n)
		if _, used := rs.rels[rID]; !used {
			return rID
		}
	}
}

func rIDNumber(rID string) (int, bool) {
	if !strings.HasPrefix(rID, "rId") {
		return 0, false
	}
	n, err := strconv.Atoi(rID[3:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func rIDLess(a, b string) bool {
	na, okA := rIDNumber(a)
	nb, okB := rIDNumber(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	}
	return a < b
}
