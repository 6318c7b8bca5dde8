package formstate

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/benbjohnson/immutable"
)

// Store is the normalized graph store: a mapping from Ident to Entity. It is
// a value type backed by a persistent hash map; every write returns a new
// Store in O(log n) and leaves the receiver untouched, so a store value can
// be shared freely between readers. The zero Store is empty.
type Store struct {
	entities *immutable.Map[Ident, Entity]
}

// identHasher hashes idents by class, dynamic id type and formatted id.
// Equality is Go equality, so ids must be comparable.
type identHasher struct{}

func (identHasher) Hash(ident Ident) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s\x00%T\x00%v", ident.Class, ident.ID, ident.ID)
	return h.Sum32()
}

func (identHasher) Equal(a, b Ident) bool {
	return a == b
}

func emptyEntities() *immutable.Map[Ident, Entity] {
	return immutable.NewMap[Ident, Entity](identHasher{})
}

// NewStore builds a store from the given entities.
func NewStore(entities map[Ident]Entity) Store {
	builder := immutable.NewMapBuilder[Ident, Entity](identHasher{})
	for ident, entity := range entities {
		builder.Set(ident, entity)
	}
	return Store{entities: builder.Map()}
}

func (s Store) m() *immutable.Map[Ident, Entity] {
	if s.entities == nil {
		return emptyEntities()
	}
	return s.entities
}

// Len returns the number of stored entities.
func (s Store) Len() int {
	if s.entities == nil {
		return 0
	}
	return s.entities.Len()
}

// Get returns the entity at ident.
func (s Store) Get(ident Ident) (Entity, bool) {
	if s.entities == nil {
		return nil, false
	}
	return s.entities.Get(ident)
}

// GetIn reads the value at ident followed by path. Each intermediate step
// must be a map-shaped value.
func (s Store) GetIn(ident Ident, path ...string) (any, bool) {
	entity, ok := s.Get(ident)
	if !ok {
		return nil, false
	}
	var current any = entity
	for _, segment := range path {
		next, ok := lookup(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Set replaces the entity at ident.
func (s Store) Set(ident Ident, entity Entity) Store {
	return Store{entities: s.m().Set(ident, entity)}
}

// SetIn writes value at ident followed by path, creating intermediate maps
// as needed. An empty path replaces the whole entity and requires value to be
// an Entity.
func (s Store) SetIn(ident Ident, path []string, value any) (Store, error) {
	if len(path) == 0 {
		entity, ok := asEntity(value)
		if !ok {
			return s, fmt.Errorf("formstate: value for %s is %T, not an entity", ident, value)
		}
		return s.Set(ident, entity), nil
	}
	entity, _ := s.Get(ident)
	updated, err := setIn(entity, path, value)
	if err != nil {
		return s, fmt.Errorf("formstate: set %s %v: %w", ident, path, err)
	}
	return s.Set(ident, updated), nil
}

// Delete removes ident from the store.
func (s Store) Delete(ident Ident) Store {
	if _, ok := s.Get(ident); !ok {
		return s
	}
	return Store{entities: s.entities.Delete(ident)}
}

// Idents returns every stored ident ordered by class then formatted id.
func (s Store) Idents() []Ident {
	idents := make([]Ident, 0, s.Len())
	if s.entities != nil {
		itr := s.entities.Iterator()
		for !itr.Done() {
			ident, _, _ := itr.Next()
			idents = append(idents, ident)
		}
	}
	sort.Slice(idents, func(i, j int) bool {
		if idents[i].Class != idents[j].Class {
			return idents[i].Class < idents[j].Class
		}
		return fmt.Sprint(idents[i].ID) < fmt.Sprint(idents[j].ID)
	})
	return idents
}

func lookup(container any, key string) (any, bool) {
	switch typed := container.(type) {
	case Entity:
		v, ok := typed[key]
		return v, ok
	case map[string]any:
		v, ok := typed[key]
		return v, ok
	default:
		return nil, false
	}
}

func asEntity(value any) (Entity, bool) {
	switch typed := value.(type) {
	case Entity:
		return typed, true
	case map[string]any:
		return Entity(typed), true
	default:
		return nil, false
	}
}

func setIn(container Entity, path []string, value any) (Entity, error) {
	out := container.Clone()
	if out == nil {
		out = Entity{}
	}
	key := path[0]
	if len(path) == 1 {
		out[key] = value
		return out, nil
	}
	var child Entity
	if existing, ok := out[key]; ok && existing != nil {
		entity, ok := asEntity(existing)
		if !ok {
			return nil, fmt.Errorf("segment %q holds %T", key, existing)
		}
		child = entity
	}
	updated, err := setIn(child, path[1:], value)
	if err != nil {
		return nil, err
	}
	out[key] = updated
	return out, nil
}
