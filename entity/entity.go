// Package entity defines the persistence contracts shared by every model
// managed by the crud toolkit.
//
// An entity exposes its identifier through the Entity interface so the
// generic service and repository can reason about persistence state without
// knowing the concrete model. Optional capabilities (soft deletion, audit
// timestamps) are declared by embedding the markers provided here.
package entity

// Entity is the base contract for persisted models.
//
// IsNew reports whether the entity has been persisted yet. The default
// convention is that an entity is new while its identifier holds the zero
// value of ID; the identifier is assigned by the database on insert.
type Entity[ID comparable] interface {
	// GetID returns the unique identifier of the entity.
	GetID() ID
	// SetID assigns the unique identifier of the entity.
	SetID(id ID)
	// IsNew reports whether the entity has not been persisted yet.
	IsNew() bool
}

// Ptr constrains a pointer to an entity struct. It lets generic code accept
// the struct type E while calling the Entity methods that are declared on *E.
type Ptr[E any, ID comparable] interface {
	*E
	Entity[ID]
}

// Model is an embeddable identifier holder implementing Entity[ID].
//
// Embed it in a bun model and tag the promoted ID field through the embedding
// struct, or declare your own identifier and implement Entity[ID] directly.
type Model[ID comparable] struct {
	ID ID `bun:"id,pk,autoincrement" json:"id"`
}

func (m *Model[ID]) GetID() ID { return m.ID }

func (m *Model[ID]) SetID(id ID) { m.ID = id }

// IsNew reports whether the identifier still holds the zero value of ID.
func (m *Model[ID]) IsNew() bool {
	var zero ID
	return m.ID == zero
}

// SoftDeletable is declared by entity types whose rows must be retained on
// delete. The generic service never removes such rows physically: it invokes
// the soft-delete function it was configured with and persists the mutated
// entity instead. Declare the capability by embedding SoftDeleteMarker.
//
// A service handling a SoftDeletable entity without a configured soft-delete
// function fails the delete with an internal error rather than silently
// falling back to physical removal.
type SoftDeletable interface {
	softDeletable()
}

// SoftDeleteMarker declares the SoftDeletable capability when embedded in an
// entity struct. It carries no state; the entity defines whatever field
// (active flag, deleted_at timestamp) represents the deleted state.
type SoftDeleteMarker struct{}

func (SoftDeleteMarker) softDeletable() {}
