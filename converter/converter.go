// Package converter defines the contract for translating between persistence
// entities and their external value-object representation.
package converter

// Converter maps between an entity E and its value object VO.
//
// Implementations must be stateless, pure and total: converting a well-formed
// value never fails and has no side effects. A converter is implemented once
// per entity and is used by the generic controller at the HTTP boundary in
// both directions.
type Converter[E any, VO any] interface {
	// ToVO converts the given entity to its value object representation.
	ToVO(e *E) VO
	// ToEntity converts the given value object to its entity representation.
	ToEntity(vo VO) *E
}

// Func adapts a pair of conversion functions to the Converter interface.
type Func[E any, VO any] struct {
	// EntityToVO converts an entity to its value object.
	EntityToVO func(e *E) VO
	// VOToEntity converts a value object to its entity.
	VOToEntity func(vo VO) *E
}

func (f Func[E, VO]) ToVO(e *E) VO { return f.EntityToVO(e) }

func (f Func[E, VO]) ToEntity(vo VO) *E { return f.VOToEntity(vo) }
