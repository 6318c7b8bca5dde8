package formstate

import (
	"fmt"

	"github.com/google/uuid"
)

// TempID is a placeholder identity assigned to entities that have not been
// persisted remotely yet. It is replaced once the server assigns a real id.
type TempID struct {
	ID string
}

func (t TempID) String() string {
	return fmt.Sprintf("#tempid[%s]", t.ID)
}

// IsPlaceholder reports whether value is an unresolved TempID.
func IsPlaceholder(value any) bool {
	switch value.(type) {
	case TempID, *TempID:
		return true
	default:
		return false
	}
}

// PlaceholderGenerator produces process-unique TempIDs.
type PlaceholderGenerator interface {
	Next() TempID
}

// PlaceholderFunc adapts a function to PlaceholderGenerator.
type PlaceholderFunc func() TempID

// Next implements PlaceholderGenerator.
func (f PlaceholderFunc) Next() TempID {
	return f()
}

type uuidPlaceholders struct{}

// UUIDPlaceholders returns the default generator backed by random UUIDs.
func UUIDPlaceholders() PlaceholderGenerator {
	return uuidPlaceholders{}
}

func (uuidPlaceholders) Next() TempID {
	return TempID{ID: uuid.NewString()}
}
