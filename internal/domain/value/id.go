package value

import (
	"fmt"

	"github.com/google/uuid"
)

func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("uuid.Parse: %w", err)
	}

	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("uuid.Parse: nil id")
	}

	return id, nil
}
