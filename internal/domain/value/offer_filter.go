package value

import (
	"fmt"

	"github.com/google/uuid"
)

type OfferRole string

const (
	OfferRoleBuyer  OfferRole = "buyer"
	OfferRoleSeller OfferRole = "seller"
)

func ParseOfferRole(s string) (OfferRole, error) {
	switch r := OfferRole(s); r {
	case OfferRoleBuyer, OfferRoleSeller:
		return r, nil
	case "":
		return OfferRoleBuyer, nil
	default:
		return "", fmt.Errorf("unknown offer role %q", s)
	}
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Paging struct {
	Limit  int
	Offset int
}

func NewPaging(limit, offset int) (Paging, error) {
	if limit == 0 {
		limit = DefaultLimit
	}

	if limit < 0 || limit > MaxLimit {
		return Paging{}, fmt.Errorf("limit must be in [1, %d]", MaxLimit)
	}

	if offset < 0 {
		return Paging{}, fmt.Errorf("offset must not be negative")
	}

	return Paging{Limit: limit, Offset: offset}, nil
}

// OfferFilter: выборка офферов пользователя в одной роли.
type OfferFilter struct {
	UserID uuid.UUID
	Role   OfferRole
	// Status пустой: любой статус.
	Status string
	Paging Paging
}
