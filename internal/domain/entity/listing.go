package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusSold     ListingStatus = "sold"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing принадлежит внешнему каталогу; ядро только читает его
// и один раз переводит active -> sold.
type Listing struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	CardID    uuid.UUID
	Title     string
	Price     decimal.Decimal
	Status    ListingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}
