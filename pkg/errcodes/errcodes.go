package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	AccessTokenInvalid  failure.ErrorCode = "AccessTokenInvalid"
	NotFound            failure.ErrorCode = "NotFound"
	Conflict            failure.ErrorCode = "Conflict"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Offers.
	InvalidOfferID       failure.ErrorCode = "InvalidOfferID"
	InvalidListingID     failure.ErrorCode = "InvalidListingID"
	InvalidUserID        failure.ErrorCode = "InvalidUserID"
	InvalidOfferPrice    failure.ErrorCode = "InvalidOfferPrice"
	InvalidOfferStatus   failure.ErrorCode = "InvalidOfferStatus"
	InvalidOfferRole     failure.ErrorCode = "InvalidOfferRole"
	SelfOffer            failure.ErrorCode = "SelfOffer"
	ListingNotFound      failure.ErrorCode = "ListingNotFound"
	ListingNotActive     failure.ErrorCode = "ListingNotActive"
	OfferNotFound        failure.ErrorCode = "OfferNotFound"
	OfferAlreadyResolved failure.ErrorCode = "OfferAlreadyResolved"
	OfferNotAccepted     failure.ErrorCode = "OfferNotAccepted"
	NotOfferParticipant  failure.ErrorCode = "NotOfferParticipant"
	NotOfferBuyer        failure.ErrorCode = "NotOfferBuyer"
	NotOfferSeller       failure.ErrorCode = "NotOfferSeller"

	// Payments.
	GatewayUnavailable  failure.ErrorCode = "GatewayUnavailable"
	GatewayRejected     failure.ErrorCode = "GatewayRejected"
	InvalidSignature    failure.ErrorCode = "InvalidSignature"
	DuplicateSettlement failure.ErrorCode = "DuplicateSettlement"
	TransactionNotFound failure.ErrorCode = "TransactionNotFound"
)
