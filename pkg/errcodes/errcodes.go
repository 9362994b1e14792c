package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	ValidationError     failure.ErrorCode = "ValidationError"
	Unauthorized        failure.ErrorCode = "Unauthorized"
	Forbidden           failure.ErrorCode = "Forbidden"
	NotFound            failure.ErrorCode = "NotFound"
	Conflict            failure.ErrorCode = "Conflict"

	// Negotiation
	OutOfTurn      failure.ErrorCode = "OutOfTurn"
	AlreadyClosed  failure.ErrorCode = "AlreadyClosed"
	InvalidCounter failure.ErrorCode = "InvalidCounter"
	InvalidLot     failure.ErrorCode = "InvalidLot"
	SelfTrade      failure.ErrorCode = "SelfTrade"

	// Market
	InvalidTicker       failure.ErrorCode = "InvalidTicker"
	UpstreamUnavailable failure.ErrorCode = "UpstreamUnavailable"
	NotificationFailure failure.ErrorCode = "NotificationFailure"
)
