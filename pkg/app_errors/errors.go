package apperrors

import "errors"

// 錯誤分類：validation -> 400, not found -> 404, forbidden -> 403,
// conflict -> 409, external -> 502, storage/internal -> 500
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrPassengerMismatch = errors.New("passenger list does not match declared counts")

	ErrFlightNotFound       = errors.New("flight not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrFeedbackNotFound     = errors.New("feedback not found")

	ErrForbidden = errors.New("forbidden")

	ErrInsufficientSeats      = errors.New("insufficient available seats")
	ErrSeatCapacityExhausted  = errors.New("no free seat left on flight")
	ErrSeatTaken              = errors.New("seat already taken on flight")
	ErrTicketAlreadyCancelled = errors.New("ticket already cancelled")
	ErrOrderNotCancellable    = errors.New("order cannot be cancelled")
	ErrOrderAlreadyPaid       = errors.New("order already paid")
	ErrDuplicateFlightNumber  = errors.New("flight number already exists")
	ErrDuplicateUserField     = errors.New("username or email already exists")
	ErrFlightHasTickets       = errors.New("flight has booked tickets")
	ErrInvalidStatus          = errors.New("invalid status transition")

	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidSignature   = errors.New("invalid gateway signature")

	ErrInternalServerError = errors.New("internal server error")
)
