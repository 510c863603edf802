package lifecycle

import "errors"

// Rejection values. Each reports a failed precondition to the requester; no
// mutation and no timer change accompanies any of them.
var (
	ErrMatchNotFound = errors.New("match_not_found")
	ErrMatchFinished = errors.New("match_finished")
	ErrSeatNotFound  = errors.New("seat_not_found")
	ErrSeatNotEmpty  = errors.New("seat_not_empty")
	ErrSeatClaimHeld = errors.New("seat_claim_held")
	ErrBadSeatIndex  = errors.New("bad_seat_index")
	ErrNameTaken     = errors.New("name_taken")
	ErrNotABot       = errors.New("not_a_bot")
	ErrIsABot        = errors.New("is_a_bot")
	ErrBotLimit      = errors.New("bot_limit_reached")
	ErrLastHuman     = errors.New("last_human")
	ErrNotCreator    = errors.New("not_creator")
)
