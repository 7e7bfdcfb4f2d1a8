package router

import "errors"

var (
	// ErrInvalidPath rejects paths with fewer than two tokens or a
	// repeated consecutive token.
	ErrInvalidPath = errors.New("INVALID_PATH")
	// ErrInsufficientOutput aborts a swap whose quoted output falls below
	// the caller's minimum. Nothing is executed.
	ErrInsufficientOutput = errors.New("INSUFFICIENT_OUTPUT_AMOUNT")
	// ErrNoRoute means no candidate path connects the tokens within the
	// hop bound, or none of them could price the trade.
	ErrNoRoute = errors.New("NO_ROUTE_FOUND")
	// ErrInsufficientLPAmount covers both a non-positive LP argument and
	// a minted-LP guard falling short.
	ErrInsufficientLPAmount = errors.New("INSUFFICIENT_LP_AMOUNT")
	// ErrInsufficientAAmount fails a token0-side minimum guard.
	ErrInsufficientAAmount = errors.New("INSUFFICIENT_A_AMOUNT")
	// ErrInsufficientBAmount fails a token1-side minimum guard.
	ErrInsufficientBAmount = errors.New("INSUFFICIENT_B_AMOUNT")
	// ErrNoPoolsSpecified rejects a batch claim with an empty pool list.
	ErrNoPoolsSpecified = errors.New("NO_POOLS_SPECIFIED")
	// ErrInvalidTokenPair rejects a pair with identical or zero tokens.
	ErrInvalidTokenPair = errors.New("INVALID_TOKEN_PAIR")
)
