package amm

import "errors"

// Categorical, non-retryable errors. Each names either a precondition
// violation or a policy limit; none indicate transient faults.
var (
	// ErrIdenticalAddresses rejects pools over a single token.
	ErrIdenticalAddresses = errors.New("IDENTICAL_ADDRESSES")
	// ErrZeroAddress rejects the null identifier as a token or admin.
	ErrZeroAddress = errors.New("ZERO_ADDRESS")
	// ErrPoolExists rejects a second pool for an already-registered pair.
	ErrPoolExists = errors.New("POOL_EXISTS")
	// ErrPoolNotFound is the lookup failure for unregistered pairs.
	ErrPoolNotFound = errors.New("POOL_DOES_NOT_EXIST")

	// ErrInsufficientInput rejects zero or negative input amounts.
	ErrInsufficientInput = errors.New("INSUFFICIENT_INPUT_AMOUNT")
	// ErrIdenticalTokens rejects swaps where tokenIn == tokenOut.
	ErrIdenticalTokens = errors.New("IDENTICAL_TOKENS")
	// ErrTokenNotInPair rejects swap or quote tokens outside the pool's pair.
	ErrTokenNotInPair = errors.New("INVALID_TOKEN")
	// ErrInsufficientLiquidity rejects LP burns exceeding the holder's balance.
	ErrInsufficientLiquidity = errors.New("INSUFFICIENT_LIQUIDITY")

	// ErrInvalidFee rejects pool fee rates above the hard cap.
	ErrInvalidFee = errors.New("INVALID_FEE")
	// ErrNotFeeAdmin rejects admin-gated calls from anyone else.
	ErrNotFeeAdmin = errors.New("FORBIDDEN_NOT_FEE_ADMIN")
	// ErrNotAuthorizedRouter rejects reserve-level calls from callers the
	// factory has not registered as routers.
	ErrNotAuthorizedRouter = errors.New("FORBIDDEN_NOT_ROUTER")
)
