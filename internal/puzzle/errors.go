package puzzle

import "errors"

// ErrInvalidMove is returned by Transfer for a move that breaks zone rules:
// the token is not where the move claims, the destination does not exist,
// or a pool return violates the token's origin.
var ErrInvalidMove = errors.New("invalid move")
