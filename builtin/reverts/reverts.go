// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert aborts an operation on behalf of the caller. No state of the aborted operation is kept.
type ErrRevert struct {
	message      string
	unauthorized bool
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Unauthorized creates a revert caused by a missing role or proxy relationship.
func Unauthorized(message string) *ErrRevert {
	return &ErrRevert{
		message:      message,
		unauthorized: true,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Is matches reverts carrying the same message.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.message == e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// IsUnauthorized reports whether err is an authorization revert.
func IsUnauthorized(err error) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.unauthorized
}
