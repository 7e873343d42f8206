// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "errors"

// ErrUnderflow is returned when a stored counter would go below zero.
var ErrUnderflow = errors.New("solidity: uint256 underflow")
