// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import "github.com/vechain/stakecover/thor"

// Ring records which of the last thor.VoteWindow part nonces a member voted for.
// Slot nonce mod window is reused once the part it belonged to concluded.
type Ring [thor.VoteWindow / 8]byte

func slot(nonce uint64) (int, byte) {
	pos := nonce % thor.VoteWindow
	return int(pos / 8), byte(1) << (pos % 8)
}

// Voted reports whether the slot of nonce is set.
func (r *Ring) Voted(nonce uint64) bool {
	i, mask := slot(nonce)
	return r[i]&mask != 0
}

// Mark sets the slot of nonce.
func (r *Ring) Mark(nonce uint64) {
	i, mask := slot(nonce)
	r[i] |= mask
}

// Clear resets the slot of nonce.
func (r *Ring) Clear(nonce uint64) {
	i, mask := slot(nonce)
	r[i] &^= mask
}

// Count returns the number of set slots.
func (r *Ring) Count() (n int) {
	for _, b := range r {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return
}
