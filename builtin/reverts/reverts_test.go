// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
	assert.False(t, IsUnauthorized(revert))
}

func Test_Unauthorized(t *testing.T) {
	revert := Unauthorized("not oracle member")
	wrapped := errors.Wrap(revert, "report era part")

	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, IsUnauthorized(wrapped))
	assert.ErrorIs(t, wrapped, New("not oracle member"))
	assert.NotErrorIs(t, wrapped, New("other"))
}
