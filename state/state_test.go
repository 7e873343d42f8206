// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/lvldb"
	"github.com/vechain/stakecover/thor"
)

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func TestStateReadWrite(t *testing.T) {
	st, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("account1"))
	storageKey := thor.BytesToBytes32([]byte("storageKey"))

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	assert.NoError(t, st.SetBalance(addr, big.NewInt(100)))
	bal, _ = st.GetBalance(addr)
	assert.Equal(t, big.NewInt(100), bal)

	// returned balance is a copy
	bal.SetInt64(1)
	bal, _ = st.GetBalance(addr)
	assert.Equal(t, big.NewInt(100), bal)

	assert.Error(t, st.SetBalance(addr, big.NewInt(-1)))

	raw, _ := rlp.EncodeToBytes(uint64(42))
	st.SetRawStorage(addr, storageKey, raw)
	got, err := st.GetRawStorage(addr, storageKey)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue(raw), got)

	var n uint64
	require.NoError(t, st.DecodeStorage(addr, storageKey, func(b []byte) error {
		return rlp.DecodeBytes(b, &n)
	}))
	assert.Equal(t, uint64(42), n)
}

func TestStateRevert(t *testing.T) {
	st, _ := newTestState(t)
	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("k"))

	require.NoError(t, st.SetBalance(addr, big.NewInt(1)))

	chk := st.NewCheckpoint()
	require.NoError(t, st.SetBalance(addr, big.NewInt(2)))
	st.SetRawStorage(addr, key, rlp.RawValue{0x01})

	inner := st.NewCheckpoint()
	require.NoError(t, st.SetBalance(addr, big.NewInt(3)))
	st.RevertTo(inner)

	bal, _ := st.GetBalance(addr)
	assert.Equal(t, big.NewInt(2), bal)

	st.RevertTo(chk)
	bal, _ = st.GetBalance(addr)
	assert.Equal(t, big.NewInt(1), bal)
	raw, _ := st.GetRawStorage(addr, key)
	assert.Empty(t, raw)
}

func TestStateCommit(t *testing.T) {
	st, db := newTestState(t)
	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("k"))

	require.NoError(t, st.SetBalance(addr, big.NewInt(7)))
	st.SetRawStorage(addr, key, rlp.RawValue{0x05})
	require.NoError(t, st.Commit())

	// fresh state over the same store sees committed values
	st2 := New(db)
	bal, err := st2.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), bal)
	raw, err := st2.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x05}, raw)

	// empty value deletes the slot
	st2.SetRawStorage(addr, key, nil)
	require.NoError(t, st2.Commit())
	raw, err = New(db).GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, raw)

	// reverting past a commit keeps committed values
	st2.RevertTo(0)
	bal, _ = st2.GetBalance(addr)
	assert.Equal(t, big.NewInt(7), bal)
}

func TestStorageWord(t *testing.T) {
	st, _ := newTestState(t)
	addr := thor.BytesToAddress([]byte("account1"))
	key := thor.BytesToBytes32([]byte("k"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	word := thor.BytesToBytes32([]byte{0x01, 0x02})
	st.SetStorage(addr, key, word)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, word, v)

	st.SetStorage(addr, key, thor.Bytes32{})
	raw, _ := st.GetRawStorage(addr, key)
	assert.Empty(t, raw)
}
