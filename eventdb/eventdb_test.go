// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakecover/eventdb"
	"github.com/vechain/stakecover/thor"
)

func TestEventDB(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	member := thor.BytesToAddress([]byte("member"))
	delegator := thor.BytesToAddress([]byte("delegator"))

	var events []*eventdb.Event
	for i := range 100 {
		kind, subject := "MemberCharged", member
		if i%2 == 1 {
			kind, subject = "DelegatorPaid", delegator
		}
		events = append(events, &eventdb.Event{
			Era:     uint32(i / 10),
			Kind:    kind,
			Subject: subject,
			Time:    uint64(1_700_000_000 + i),
			Data:    json.RawMessage(`{"amount":"0x1"}`),
		})
	}
	require.NoError(t, db.Insert(events))
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(100), events[99].Seq)

	all, err := db.Filter(nil)
	require.NoError(t, err)
	assert.Len(t, all, 100)
	assert.Equal(t, events[42], all[42])

	got, err := db.Filter(&eventdb.Filter{
		Range:   &eventdb.Range{From: 0, To: 1},
		Kinds:   []string{"DelegatorPaid"},
		Order:   eventdb.DESC,
		Options: &eventdb.Options{Offset: 0, Limit: 5},
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, uint64(20), got[0].Seq)
	for _, e := range got {
		assert.Equal(t, delegator, e.Subject)
		assert.LessOrEqual(t, e.Era, uint32(1))
	}

	got, err = db.Filter(&eventdb.Filter{
		Subject: &member,
		Range:   &eventdb.Range{From: 9},
	})
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, uint32(9), got[0].Era)

	got, err = db.Filter(&eventdb.Filter{Kinds: []string{"MemberCharged", "DelegatorPaid"}})
	require.NoError(t, err)
	assert.Len(t, got, 100)
}

func TestEventDBEmptyInsert(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Insert(nil))
	got, err := db.Filter(&eventdb.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
