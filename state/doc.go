// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the ledger state: native balances and contract-like storage slots.
// It follows the flow as bellow:
//
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ kv bulk ]
//	         |
//	   [ lru cache ]
//	         |
//	    [ kv store ]
package state
