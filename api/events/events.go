// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/api/utils"
	"github.com/vechain/stakecover/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{
		db,
		limit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Range != nil && filter.Range.To < filter.Range.From {
		return utils.BadRequest(errors.New("filter.Range.To must be greater than or equal to filter.Range.From"))
	}
	if filter.Order != "" && filter.Order != eventdb.ASC && filter.Order != eventdb.DESC {
		return utils.BadRequest(fmt.Errorf("order: unknown value %q", filter.Order))
	}

	if filter.Options == nil {
		// one above the limit detects more events than allowed
		filter.Options = &eventdb.Options{Offset: 0, Limit: e.limit + 1}
	}
	events, err := e.db.Filter(&filter)
	if err != nil {
		return err
	}
	if len(events) > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	if events == nil {
		events = []*eventdb.Event{}
	}
	return utils.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
