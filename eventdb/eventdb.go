// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb journals pool events into sqlite for querying.
package eventdb

import (
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakecover/thor"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	era INTEGER NOT NULL,
	kind TEXT NOT NULL,
	subject BLOB(20) NOT NULL,
	time INTEGER NOT NULL,
	data BLOB
);
CREATE INDEX IF NOT EXISTS idx_event_era ON event(era);
CREATE INDEX IF NOT EXISTS idx_event_subject ON event(subject);`

// EventDB manages the pool events.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// an in-memory db lives as long as its single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert appends events in one transaction and assigns their sequence numbers.
func (db *EventDB) Insert(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, event := range events {
		res, err := tx.Exec("INSERT INTO event(era, kind, subject, time, data) VALUES (?, ?, ?, ?, ?);",
			event.Era,
			event.Kind,
			event.Subject.Bytes(),
			event.Time,
			[]byte(event.Data))
		if err != nil {
			tx.Rollback()
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		event.Seq = uint64(seq)
	}
	return tx.Commit()
}

// Filter returns the events matching filter, all events when filter is nil.
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query("SELECT seq, era, kind, subject, time, data FROM event ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT seq, era, kind, subject, time, data FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND era >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND era <= ?"
		}
	}
	if filter.Subject != nil {
		args = append(args, filter.Subject.Bytes())
		stmt += " AND subject = ?"
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (?" + strings.Repeat(", ?", len(filter.Kinds)-1) + ")"
		for _, kind := range filter.Kinds {
			args = append(args, kind)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			event   Event
			subject []byte
			data    []byte
		)
		if err := rows.Scan(
			&event.Seq,
			&event.Era,
			&event.Kind,
			&subject,
			&event.Time,
			&data,
		); err != nil {
			return nil, err
		}
		event.Subject = thor.BytesToAddress(subject)
		event.Data = data
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Path returns the db path.
func (db *EventDB) Path() string {
	return db.path
}

// Close closes sqlite.
func (db *EventDB) Close() error {
	return db.db.Close()
}
