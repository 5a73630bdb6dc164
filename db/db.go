// Database management
//
// Copyright (c) 2023, 2024  Philip Kaludercic
//
// This file is part of go-pgl.
//
// go-pgl is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-pgl is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-pgl. If not, see
// <http://www.gnu.org/licenses/>

package db

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
)

//go:embed *.sql
var sql_dir embed.FS

type db struct {
	// The database connections
	read  *sql.DB
	write *sql.DB

	// The SQL queries are stored as *.sql files and loaded by the
	// database manager.  QUERIES are the statements handled by
	// READ, and COMMANDS are the statements handled by WRITE.
	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt

	// Guards the match row-id assignment
	mlock sync.Mutex

	shut chan struct{}
}

func (db *db) SavePlayer(ctx context.Context, p *pgl.Player) {
	_, err := db.commands["insert-player"].ExecContext(ctx,
		p.Id, p.Meta.Name, p.Meta.Contact,
		strings.Join(p.Meta.Games, ","))
	if err != nil {
		log.Print(err)
	}
}

func (db *db) SaveReferee(ctx context.Context, r *pgl.Referee) {
	_, err := db.commands["insert-referee"].ExecContext(ctx,
		r.Id, r.Contact, r.Capacity)
	if err != nil {
		log.Print(err)
	}
}

func (db *db) SaveMatch(ctx context.Context, m *pgl.Match) {
	db.mlock.Lock()
	defer db.mlock.Unlock()

	if m.Db == 0 {
		res, err := db.commands["insert-match"].ExecContext(ctx,
			m.Id, m.Round, m.Odd.Id, m.Even.Id,
			m.Referee.Id, m.State.String())
		if err != nil {
			log.Print(err)
			return
		}
		id, err := res.LastInsertId()
		if err != nil {
			log.Print(err)
			return
		}
		m.Db = id
		return
	}

	var winner sql.NullString
	if m.Winner != nil {
		winner = sql.NullString{String: m.Winner.Id, Valid: true}
	}
	_, err := db.commands["update-match"].ExecContext(ctx,
		m.State.String(), m.OddScore, m.EvenScore,
		winner, m.Forfeited, m.Db)
	if err != nil {
		log.Print(err)
	}
}

func (db *db) SaveRound(ctx context.Context, m *pgl.Match, r *pgl.RoundOfPlay) {
	if m.Db == 0 {
		panic("Saving a round for an unsaved match")
	}

	var winner sql.NullString
	if r.Contested {
		winner = sql.NullString{String: r.Winner.String(), Valid: true}
	}
	_, err := db.commands["insert-round"].ExecContext(ctx,
		m.Db, r.Number, r.OddMove, r.EvenMove,
		r.OddForfeit, r.EvenForfeit, r.Sum, winner,
		r.OddScore, r.EvenScore)
	if err != nil {
		log.Print(err)
	}
}

// scanMatch rebuilds a historic match record from a result row.  The
// participants are stubs; resolving them against the live ledger is
// up to the caller.
func scanMatch(rows *sql.Rows) (*pgl.Match, error) {
	var (
		m         = &pgl.Match{}
		odd, even string
		referee   string
		state     string
		winner    sql.NullString
	)
	err := rows.Scan(&m.Db, &m.Id, &m.Round, &odd, &even, &referee,
		&state, &m.OddScore, &m.EvenScore, &winner,
		&m.Forfeited)
	if err != nil {
		return nil, err
	}

	m.Odd = &pgl.Player{Id: odd}
	m.Even = &pgl.Player{Id: even}
	m.Referee = &pgl.Referee{Id: referee}
	switch state {
	case pgl.COMPLETED.String():
		m.State = pgl.COMPLETED
	case pgl.ABORTED.String():
		m.State = pgl.ABORTED
	case pgl.PLAYING.String():
		m.State = pgl.PLAYING
	default:
		m.State = pgl.SCHEDULED
	}
	if winner.Valid {
		switch winner.String {
		case odd:
			m.Winner = m.Odd
		case even:
			m.Winner = m.Even
		}
	}
	return m, nil
}

func (db *db) QueryMatches(ctx context.Context, c chan<- *pgl.Match, page int) {
	defer close(c)
	rows, err := db.queries["select-matches"].QueryContext(ctx, page)
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Print(err)
			return
		}
		c <- m
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
	}
}

func (db *db) QueryMatch(ctx context.Context, id int64, c chan<- *pgl.Match, rc chan<- *pgl.RoundOfPlay) {
	defer close(rc)

	rows, err := db.queries["select-match"].QueryContext(ctx, id)
	if err != nil {
		log.Print(err)
		close(c)
		return
	}
	if rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Print(err)
			rows.Close()
			close(c)
			return
		}
		c <- m
	}
	rows.Close()
	close(c)

	rows, err = db.queries["select-rounds"].QueryContext(ctx, id)
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r      = &pgl.RoundOfPlay{}
			winner sql.NullString
		)
		err = rows.Scan(&r.Number, &r.OddMove, &r.EvenMove,
			&r.OddForfeit, &r.EvenForfeit, &r.Sum, &winner,
			&r.OddScore, &r.EvenScore)
		if err != nil {
			log.Print(err)
			return
		}
		if winner.Valid {
			r.Contested = true
			r.Winner = winner.String == pgl.Odd.String()
		}
		rc <- r
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
	}
}

func (db *db) QueryPlayers(ctx context.Context, c chan<- *pgl.Player, page int) {
	defer close(c)
	rows, err := db.queries["select-players"].QueryContext(ctx, page)
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     = &pgl.Player{}
			games string
		)
		err = rows.Scan(&p.Id, &p.Meta.Name, &p.Meta.Contact, &games)
		if err != nil {
			log.Print(err)
			return
		}
		if games != "" {
			p.Meta.Games = strings.Split(games, ",")
		}
		c <- p
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
	}
}

func (db *db) Start(st *cmd.State, conf *cmd.Conf) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1)
	tick := time.NewTicker(24 * time.Hour)
	defer tick.Stop()
	for {
		var err error
		select {
		case <-db.shut:
			return
		case <-c:
			// https://www.sqlite.org/lang_vacuum.html
			_, err = db.write.Exec("VACUUM;")
		case <-tick.C:
			// https://www.sqlite.org/pragma.html#pragma_optimize
			_, err = db.write.Exec("PRAGMA optimize;")
		}
		if err != nil {
			log.Print(err)
		}
	}
}

func (db *db) Shutdown() {
	close(db.shut)

	// https://www.sqlite.org/pragma.html#pragma_optimize
	if _, err := db.write.Exec("PRAGMA optimize;"); err != nil {
		log.Print(err)
	}

	if err := db.write.Close(); err != nil {
		log.Print(err)
	}
	if err := db.read.Close(); err != nil {
		log.Print(err)
	}
}

func (*db) String() string { return "Database Manager" }

// Initialise the database and register the database manager
func Register(st *cmd.State, conf *cmd.Conf) {
	read, err := sql.Open("sqlite3", conf.Database.File)
	if err != nil {
		log.Fatal(err, ": ", conf.Database.File)
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", conf.Database.File)
	if err != nil {
		log.Fatal(err, ": ", conf.Database.File)
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &db{
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		write:    write,
		read:     read,
		shut:     make(chan struct{}),
	}

	for _, pragma := range []string{
		// https://www.sqlite.org/pragma.html#pragma_journal_mode
		"journal_mode = WAL",
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		"synchronous = normal",
		// https://www.sqlite.org/pragma.html#pragma_temp_store
		"temp_store = memory",
		// https://www.sqlite.org/pragma.html#pragma_foreign_keys
		"foreign_keys = on",
	} {
		pgl.Debug.Printf("Run PRAGMA %v", pragma)
		if _, err = db.write.Exec("PRAGMA " + pragma + ";"); err != nil {
			log.Fatal(err)
		}
	}

	entries, err := sql_dir.ReadDir(".")
	if err != nil {
		log.Fatal(err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sql_dir, entry.Name())
		if err != nil {
			log.Fatal(err)
		}

		if strings.HasPrefix(base, "create-") {
			_, err = db.write.Exec(string(data))
			pgl.Debug.Printf("Executed query %v", base)
		} else {
			query := strings.TrimSuffix(base, ".sql")
			if strings.HasPrefix(query, "select-") {
				db.queries[query], err = db.read.Prepare(string(data))
				pgl.Debug.Printf("Registered query %v", query)
			} else {
				db.commands[query], err = db.write.Prepare(string(data))
				pgl.Debug.Printf("Registered command %v", query)
			}
		}
		if err != nil {
			log.Fatal(entry.Name(), ": ", err)
		}
	}

	if len(db.queries) == 0 {
		panic("No queries loaded")
	}

	st.Register(cmd.Database(db))
}
