// Web request handlers
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

package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path"
	"strconv"
	"time"

	pgl "go-pgl"
	"go-pgl/proto"
	"go-pgl/standings"
)

const DB_TIMEOUT = 20 * time.Second // arbitrary choice

// Generate the index page, with the current standings
func (s *web) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	league := s.st.League
	table := standings.Table(league.Players(), league.Matches(),
		s.conf.Points())

	w.Header().Add("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(w, "index.tmpl", struct {
		League string
		State  string
		Round  uint
		Table  []*standings.Standing
	}{league.Id, league.State().String(), league.Round(), table})
	if err != nil {
		log.Print(err)
	}
}

// Generate the about page
func (s *web) about(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	tmpl.ExecuteTemplate(w, "header.tmpl", nil)
	tmpl.ExecuteTemplate(w, "about.tmpl", struct{}{})
	tmpl.ExecuteTemplate(w, "footer.tmpl", nil)
}

// Generate a website listing the registered agents
func (s *web) showAgents(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	err := tmpl.ExecuteTemplate(w, "agents.tmpl", struct {
		Players  []*pgl.Player
		Referees []*pgl.Referee
	}{s.st.League.Players(), s.st.League.Referees()})
	if err != nil {
		log.Print(err)
	}
}

// Generate a website listing recorded matches
func (s *web) showMatches(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	bg := context.Background()
	ctx, cancel := context.WithTimeout(bg, DB_TIMEOUT)
	defer cancel()

	c := make(chan *pgl.Match)
	go s.st.Database.QueryMatches(ctx, c, page-1)

	w.Header().Add("Content-Type", "text/html")
	err = tmpl.ExecuteTemplate(w, "matches.tmpl", struct {
		Matches chan *pgl.Match
		Page    int
	}{c, page})
	if err != nil {
		log.Print(err)
	}
}

// Generate a website displaying a single match, round by round
func (s *web) showMatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(path.Base(r.URL.Path), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	bg := context.Background()
	ctx, cancel := context.WithTimeout(bg, DB_TIMEOUT)
	defer cancel()

	mc := make(chan *pgl.Match)
	rc := make(chan *pgl.RoundOfPlay)
	go s.st.Database.QueryMatch(ctx, id, mc, rc)

	m := <-mc
	if m == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Add("Content-Type", "text/html")
	err = tmpl.ExecuteTemplate(w, "match.tmpl", struct {
		Match  *pgl.Match
		Rounds chan *pgl.RoundOfPlay
	}{m, rc})
	if err != nil {
		log.Print(err)
	}
}

// Serve the standings as JSON
func (s *web) standings(w http.ResponseWriter, r *http.Request) {
	league := s.st.League
	table := standings.Table(league.Players(), league.Matches(),
		s.conf.Points())
	rows := make([]proto.StandingsRow, len(table))
	for i, row := range table {
		rows[i] = proto.StandingsRow{
			Rank:   row.Rank,
			Player: row.Player.Id,
			Name:   row.Player.Meta.Name,
			Points: row.Points,
			Wins:   row.Wins,
			Losses: row.Losses,
			Draws:  row.Draws,
		}
	}

	w.Header().Add("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(struct {
		League string               `json:"league"`
		State  string               `json:"state"`
		Round  uint                 `json:"round"`
		Table  []proto.StandingsRow `json:"table"`
	}{league.Id, league.State().String(), league.Round(), rows})
	if err != nil {
		log.Print(err)
	}
}

// Report a league operation failure with a fitting status code
func fail(w http.ResponseWriter, err error) {
	var status int
	switch {
	case pgl.IsKind(err, pgl.InsufficientParticipants),
		pgl.IsKind(err, pgl.NoEligiblePlayers),
		pgl.IsKind(err, pgl.WrongState):
		status = http.StatusConflict
	case pgl.IsKind(err, pgl.RegistrationRejected):
		status = http.StatusForbidden
	default:
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}

func (s *web) ctlStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if err := s.st.League.Start(); err != nil {
		fail(w, err)
		return
	}
	ctlOK(w, "league started")
}

func (s *web) ctlRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if err := s.st.Scheduler.RunRound(s.st, s.conf); err != nil {
		fail(w, err)
		return
	}
	ctlOK(w, "round played")
}

func (s *web) ctlReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	s.st.League.Reset()
	ctlOK(w, "league reset")
}

func ctlOK(w http.ResponseWriter, msg string) {
	w.Header().Add("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Ok  bool   `json:"ok"`
		Msg string `json:"msg"`
	}{true, msg})
}
