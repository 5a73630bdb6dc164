// Round execution tests
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

package sched

import (
	"context"
	"fmt"
	"testing"
	"time"

	pgl "go-pgl"
	"go-pgl/bot"
	cmd "go-pgl/cmd"
	"go-pgl/game"
)

type memdb struct{}

func (memdb) String() string                                          { return "Memory Database" }
func (memdb) Start(*cmd.State, *cmd.Conf)                             {}
func (memdb) Shutdown()                                               {}
func (memdb) SavePlayer(context.Context, *pgl.Player)                 {}
func (memdb) SaveReferee(context.Context, *pgl.Referee)               {}
func (memdb) SaveMatch(context.Context, *pgl.Match)                   {}
func (memdb) SaveRound(context.Context, *pgl.Match, *pgl.RoundOfPlay) {}
func (memdb) QueryMatches(ctx context.Context, c chan<- *pgl.Match, page int) {
	close(c)
}
func (memdb) QueryMatch(ctx context.Context, id int64, c chan<- *pgl.Match, rc chan<- *pgl.RoundOfPlay) {
	close(c)
	close(rc)
}
func (memdb) QueryPlayers(ctx context.Context, c chan<- *pgl.Player, page int) {
	close(c)
}

func testState(players int) (*cmd.State, *cmd.Conf) {
	var conf cmd.Conf
	conf.Game.Timeout = time.Second
	conf.Game.RoundsToWin = 3
	conf.Game.MaxRounds = 5
	conf.Game.MinMove = 1
	conf.Game.MaxMove = 5
	conf.Game.ForfeitLimit = 3
	conf.Game.WinPoints = 3
	conf.Game.DrawPoints = 1

	rules := game.MakeParity(1, 5)
	st := &cmd.State{
		League:   pgl.MakeLeague("test", "parity", 0, conf.Points()),
		Rules:    rules,
		Database: memdb{},
	}
	for i := 0; i < players; i++ {
		_, err := st.League.RegisterPlayer(pgl.Meta{
			Games:   []string{"parity"},
			Contact: fmt.Sprintf("bot-%d", i+1),
		}, bot.MakeRandom(rules))
		if err != nil {
			panic(err)
		}
	}
	return st, &conf
}

func TestRunRound(t *testing.T) {
	st, conf := testState(4)
	if _, err := st.League.RegisterReferee("local", 2, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.League.Start(); err != nil {
		t.Fatal(err)
	}

	rr := MakeRoundRobin()
	if err := rr.RunRound(st, conf); err != nil {
		t.Fatal(err)
	}

	if got := st.League.Round(); got != 1 {
		t.Errorf("Expected round 1, got %d", got)
	}
	matches := st.League.Matches()
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if !m.Over() {
			t.Errorf("%s was committed unfinished", m)
		}
		if m.Referee == nil {
			t.Errorf("%s has no referee", m)
		}
	}
}

func TestRunFullCycle(t *testing.T) {
	st, conf := testState(5)
	if _, err := st.League.RegisterReferee("local", 4, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.League.Start(); err != nil {
		t.Fatal(err)
	}

	rr := MakeRoundRobin()
	for st.League.State() == pgl.IN_PROGRESS {
		if err := rr.RunRound(st, conf); err != nil {
			t.Fatal(err)
		}
	}

	// Five players make for five rounds of two matches each
	if got := st.League.Round(); got != 5 {
		t.Errorf("Expected 5 rounds, got %d", got)
	}
	if got := len(st.League.Matches()); got != 10 {
		t.Errorf("Expected 10 matches, got %d", got)
	}
	if st.League.State() != pgl.FINISHED {
		t.Errorf("Expected FINISHED, got %s", st.League.State())
	}

	// Scheduling past the end must fail cleanly
	if err := rr.RunRound(st, conf); !pgl.IsKind(err, pgl.WrongState) {
		t.Errorf("Expected WrongState, got %v", err)
	}
}

func TestRunRoundRequiresStart(t *testing.T) {
	st, conf := testState(4)
	rr := MakeRoundRobin()
	if err := rr.RunRound(st, conf); !pgl.IsKind(err, pgl.WrongState) {
		t.Errorf("Expected WrongState, got %v", err)
	}
}

func TestRunRoundRequiresPlayers(t *testing.T) {
	st, conf := testState(2)
	if _, err := st.League.RegisterReferee("local", 1, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.League.Start(); err != nil {
		t.Fatal(err)
	}

	// Withdraw one player, leaving too few to pair
	st.League.Players()[0].Withdrawn = true

	rr := MakeRoundRobin()
	if err := rr.RunRound(st, conf); !pgl.IsKind(err, pgl.NoEligiblePlayers) {
		t.Errorf("Expected NoEligiblePlayers, got %v", err)
	}
}

func TestRunRoundRequiresReferee(t *testing.T) {
	st, conf := testState(2)
	if _, err := st.League.RegisterReferee("local", 1, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.League.Start(); err != nil {
		t.Fatal(err)
	}
	st.League.Referees()[0].Alive = false

	rr := MakeRoundRobin()
	if err := rr.RunRound(st, conf); !pgl.IsKind(err, pgl.InsufficientParticipants) {
		t.Errorf("Expected InsufficientParticipants, got %v", err)
	}
}
