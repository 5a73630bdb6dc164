// Match engine tests
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

package game

import (
	"context"
	"testing"
	"time"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
)

// memdb discards everything; the engine must not depend on the
// database keeping records.
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

// scripted replays a fixed move sequence, repeating the last entry
// once the script runs out.
type scripted struct {
	moves []int
	i     int
	dead  bool
}

func (a *scripted) Request(ctx context.Context, m *pgl.Match, r pgl.Role) (*pgl.Move, bool) {
	if a.dead {
		return nil, false
	}
	v := a.moves[a.i]
	if a.i < len(a.moves)-1 {
		a.i++
	}
	return &pgl.Move{Value: v, Stamp: time.Now()}, true
}

func (a *scripted) Meta() *pgl.Meta { return &pgl.Meta{} }
func (a *scripted) Alive() bool     { return !a.dead }

// stalling blocks until its request deadline passes.
type stalling struct{}

func (a *stalling) Request(ctx context.Context, m *pgl.Match, r pgl.Role) (*pgl.Move, bool) {
	<-ctx.Done()
	return nil, true
}

func (a *stalling) Meta() *pgl.Meta { return &pgl.Meta{} }
func (a *stalling) Alive() bool     { return true }

func testConf() *cmd.Conf {
	var conf cmd.Conf
	conf.Game.Timeout = time.Second
	conf.Game.RoundsToWin = 3
	conf.Game.MaxRounds = 5
	conf.Game.MinMove = 1
	conf.Game.MaxMove = 5
	conf.Game.ForfeitLimit = 3
	conf.Game.WinPoints = 3
	conf.Game.DrawPoints = 1
	return &conf
}

func testMatch(odd, even pgl.Agent) (*pgl.Match, *cmd.State) {
	st := &cmd.State{
		League:   pgl.MakeLeague("test", "parity", 0, pgl.Points{Win: 3, Draw: 1}),
		Rules:    MakeParity(1, 5),
		Database: memdb{},
	}
	m := &pgl.Match{
		Id:      "R1M1",
		Round:   1,
		Odd:     &pgl.Player{Id: "P01", Agent: odd},
		Even:    &pgl.Player{Id: "P02", Agent: even},
		Referee: &pgl.Referee{Id: "REF01", Alive: true},
		State:   pgl.SCHEDULED,
	}
	return m, st
}

func TestPlayOddWins(t *testing.T) {
	m, st := testMatch(
		&scripted{moves: []int{3}},
		&scripted{moves: []int{2}})

	if err := Play(m, st, testConf()); err != nil {
		t.Fatal(err)
	}
	if m.State != pgl.COMPLETED {
		t.Errorf("Expected COMPLETED, got %s", m.State)
	}
	if m.Winner != m.Odd {
		t.Errorf("Expected %s to win, got %v", m.Odd, m.Winner)
	}
	if m.OddScore != 3 || m.EvenScore != 0 {
		t.Errorf("Expected 3:0, got %d:%d", m.OddScore, m.EvenScore)
	}
	if len(m.Rounds) != 3 {
		t.Errorf("Expected 3 rounds, got %d", len(m.Rounds))
	}
	if r := m.Rounds[0]; r.Sum != 5 || r.Winner != pgl.Odd || !r.Contested {
		t.Errorf("Unexpected first round record: %+v", r)
	}
}

func TestPlayEvenWins(t *testing.T) {
	m, st := testMatch(
		&scripted{moves: []int{2}},
		&scripted{moves: []int{2}})

	if err := Play(m, st, testConf()); err != nil {
		t.Fatal(err)
	}
	if m.Winner != m.Even {
		t.Errorf("Expected %s to win, got %v", m.Even, m.Winner)
	}
	if m.EvenScore != 3 {
		t.Errorf("Expected even score 3, got %d", m.EvenScore)
	}
}

func TestPlayDraw(t *testing.T) {
	// Sums alternate between odd and even, so after the maximal
	// number of rounds the score is level.
	m, st := testMatch(
		&scripted{moves: []int{3, 2, 3, 2, 3}},
		&scripted{moves: []int{2}})

	conf := testConf()
	conf.Game.MaxRounds = 4
	if err := Play(m, st, conf); err != nil {
		t.Fatal(err)
	}
	if m.State != pgl.COMPLETED {
		t.Errorf("Expected COMPLETED, got %s", m.State)
	}
	if m.Winner != nil {
		t.Errorf("Expected a draw, got %s", m.Winner)
	}
	if m.OddScore != 2 || m.EvenScore != 2 {
		t.Errorf("Expected 2:2, got %d:%d", m.OddScore, m.EvenScore)
	}
}

func TestPlayForfeitRound(t *testing.T) {
	// One illegal move gives the round to the opponent, but the
	// match goes on.
	m, st := testMatch(
		&scripted{moves: []int{99, 3, 3, 3}},
		&scripted{moves: []int{2}})

	if err := Play(m, st, testConf()); err != nil {
		t.Fatal(err)
	}
	if m.State != pgl.COMPLETED || m.Winner != m.Odd {
		t.Errorf("Expected odd to recover, got %s (%v)", m.State, m.Winner)
	}
	r := m.Rounds[0]
	if !r.OddForfeit || r.EvenForfeit {
		t.Errorf("Expected an odd forfeit marker: %+v", r)
	}
	if !r.Contested || r.Winner != pgl.Even {
		t.Errorf("Expected the round to go to even: %+v", r)
	}
}

func TestPlayForfeitEscalation(t *testing.T) {
	m, st := testMatch(
		&scripted{moves: []int{99}},
		&scripted{moves: []int{2}})

	conf := testConf()
	conf.Game.RoundsToWin = 5
	conf.Game.MaxRounds = 10
	if err := Play(m, st, conf); err != nil {
		t.Fatal(err)
	}
	if m.State != pgl.ABORTED {
		t.Errorf("Expected ABORTED, got %s", m.State)
	}
	if m.Winner != m.Even || !m.Forfeited {
		t.Errorf("Expected a forfeit in favour of %s", m.Even)
	}
	if len(m.Rounds) != 3 {
		t.Errorf("Expected 3 rounds before the abort, got %d",
			len(m.Rounds))
	}
}

func TestPlayBothForfeit(t *testing.T) {
	m, st := testMatch(
		&scripted{moves: []int{99}},
		&scripted{moves: []int{99}})

	conf := testConf()
	conf.Game.RoundsToWin = 5
	conf.Game.MaxRounds = 10
	if err := Play(m, st, conf); err != nil {
		t.Fatal(err)
	}
	if m.State != pgl.ABORTED || m.Winner != nil {
		t.Errorf("Expected an abort without a winner, got %s (%v)",
			m.State, m.Winner)
	}
	for _, r := range m.Rounds {
		if r.Contested {
			t.Errorf("Round %d should be void: %+v", r.Number, r)
		}
	}
}

func TestPlayDeadAgent(t *testing.T) {
	m, st := testMatch(
		&scripted{dead: true},
		&scripted{moves: []int{2}})

	if err := Play(m, st, testConf()); err != nil {
		t.Fatal(err)
	}
	if m.State != pgl.ABORTED {
		t.Errorf("Expected ABORTED, got %s", m.State)
	}
	if m.Winner != m.Even || !m.Forfeited {
		t.Errorf("Expected %s to win by forfeit", m.Even)
	}
}

func TestPlayCancelled(t *testing.T) {
	m, st := testMatch(&stalling{}, &stalling{})

	conf := testConf()
	conf.Game.Timeout = 10 * time.Second

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := Play(m, st, conf); err != nil {
			t.Error(err)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	st.League.Reset()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Match did not abort on reset")
	}
	if m.State != pgl.ABORTED || m.Winner != nil {
		t.Errorf("Expected an abort without a winner, got %s (%v)",
			m.State, m.Winner)
	}
	if m.Forfeited {
		t.Error("A reset is not a forfeit")
	}
}
