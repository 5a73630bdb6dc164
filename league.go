// League lifecycle and registration ledger
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

package pgl

import (
	"context"
	"fmt"
	"sync"
)

type LeagueState uint8

const (
	REGISTRATION LeagueState = iota
	IN_PROGRESS
	FINISHED
)

func (s LeagueState) String() string {
	switch s {
	case REGISTRATION:
		return "Registration"
	case IN_PROGRESS:
		return "In progress"
	case FINISHED:
		return "Completed"
	default:
		panic(fmt.Sprintf("Illegal league state: %d", s))
	}
}

// League is the top-level tournament container.  All state
// transitions and ledger mutations are serialised behind one lock, so
// that a registration can never interleave with a state transition.
type League struct {
	Id   string
	Game string // configured game type
	Pts  Points

	lock     sync.Mutex
	state    LeagueState
	players  []*Player
	referees []*Referee
	round    uint // number of committed rounds
	plan     uint // rounds to play, 0 meaning a full cycle
	matches  []*Match

	// Context governing all in-flight matches.  Cancelled on
	// reset or termination so engines can abort promptly.
	ctx    context.Context
	cancel context.CancelFunc
}

func MakeLeague(id, game string, plan uint, pts Points) *League {
	l := &League{
		Id:   id,
		Game: game,
		Pts:  pts,
		plan: plan,
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l
}

func (l *League) String() string {
	return fmt.Sprintf("league %s (%s)", l.Id, l.Game)
}

func (l *League) State() LeagueState {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

// Context returns the context in-flight matches must observe.
func (l *League) Context() context.Context {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.ctx
}

// gate is the shared check for every registration-mutating operation.
// The caller must hold the lock.
func (l *League) gate() error {
	if l.state != REGISTRATION {
		return Fail(RegistrationRejected,
			"league not accepting registrations")
	}
	return nil
}

// RegisterPlayer adds a player to the ledger and assigns the next
// sequential identifier.
func (l *League) RegisterPlayer(meta Meta, agent Agent) (*Player, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if err := l.gate(); err != nil {
		return nil, err
	}
	for _, p := range l.players {
		if p.Meta.Contact == meta.Contact {
			return nil, Fail(DuplicateRegistration,
				"contact %q already registered as %s",
				meta.Contact, p.Id)
		}
	}
	supported := false
	for _, g := range meta.Games {
		if g == l.Game {
			supported = true
			break
		}
	}
	if !supported {
		return nil, Fail(InvalidCapabilities,
			"player does not support %q", l.Game)
	}

	p := &Player{
		Id:    fmt.Sprintf("P%02d", len(l.players)+1),
		Meta:  meta,
		Agent: agent,
	}
	l.players = append(l.players, p)
	Debug.Println("Registered", p)
	return p, nil
}

// RegisterReferee adds a referee to the ledger.  Referees have their
// own identifier sequence, separate from the players.
func (l *League) RegisterReferee(contact string, capacity uint, agent Agent) (*Referee, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if err := l.gate(); err != nil {
		return nil, err
	}
	for _, r := range l.referees {
		if r.Contact == contact {
			return nil, Fail(DuplicateRegistration,
				"contact %q already registered as %s",
				contact, r.Id)
		}
	}
	if capacity == 0 {
		capacity = 1
	}

	r := &Referee{
		Id:       fmt.Sprintf("REF%02d", len(l.referees)+1),
		Contact:  contact,
		Capacity: capacity,
		Alive:    true,
		Agent:    agent,
	}
	l.referees = append(l.referees, r)
	Debug.Println("Registered", r)
	return r, nil
}

// Players returns a snapshot of the ledger, in insertion order.
func (l *League) Players() []*Player {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]*Player(nil), l.players...)
}

func (l *League) Referees() []*Referee {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]*Referee(nil), l.referees...)
}

// Start moves the league from registration into play.
func (l *League) Start() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.state != REGISTRATION {
		return Fail(WrongState, "league is %s", l.state)
	}
	if len(l.players) < 2 || len(l.referees) == 0 {
		return Fail(InsufficientParticipants,
			"%d players and %d referees registered",
			len(l.players), len(l.referees))
	}
	l.state = IN_PROGRESS
	return nil
}

// Plan returns the number of rounds the league is configured to
// play.  A plan of zero stands for one full round-robin cycle.
func (l *League) Plan() uint {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.plan > 0 {
		return l.plan
	}
	n := uint(len(l.players))
	if n%2 == 1 {
		return n
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// NextRound reserves the next round number for the scheduler.
func (l *League) NextRound() (uint, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.state != IN_PROGRESS {
		return 0, Fail(WrongState, "league is %s", l.state)
	}
	return l.round + 1, nil
}

// CommitRound appends a finished round to the match history, applies
// the point allocation to the player records and checks whether the
// round plan is exhausted.  A round is committed in full or not at
// all.
func (l *League) CommitRound(matches []*Match) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.state != IN_PROGRESS {
		// The league was reset or terminated while the round
		// was running; the engines have aborted their matches
		// and nothing may be committed.
		Debug.Println("Dropping round results, league is", l.state)
		return
	}

	for _, m := range matches {
		if !m.Over() {
			panic(fmt.Sprintf("Committing unfinished match %s", m))
		}
		l.matches = append(l.matches, m)
		l.apply(m)
	}
	l.round++

	plan := l.plan
	if plan == 0 {
		n := uint(len(l.players))
		if n%2 == 1 {
			plan = n
		} else {
			plan = n - 1
		}
	}
	if l.round >= plan {
		l.state = FINISHED
		l.cancel()
	}
}

// apply translates a terminal match into counter and point updates.
// The caller must hold the lock.
func (l *League) apply(m *Match) {
	switch {
	case m.Winner != nil:
		loser := m.Even
		if m.Winner == m.Even {
			loser = m.Odd
		}
		m.Winner.Wins++
		m.Winner.Points += l.Pts.Win
		loser.Losses++
		loser.Points += l.Pts.Loss
	case m.State == COMPLETED:
		m.Odd.Draws++
		m.Even.Draws++
		m.Odd.Points += l.Pts.Draw
		m.Even.Points += l.Pts.Draw
	default:
		// Aborted without a winner (reset or termination);
		// no points are awarded.
	}
}

// Terminate ends the league explicitly.
func (l *League) Terminate() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.state != IN_PROGRESS {
		return Fail(WrongState, "league is %s", l.state)
	}
	l.state = FINISHED
	l.cancel()
	return nil
}

// Reset returns the league to the registration state.  It is always
// permitted: match history and round records are cleared, player and
// referee registrations survive with zeroed counters, and all
// in-flight matches are aborted through the league context.
func (l *League) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.cancel()
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.matches = nil
	l.round = 0
	for _, p := range l.players {
		p.Points = 0
		p.Wins = 0
		p.Losses = 0
		p.Draws = 0
	}
	l.state = REGISTRATION
	Debug.Println("League reset")
}

// Matches returns a snapshot of the completed match history.
func (l *League) Matches() []*Match {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]*Match(nil), l.matches...)
}

func (l *League) Round() uint {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.round
}

// PlayerById resolves an assigned identifier, or nil.
func (l *League) PlayerById(id string) *Player {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, p := range l.players {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func (l *League) RefereeById(id string) *Referee {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, r := range l.referees {
		if r.Id == id {
			return r
		}
	}
	return nil
}
