// Common Interfaces and constants
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
	"time"
)

type (
	// Role is the parity a player is assigned within a match
	Role bool
	// MatchState is the lifecycle state of a single match
	MatchState uint8
)

const (
	// Possible role assignments
	Even, Odd Role = false, true

	// Possible match states
	SCHEDULED MatchState = iota
	PLAYING
	COMPLETED
	ABORTED
)

func (r Role) String() string {
	switch r {
	case Even:
		return "even"
	case Odd:
		return "odd"
	}
	panic("Illegal role")
}

func (s MatchState) String() string {
	switch s {
	case SCHEDULED:
		return "Scheduled"
	case PLAYING:
		return "Playing"
	case COMPLETED:
		return "Completed"
	case ABORTED:
		return "Aborted"
	default:
		panic(fmt.Sprintf("Illegal match state: %d", s))
	}
}

// Meta is the static description an agent hands over on registration.
type Meta struct {
	Name    string
	Games   []string // supported game types
	Contact string
	Descr   string
}

// Agent is anything that can take part in a match.  Remote clients,
// built-in bots and isolated containers all implement this interface.
type Agent interface {
	// Request asks the agent for a move.  The second return value
	// is false if the agent has definitively failed (disconnect,
	// dead container) and cannot answer, now or later.
	Request(context.Context, *Match, Role) (*Move, bool)
	Meta() *Meta
	Alive() bool
}

// Notifier is implemented by agents that want to be informed about
// the progress of their matches.  Notifications are optional, an
// agent that does not implement the interface is skipped.
type Notifier interface {
	Started(*Match, Role)
	Resolved(*Match, *RoundOfPlay, Role)
	Ended(*Match, Role, uint)
}

// Rules describes a game variant.  The scheduler and the standings
// are agnostic of the game being played, only the match engine
// evaluates moves through this interface.
type Rules interface {
	// Resolve computes the round outcome for a pair of moves.
	// The winner is reported as the role that takes the round.
	Resolve(odd, even int) (sum int, winner Role)
	// Bounds returns the inclusive range of legal moves.
	Bounds() (lo, hi int)
	// Game names the game type, as used in capability sets.
	Game() string
}

// Points configures how match outcomes translate into league points.
type Points struct {
	Win, Draw, Loss uint
}

type Player struct {
	Id        string // assigned identifier, "P01", "P02", ...
	Meta      Meta
	Points    uint
	Wins      uint
	Losses    uint
	Draws     uint
	Withdrawn bool

	// Live connection, nil while the player is offline
	Agent Agent
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%q)", p.Id, p.Meta.Name)
}

// Active players can be scheduled for matches.
func (p *Player) Active() bool {
	return !p.Withdrawn && p.Agent != nil && p.Agent.Alive()
}

type Referee struct {
	Id       string // assigned identifier, "REF01", ...
	Contact  string
	Capacity uint // maximal number of concurrent matches
	Alive    bool

	// Live connection, may be nil for a server-side referee
	Agent Agent
}

func (r *Referee) String() string { return r.Id }

// Move is a single numeric move, as submitted by an agent.
type Move struct {
	Value int
	Stamp time.Time
}

// RoundOfPlay is one resolved turn within a match.  Forfeited moves
// are recorded explicitly so that a forfeit loss remains
// distinguishable from a played loss.
type RoundOfPlay struct {
	Number      uint
	OddMove     int
	EvenMove    int
	OddForfeit  bool
	EvenForfeit bool
	Sum         int
	Winner      Role
	Contested   bool // false if neither side scored
	OddScore    uint // running score snapshots
	EvenScore   uint
	Stamp       time.Time
}

// Move returns the move the given role submitted, and whether it was
// forfeited.
func (r *RoundOfPlay) Move(role Role) (int, bool) {
	if role == Odd {
		return r.OddMove, r.OddForfeit
	}
	return r.EvenMove, r.EvenForfeit
}

type Match struct {
	Id    string // "R1M1", round number plus sequence
	Db    int64  // database identifier, zero until first saved
	Round uint   // league-level round

	// Role assignment is fixed when the match is set up
	Odd, Even *Player
	Referee   *Referee

	Rounds    []*RoundOfPlay
	OddScore  uint
	EvenScore uint
	State     MatchState
	Winner    *Player // nil denotes a draw
	Forfeited bool    // terminal state was reached by forfeit
	Stamp     time.Time
}

func (m *Match) String() string {
	return fmt.Sprintf("%s (%s vs. %s)", m.Id, m.Odd.Id, m.Even.Id)
}

func (m *Match) Player(r Role) *Player {
	switch r {
	case Odd:
		return m.Odd
	case Even:
		return m.Even
	default:
		panic("Unknown role")
	}
}

func (m *Match) Role(p *Player) Role {
	switch p {
	case m.Odd:
		return Odd
	case m.Even:
		return Even
	default:
		panic("Unknown player")
	}
}

func (m *Match) Score(r Role) uint {
	if r == Odd {
		return m.OddScore
	}
	return m.EvenScore
}

// Over checks if the match has reached a terminal state.
func (m *Match) Over() bool {
	return m.State == COMPLETED || m.State == ABORTED
}
