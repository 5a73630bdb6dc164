// Match Engine
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
	"time"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
)

// answer is one player's reply to a move request.
type answer struct {
	role pgl.Role
	move *pgl.Move
	dead bool
}

// started tells both players that their match begins.
func started(m *pgl.Match) {
	for _, r := range []pgl.Role{pgl.Odd, pgl.Even} {
		if n, ok := m.Player(r).Agent.(pgl.Notifier); ok {
			n.Started(m, r)
		}
	}
}

// resolved forwards a round record to both players.
func resolved(m *pgl.Match, rec *pgl.RoundOfPlay) {
	for _, r := range []pgl.Role{pgl.Odd, pgl.Even} {
		if n, ok := m.Player(r).Agent.(pgl.Notifier); ok {
			n.Resolved(m, rec, r)
		}
	}
}

// ended reports the terminal state and the point allocation.
func ended(m *pgl.Match, pts pgl.Points) {
	for _, r := range []pgl.Role{pgl.Odd, pgl.Even} {
		p := m.Player(r)
		var award uint
		switch {
		case m.Winner == p:
			award = pts.Win
		case m.Winner == nil && m.State == pgl.COMPLETED:
			award = pts.Draw
		default:
			award = pts.Loss
		}
		if n, ok := p.Agent.(pgl.Notifier); ok {
			n.Ended(m, r, award)
		}
	}
}

// collect issues a move request to each player and waits for both
// answers.  Each request carries its own deadline, relative to the
// moment it was issued.  A missing or late answer comes back as a nil
// move.
func collect(ctx context.Context, m *pgl.Match, limit time.Duration) (odd, even answer) {
	c := make(chan answer, 2)
	for _, role := range []pgl.Role{pgl.Odd, pgl.Even} {
		go func(role pgl.Role) {
			rctx, cancel := context.WithTimeout(ctx, limit)
			defer cancel()

			move, ok := m.Player(role).Agent.Request(rctx, m, role)
			c <- answer{role: role, move: move, dead: !ok}
		}(role)
	}

	for i := 0; i < 2; i++ {
		a := <-c
		if a.role == pgl.Odd {
			odd = a
		} else {
			even = a
		}
	}
	return odd, even
}

// Play drives one match from setup to a terminal state.  It
// exclusively owns the match until it returns.
func Play(m *pgl.Match, st *cmd.State, conf *cmd.Conf) error {
	var (
		ctx    = st.League.Context()
		rules  = st.Rules
		lo, hi = rules.Bounds()
		pts    = conf.Points()
		bg     = context.Background()

		// consecutive forfeit counters
		oddRun, evenRun uint
	)

	// Setup: roles are fixed, scores start at zero.
	m.State = pgl.PLAYING
	m.Stamp = time.Now()
	st.Database.SaveMatch(bg, m)
	started(m)
	pgl.Debug.Println("Starting", m, "refereed by", m.Referee)

	abort := func(winner *pgl.Player) {
		m.State = pgl.ABORTED
		m.Winner = winner
		m.Forfeited = winner != nil
	}

	for n := uint(1); ; n++ {
		// A league reset aborts the match without waiting on
		// pending responses.
		if ctx.Err() != nil {
			abort(nil)
			break
		}

		odd, even := collect(ctx, m, conf.Game.Timeout)
		if ctx.Err() != nil {
			abort(nil)
			break
		}

		// A definitive failure ends the match right away, the
		// opponent wins by forfeit.
		if odd.dead {
			pgl.Debug.Println(m.Odd, "failed during", m)
			abort(m.Even)
			break
		}
		if even.dead {
			pgl.Debug.Println(m.Even, "failed during", m)
			abort(m.Odd)
			break
		}

		rec := &pgl.RoundOfPlay{
			Number: n,
			Stamp:  time.Now(),
		}

		// An invalid or late move becomes a forfeit marker.
		if odd.move != nil && lo <= odd.move.Value && odd.move.Value <= hi {
			rec.OddMove = odd.move.Value
		} else {
			if odd.move != nil {
				pgl.Debug.Printf("%s made illegal move %d",
					m.Odd, odd.move.Value)
			}
			rec.OddForfeit = true
		}
		if even.move != nil && lo <= even.move.Value && even.move.Value <= hi {
			rec.EvenMove = even.move.Value
		} else {
			if even.move != nil {
				pgl.Debug.Printf("%s made illegal move %d",
					m.Even, even.move.Value)
			}
			rec.EvenForfeit = true
		}

		switch {
		case rec.OddForfeit && rec.EvenForfeit:
			// Nobody answered; the round is void.
			rec.Contested = false
			oddRun++
			evenRun++
		case rec.OddForfeit:
			rec.Contested = true
			rec.Winner = pgl.Even
			m.EvenScore++
			oddRun++
			evenRun = 0
		case rec.EvenForfeit:
			rec.Contested = true
			rec.Winner = pgl.Odd
			m.OddScore++
			evenRun++
			oddRun = 0
		default:
			rec.Contested = true
			rec.Sum, rec.Winner = rules.Resolve(
				rec.OddMove, rec.EvenMove)
			if rec.Winner == pgl.Odd {
				m.OddScore++
			} else {
				m.EvenScore++
			}
			oddRun, evenRun = 0, 0
		}

		rec.OddScore = m.OddScore
		rec.EvenScore = m.EvenScore
		m.Rounds = append(m.Rounds, rec)
		st.Database.SaveRound(bg, m, rec)
		resolved(m, rec)
		pgl.Debug.Printf("%s round %d: %d/%d -> %s (%d:%d)",
			m, n, rec.OddMove, rec.EvenMove, rec.Winner,
			m.OddScore, m.EvenScore)

		// Repeated forfeits escalate into a match abort in the
		// opponent's favour.  If both players stopped answering,
		// nobody is awarded the match.
		if oddRun >= conf.Game.ForfeitLimit && evenRun >= conf.Game.ForfeitLimit {
			abort(nil)
			break
		}
		if oddRun >= conf.Game.ForfeitLimit {
			abort(m.Even)
			break
		}
		if evenRun >= conf.Game.ForfeitLimit {
			abort(m.Odd)
			break
		}

		if m.OddScore >= conf.Game.RoundsToWin {
			m.State = pgl.COMPLETED
			m.Winner = m.Odd
			break
		}
		if m.EvenScore >= conf.Game.RoundsToWin {
			m.State = pgl.COMPLETED
			m.Winner = m.Even
			break
		}
		if n >= conf.Game.MaxRounds {
			m.State = pgl.COMPLETED
			switch {
			case m.OddScore > m.EvenScore:
				m.Winner = m.Odd
			case m.EvenScore > m.OddScore:
				m.Winner = m.Even
			default:
				m.Winner = nil // draw
			}
			break
		}
	}

	st.Database.SaveMatch(bg, m)
	ended(m, pts)
	pgl.Debug.Printf("%s finished (%s, %d:%d)",
		m, m.State, m.OddScore, m.EvenScore)
	return nil
}
