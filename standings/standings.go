// Standings Projection
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

package standings

import (
	"sort"

	pgl "go-pgl"
)

type Standing struct {
	Rank   uint
	Player *pgl.Player
	Points uint
	Wins   uint
	Losses uint
	Draws  uint
}

// Table recomputes the ranked standings from the completed match
// history.  It is a pure projection: neither the match nor the player
// records are touched, so the table can be rebuilt at any time, also
// right after a reset when the history is empty.
func Table(players []*pgl.Player, matches []*pgl.Match, pts pgl.Points) []*Standing {
	index := make(map[*pgl.Player]*Standing, len(players))
	table := make([]*Standing, 0, len(players))
	for _, p := range players {
		s := &Standing{Player: p}
		index[p] = s
		table = append(table, s)
	}

	for _, m := range matches {
		if !m.Over() {
			continue
		}
		odd, even := index[m.Odd], index[m.Even]
		if odd == nil || even == nil {
			// Participant of a historic match that is not in
			// the player set under consideration.
			continue
		}
		switch {
		case m.Winner == m.Odd:
			odd.Wins++
			odd.Points += pts.Win
			even.Losses++
			even.Points += pts.Loss
		case m.Winner == m.Even:
			even.Wins++
			even.Points += pts.Win
			odd.Losses++
			odd.Points += pts.Loss
		case m.State == pgl.COMPLETED:
			odd.Draws++
			even.Draws++
			odd.Points += pts.Draw
			even.Points += pts.Draw
		}
	}

	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if h := headToHead(matches, a.Player, b.Player); h != 0 {
			return h > 0
		}
		return a.Player.Id < b.Player.Id
	})

	for i, s := range table {
		s.Rank = uint(i + 1)
	}
	return table
}

// headToHead reports the net direct score between two players:
// positive if A won their encounters more often, negative for B,
// zero if they never met or broke even.
func headToHead(matches []*pgl.Match, a, b *pgl.Player) int {
	net := 0
	for _, m := range matches {
		if !m.Over() || m.Winner == nil {
			continue
		}
		if (m.Odd == a && m.Even == b) || (m.Odd == b && m.Even == a) {
			if m.Winner == a {
				net++
			} else if m.Winner == b {
				net--
			}
		}
	}
	return net
}
