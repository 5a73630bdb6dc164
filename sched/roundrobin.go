// Round Robin Pairing
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
	pgl "go-pgl"
)

// Pair is one scheduled pairing with the roles already assigned.
type Pair struct {
	Odd, Even *pgl.Player
}

// pairings computes the matches of round ROUND (1-indexed) using the
// circle method: one pivot stays fixed while the remaining players
// rotate, then opposite positions are paired.  With an odd number of
// players one player sits out the round.  Roles alternate by match
// index so that neither parity is favoured across a cycle.
func pairings(players []*pgl.Player, round uint) (pairs []Pair, bye *pgl.Player) {
	circle := append([]*pgl.Player(nil), players...)
	if len(circle)%2 == 1 {
		circle = append(circle, nil) // bye marker
	}
	n := len(circle)
	if n < 2 {
		return nil, nil
	}

	// Rotate everyone but the pivot by round-1 positions.
	rot := make([]*pgl.Player, n)
	rot[0] = circle[0]
	for i := 1; i < n; i++ {
		rot[i] = circle[1+(i-1+int(round)-1)%(n-1)]
	}

	for i := 0; i < n/2; i++ {
		a, b := rot[i], rot[n-1-i]
		switch {
		case a == nil:
			bye = b
		case b == nil:
			bye = a
		case len(pairs)%2 == 0:
			pairs = append(pairs, Pair{Odd: a, Even: b})
		default:
			pairs = append(pairs, Pair{Odd: b, Even: a})
		}
	}
	return pairs, bye
}
