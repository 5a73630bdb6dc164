// Standings projection tests
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
	"testing"

	pgl "go-pgl"
)

var pts = pgl.Points{Win: 3, Draw: 1, Loss: 0}

func match(odd, even, winner *pgl.Player) *pgl.Match {
	return &pgl.Match{
		Odd:    odd,
		Even:   even,
		State:  pgl.COMPLETED,
		Winner: winner,
	}
}

func TestEmptyHistory(t *testing.T) {
	players := []*pgl.Player{{Id: "P01"}, {Id: "P02"}}
	table := Table(players, nil, pts)

	if len(table) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table))
	}
	for i, s := range table {
		if s.Points != 0 || s.Wins != 0 || s.Losses != 0 || s.Draws != 0 {
			t.Errorf("Row %d not zeroed: %+v", i, s)
		}
		if s.Rank != uint(i+1) {
			t.Errorf("Row %d has rank %d", i, s.Rank)
		}
	}
	// Equal records fall back to the identifier ordering
	if table[0].Player.Id != "P01" || table[1].Player.Id != "P02" {
		t.Error("Expected identifier ordering for equal records")
	}
}

func TestPointsOrdering(t *testing.T) {
	a := &pgl.Player{Id: "P01"}
	b := &pgl.Player{Id: "P02"}
	c := &pgl.Player{Id: "P03"}

	table := Table([]*pgl.Player{a, b, c}, []*pgl.Match{
		match(a, b, b),
		match(b, c, b),
		match(a, c, nil),
	}, pts)

	if table[0].Player != b || table[0].Points != 6 {
		t.Errorf("Expected %s on top with 6 points, got %s with %d",
			b, table[0].Player, table[0].Points)
	}
	if table[1].Player != a || table[1].Points != 1 {
		t.Errorf("Expected %s second with 1 point, got %s with %d",
			a, table[1].Player, table[1].Points)
	}
	if table[1].Draws != 1 || table[2].Draws != 1 {
		t.Error("Draw not counted for both participants")
	}
}

func TestHeadToHead(t *testing.T) {
	a := &pgl.Player{Id: "P01"}
	b := &pgl.Player{Id: "P02"}
	c := &pgl.Player{Id: "P03"}

	// A and B end up with equal points and wins; their direct
	// encounter went to B, which must decide the order.
	table := Table([]*pgl.Player{a, b, c}, []*pgl.Match{
		match(a, b, b),
		match(a, c, a),
	}, pts)

	if table[0].Player != b {
		t.Errorf("Expected %s on top via head-to-head, got %s",
			b, table[0].Player)
	}
	if table[1].Player != a {
		t.Errorf("Expected %s second, got %s", a, table[1].Player)
	}
}

func TestWinsBeforeHeadToHead(t *testing.T) {
	a := &pgl.Player{Id: "P01"}
	b := &pgl.Player{Id: "P02"}
	c := &pgl.Player{Id: "P03"}
	d := &pgl.Player{Id: "P04"}

	// A collects 3 points from three draws, B from a single win;
	// equal points, but more wins rank higher.
	table := Table([]*pgl.Player{a, b, c, d}, []*pgl.Match{
		match(a, c, nil),
		match(a, d, nil),
		match(a, b, nil),
		match(b, c, b),
	}, pgl.Points{Win: 2, Draw: 1, Loss: 0})

	if table[0].Player != b {
		t.Errorf("Expected %s on top with more wins, got %s",
			b, table[0].Player)
	}
}

func TestAbortedMatches(t *testing.T) {
	a := &pgl.Player{Id: "P01"}
	b := &pgl.Player{Id: "P02"}

	// An abort with a winner counts like a win; an abort without
	// one awards nothing.
	table := Table([]*pgl.Player{a, b}, []*pgl.Match{
		{Odd: a, Even: b, State: pgl.ABORTED, Winner: a, Forfeited: true},
		{Odd: a, Even: b, State: pgl.ABORTED},
	}, pts)

	if table[0].Player != a || table[0].Points != 3 || table[0].Wins != 1 {
		t.Errorf("Forfeit win not counted: %+v", table[0])
	}
	if table[1].Draws != 0 || table[1].Points != 0 {
		t.Errorf("Void abort awarded points: %+v", table[1])
	}
}

func TestProjectionIsPure(t *testing.T) {
	a := &pgl.Player{Id: "P01"}
	b := &pgl.Player{Id: "P02"}
	ms := []*pgl.Match{match(a, b, a)}

	Table([]*pgl.Player{a, b}, ms, pts)
	if a.Points != 0 || a.Wins != 0 || b.Losses != 0 {
		t.Error("Projection mutated the player records")
	}

	// Rebuilding yields the same table
	t1 := Table([]*pgl.Player{a, b}, ms, pts)
	t2 := Table([]*pgl.Player{a, b}, ms, pts)
	for i := range t1 {
		if *t1[i] != *t2[i] {
			t.Errorf("Row %d differs between projections", i)
		}
	}
}
