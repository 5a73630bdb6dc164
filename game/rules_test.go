// Parity rules tests
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
	"testing"

	pgl "go-pgl"
)

func TestResolve(t *testing.T) {
	rules := MakeParity(1, 5)
	for _, test := range []struct {
		odd, even int
		sum       int
		winner    pgl.Role
	}{
		{odd: 3, even: 2, sum: 5, winner: pgl.Odd},
		{odd: 2, even: 2, sum: 4, winner: pgl.Even},
		{odd: 1, even: 1, sum: 2, winner: pgl.Even},
		{odd: 5, even: 4, sum: 9, winner: pgl.Odd},
		{odd: 1, even: 4, sum: 5, winner: pgl.Odd},
		{odd: 5, even: 5, sum: 10, winner: pgl.Even},
	} {
		sum, winner := rules.Resolve(test.odd, test.even)
		if sum != test.sum {
			t.Errorf("Resolve(%d, %d): expected sum %d, got %d",
				test.odd, test.even, test.sum, sum)
		}
		if winner != test.winner {
			t.Errorf("Resolve(%d, %d): expected %s to win, got %s",
				test.odd, test.even, test.winner, winner)
		}
	}
}

func TestBounds(t *testing.T) {
	rules := MakeParity(1, 5)
	if lo, hi := rules.Bounds(); lo != 1 || hi != 5 {
		t.Errorf("Expected bounds [1, 5], got [%d, %d]", lo, hi)
	}
	if rules.Game() != "parity" {
		t.Errorf("Unexpected game name %q", rules.Game())
	}
}

func TestEmptyRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for an empty move range")
		}
	}()
	MakeParity(5, 1)
}
