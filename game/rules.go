// Parity Game Rules
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
	pgl "go-pgl"
)

// parity is the odds-and-evens game: both players pick a number, the
// parity of the sum decides who takes the round.
type parity struct {
	lo, hi int
}

func (p *parity) Resolve(odd, even int) (int, pgl.Role) {
	sum := odd + even
	if sum%2 != 0 {
		return sum, pgl.Odd
	}
	return sum, pgl.Even
}

func (p *parity) Bounds() (int, int) { return p.lo, p.hi }

func (p *parity) Game() string { return "parity" }

func MakeParity(lo, hi int) pgl.Rules {
	if lo > hi {
		panic("Empty move range")
	}
	return &parity{lo: lo, hi: hi}
}
