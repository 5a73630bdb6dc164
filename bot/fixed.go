// Fixed-Value Agent
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

package bot

import (
	"context"
	"fmt"
	"time"

	pgl "go-pgl"
)

// fixed plays the same value every round.  Entirely predictable, it
// exists as a baseline opponent and as a punching bag for tests.
type fixed struct {
	meta  pgl.Meta
	value int
}

func (b *fixed) Request(ctx context.Context, m *pgl.Match, role pgl.Role) (*pgl.Move, bool) {
	if m.Over() {
		panic("Unexpected final state")
	}

	return &pgl.Move{
		Value: b.value,
		Stamp: time.Now(),
	}, true
}

func (b *fixed) Meta() *pgl.Meta { return &b.meta }
func (b *fixed) String() string  { return b.meta.Name }
func (*fixed) Alive() bool       { return true }

// MakeFixed returns an agent that always plays VALUE.  The value is
// clamped into the legal range of RULES.
func MakeFixed(rules pgl.Rules, value int) pgl.Agent {
	lo, hi := rules.Bounds()
	if value < lo {
		value = lo
	}
	if value > hi {
		value = hi
	}
	return &fixed{
		meta: pgl.Meta{
			Name:  fmt.Sprintf("fixed-%d", value),
			Games: []string{rules.Game()},
			Descr: "An agent that always plays the same value",
		},
		value: value,
	}
}
