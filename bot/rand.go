// Random Agent
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
	"math/rand"
	"time"

	pgl "go-pgl"
)

type random struct {
	meta  pgl.Meta
	rules pgl.Rules
}

func (b *random) Request(ctx context.Context, m *pgl.Match, role pgl.Role) (*pgl.Move, bool) {
	if m.Over() {
		panic("Unexpected final state")
	}

	lo, hi := b.rules.Bounds()
	return &pgl.Move{
		Value: lo + rand.Intn(hi-lo+1),
		Stamp: time.Now(),
	}, true
}

func (b *random) Meta() *pgl.Meta { return &b.meta }
func (*random) String() string    { return "random" }
func (*random) Alive() bool       { return true } // bots never die

func MakeRandom(rules pgl.Rules) pgl.Agent {
	return &random{
		meta: pgl.Meta{
			Name:  "random",
			Games: []string{rules.Game()},
			Descr: "An agent that only makes random moves",
		},
		rules: rules,
	}
}
