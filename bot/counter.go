// Predictive Agent
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
	"sync"
	"time"

	pgl "go-pgl"
)

// counter predicts the opponent's next move from the moves it has
// seen so far, and answers with a move that turns the sum to its own
// parity if the prediction holds.
type counter struct {
	meta  pgl.Meta
	rules pgl.Rules

	lock sync.Mutex
	seen map[string][]int // opponent moves, per match
}

// Predict the opponent's next move as their most frequent one.
func (b *counter) predict(match string) int {
	b.lock.Lock()
	defer b.lock.Unlock()

	lo, _ := b.rules.Bounds()
	hist := make(map[int]uint)
	best, n := lo, uint(0)
	for _, v := range b.seen[match] {
		hist[v]++
		if hist[v] > n {
			best, n = v, hist[v]
		}
	}
	return best
}

func (b *counter) Request(ctx context.Context, m *pgl.Match, role pgl.Role) (*pgl.Move, bool) {
	if m.Over() {
		panic("Unexpected final state")
	}

	var (
		lo, hi = b.rules.Bounds()
		theirs = b.predict(m.Id)
		want   = 0 // even sum
	)
	if role == pgl.Odd {
		want = 1
	}

	// Collect every move that lands the predicted sum on the
	// desired parity, and pick one at random.
	var good []int
	for v := lo; v <= hi; v++ {
		if (v+theirs)%2 == want {
			good = append(good, v)
		}
	}
	if len(good) == 0 {
		good = append(good, lo)
	}
	return &pgl.Move{
		Value: good[rand.Intn(len(good))],
		Stamp: time.Now(),
	}, true
}

func (b *counter) Started(m *pgl.Match, role pgl.Role) {}

func (b *counter) Resolved(m *pgl.Match, r *pgl.RoundOfPlay, role pgl.Role) {
	move, forfeit := r.Move(!role)
	if forfeit {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	b.seen[m.Id] = append(b.seen[m.Id], move)
}

func (b *counter) Ended(m *pgl.Match, role pgl.Role, points uint) {
	b.lock.Lock()
	defer b.lock.Unlock()
	delete(b.seen, m.Id)
}

func (b *counter) Meta() *pgl.Meta { return &b.meta }
func (*counter) String() string    { return "counter" }
func (*counter) Alive() bool       { return true }

func MakeCounter(rules pgl.Rules) pgl.Agent {
	return &counter{
		meta: pgl.Meta{
			Name:  "counter",
			Games: []string{rules.Game()},
			Descr: "An agent that counters the opponent's most frequent move",
		},
		rules: rules,
		seen:  make(map[string][]int),
	}
}
