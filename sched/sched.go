// Round Execution
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
	"fmt"
	"log"
	"sync"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
	"go-pgl/game"
)

// rr schedules round-robin rounds on demand and fans the matches of a
// round out to the registered referees.  Matches never share mutable
// state, so they run concurrently without locking; the worker count
// is the sum of the referee capacities.
type rr struct {
	lock sync.Mutex // one round at a time
	wait sync.WaitGroup
}

func (*rr) String() string { return "Round Robin Scheduler" }

func (r *rr) Start(st *cmd.State, conf *cmd.Conf) {}

func (r *rr) Shutdown() {
	r.wait.Wait()
}

func (r *rr) RunRound(st *cmd.State, conf *cmd.Conf) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	league := st.League
	round, err := league.NextRound()
	if err != nil {
		return err
	}

	var active []*pgl.Player
	for _, p := range league.Players() {
		if p.Active() {
			active = append(active, p)
		}
	}
	if len(active) < 2 {
		return pgl.Fail(pgl.NoEligiblePlayers,
			"%d active players", len(active))
	}

	var referees []*pgl.Referee
	for _, ref := range league.Referees() {
		if ref.Alive {
			referees = append(referees, ref)
		}
	}
	if len(referees) == 0 {
		return pgl.Fail(pgl.InsufficientParticipants,
			"no referee available")
	}

	pairs, bye := pairings(active, round)
	if len(pairs) == 0 {
		return pgl.Fail(pgl.NoEligiblePlayers,
			"no pairings for round %d", round)
	}
	if bye != nil {
		pgl.Debug.Println(bye, "receives a bye in round", round)
	}

	matches := make([]*pgl.Match, len(pairs))
	for i, p := range pairs {
		matches[i] = &pgl.Match{
			Id:    fmt.Sprintf("R%dM%d", round, i+1),
			Round: round,
			Odd:   p.Odd,
			Even:  p.Even,
			State: pgl.SCHEDULED,
		}
	}
	pgl.Debug.Printf("Scheduled %d matches for round %d",
		len(matches), round)

	// Distribute the matches over the referees.  Every referee
	// contributes as many workers as it has capacity; each match
	// is owned by exactly one engine instance until terminal.
	queue := make(chan *pgl.Match, len(matches))
	for _, m := range matches {
		queue <- m
	}
	close(queue)

	var done sync.WaitGroup
	for _, ref := range referees {
		for slot := uint(0); slot < ref.Capacity; slot++ {
			done.Add(1)
			r.wait.Add(1)
			go func(ref *pgl.Referee) {
				defer done.Done()
				defer r.wait.Done()
				for m := range queue {
					m.Referee = ref
					if err := game.Play(m, st, conf); err != nil {
						log.Print(err)
					}
				}
			}(ref)
		}
	}
	done.Wait()

	league.CommitRound(matches)
	return nil
}

func MakeRoundRobin() cmd.Scheduler {
	return &rr{}
}
