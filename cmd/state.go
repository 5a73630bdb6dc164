// Shared State
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

package pgl

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	pgl "go-pgl"
)

type Manager interface {
	fmt.Stringer
	Start(*State, *Conf)
	Shutdown()
}

// Scheduler produces and executes the matches of a league round.
type Scheduler interface {
	Manager

	// RunRound schedules the next round and plays it to
	// completion.  No partial round is ever committed.
	RunRound(*State, *Conf) error
}

// Database is the persistent audit log of the league.
type Database interface {
	Manager

	// Store interface
	SavePlayer(context.Context, *pgl.Player)
	SaveReferee(context.Context, *pgl.Referee)
	SaveMatch(context.Context, *pgl.Match)
	SaveRound(context.Context, *pgl.Match, *pgl.RoundOfPlay)

	// Access interface
	QueryMatches(context.Context, chan<- *pgl.Match, int)
	QueryMatch(context.Context, int64, chan<- *pgl.Match, chan<- *pgl.RoundOfPlay)
	QueryPlayers(context.Context, chan<- *pgl.Player, int)
}

type State struct {
	Context context.Context
	Kill    context.CancelFunc
	Running bool

	League    *pgl.League
	Rules     pgl.Rules
	Scheduler Scheduler
	Database  Database
	Managers  []Manager
}

func MakeState() *State {
	ctx, kill := context.WithCancel(context.Background())
	return &State{
		Context: ctx,
		Kill:    kill,
	}
}

func (st *State) Register(m Manager) {
	if st.Running {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	switch s := m.(type) {
	case Database:
		st.Database = s
	case Scheduler:
		st.Scheduler = s
	}

	st.Managers = append(st.Managers, m)
}

func (st *State) Start(c *Conf) {
	// Start the service
	for _, m := range st.Managers {
		pgl.Debug.Printf("Starting %s", m)
		go m.Start(st, c)
	}
	st.Running = true

	// Catch an interrupt request...
	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	select {
	case <-intr:
		log.Println("Caught interrupt")
	case <-st.Context.Done():
		log.Println("Requested shutdown")
	}

	done := make(chan struct{})
	go func() {
		// ...and request all managers to shut down.
		pgl.Debug.Println("Waiting for managers to shutdown...")
		for i := len(st.Managers) - 1; i >= 0; i-- {
			m := st.Managers[i]
			pgl.Debug.Printf("Shutting %s down", m)
			m.Shutdown()
		}
		done <- struct{}{}
	}()

	select {
	case <-intr:
		log.Println("Forced shutdown")
	case <-done:
		log.Println("Shutting down regularly")
	}
}
