// Autonomous League Driver
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
	"log"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
)

// auto drives a league from start to finish without operator
// intervention, and requests a shutdown once the league is over.  It
// delegates the actual round execution to a wrapped scheduler.
type auto struct {
	sched cmd.Scheduler
	err   error
}

func (a *auto) String() string { return "Autopilot" }

func (a *auto) Start(st *cmd.State, conf *cmd.Conf) {
	defer st.Kill()

	if a.err = st.League.Start(); a.err != nil {
		log.Print(a.err)
		return
	}
	for st.League.State() == pgl.IN_PROGRESS {
		if a.err = a.sched.RunRound(st, conf); a.err != nil {
			log.Print(a.err)
			return
		}
	}
}

func (a *auto) Shutdown() {}

// Err reports why the league stopped, if it stopped abnormally.
func (a *auto) Err() error { return a.err }

func MakeAuto(s cmd.Scheduler) *auto {
	return &auto{sched: s}
}
