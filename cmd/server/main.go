// Entry point
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

package main

import (
	"flag"
	"fmt"
	"os"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
	"go-pgl/db"
	"go-pgl/game"
	"go-pgl/proto"
	"go-pgl/sched"
	"go-pgl/web"
)

func main() {
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Create a server mode (state) and load configuration
	var conf cmd.Conf
	st := cmd.MakeState()
	conf.Load()

	// Set up the league and the game rules
	st.Rules = game.MakeParity(conf.Game.MinMove, conf.Game.MaxMove)
	st.League = pgl.MakeLeague(conf.League.Id, conf.League.Game,
		conf.League.Rounds, conf.Points())

	// Enable the database
	db.Register(st, &conf)

	// Enable the web interface
	web.Prepare(st, &conf)

	// Allow TCP connections
	proto.Prepare(st, &conf)

	// Use the round robin scheduler
	st.Register(sched.MakeRoundRobin())

	// Launch the server
	st.Start(&conf)
}
