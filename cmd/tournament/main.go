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
	"log"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	pgl "go-pgl"
	"go-pgl/bot"
	cmd "go-pgl/cmd"
	"go-pgl/db"
	"go-pgl/game"
	"go-pgl/isol"
	"go-pgl/sched"
	"go-pgl/standings"
)

// Exit codes, for scripting around a closed tournament
const (
	EXIT_OK = iota
	EXIT_REJECTED
	EXIT_INSUFFICIENT
	EXIT_INELIGIBLE
	EXIT_INTERNAL
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return EXIT_OK
	case pgl.IsKind(err, pgl.RegistrationRejected):
		return EXIT_REJECTED
	case pgl.IsKind(err, pgl.InsufficientParticipants):
		return EXIT_INSUFFICIENT
	case pgl.IsKind(err, pgl.NoEligiblePlayers):
		return EXIT_INELIGIBLE
	default:
		return EXIT_INTERNAL
	}
}

func main() {
	dir := flag.String("dir", "", "Agent image directory")
	bots := flag.Uint("bots", 0, "Number of built-in bots to add")

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

	st.Rules = game.MakeParity(conf.Game.MinMove, conf.Game.MaxMove)
	st.League = pgl.MakeLeague(conf.League.Id, conf.League.Game,
		conf.League.Rounds, conf.Points())

	// Enable the database
	db.Register(st, &conf)

	// Collect the images to run
	images := conf.Closed.Images
	if *dir != "" {
		dent, err := os.ReadDir(*dir)
		if err != nil {
			log.Fatal(err)
		}
		images = nil
		for _, ent := range dent {
			if ent.IsDir() {
				images = append(images, ent.Name())
			}
		}
		if len(conf.Closed.Images) > 0 {
			log.Print("Ignoring image list from configuration")
		}
	}

	// Start the isolated agents.  Each one connects back to a
	// dedicated listener and registers itself as a player.
	var controlled []pgl.Agent
	for _, name := range images {
		a := isol.MakeDockerAgent(name)
		if _, err := isol.Start(st, &conf, a); err != nil {
			log.Println(err)
			continue
		}
		controlled = append(controlled, a)
	}
	// Built-in bots fill up the field if requested
	lo, _ := st.Rules.Bounds()
	for i := uint(0); i < *bots; i++ {
		var b pgl.Agent
		switch i % 3 {
		case 0:
			b = bot.MakeRandom(st.Rules)
		case 1:
			b = bot.MakeCounter(st.Rules)
		case 2:
			b = bot.MakeFixed(st.Rules, lo+int(i))
		}
		meta := *b.Meta()
		meta.Contact = fmt.Sprintf("%s-%d", meta.Name, i+1)
		if _, err := st.League.RegisterPlayer(meta, b); err != nil {
			log.Fatal(err)
		}
	}

	// The server plays the referee itself
	_, err := st.League.RegisterReferee("local",
		uint(runtime.NumCPU()), nil)
	if err != nil {
		log.Fatal(err)
	}

	// Give the isolated agents a moment to finish their handshake
	for i := 0; i < 50; i++ {
		if len(st.League.Players()) >= len(controlled)+int(*bots) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Play the entire league, then shut down
	rr := sched.MakeRoundRobin()
	st.Register(rr)
	drv := sched.MakeAuto(rr)
	st.Register(drv)
	st.Start(&conf)

	// Print the final standings
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tPOINTS\tWINS\tLOSSES\tDRAWS")
	table := standings.Table(st.League.Players(),
		st.League.Matches(), conf.Points())
	for _, row := range table {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n",
			row.Rank, row.Player.Id, row.Points,
			row.Wins, row.Losses, row.Draws)
	}
	tw.Flush()

	for _, a := range controlled {
		if err := isol.Shutdown(a); err != nil {
			log.Println(err)
		}
	}
	os.Exit(exitCode(drv.Err()))
}
