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

// Leaguectl is a thin administrative client for the league server's
// control endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	pgl "go-pgl"
	"go-pgl/proto"
)

// Exit codes, for scripting
const (
	EXIT_OK = iota
	EXIT_REJECTED
	EXIT_INSUFFICIENT
	EXIT_INELIGIBLE
	EXIT_INTERNAL
)

var kinds = map[string]int{
	pgl.RegistrationRejected.String():     EXIT_REJECTED,
	pgl.InsufficientParticipants.String(): EXIT_INSUFFICIENT,
	pgl.NoEligiblePlayers.String():        EXIT_INELIGIBLE,
	pgl.WrongState.String():               EXIT_INSUFFICIENT,
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: %s [flags] start|round|reset|standings\n",
		os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "Address of the web interface")
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	client := &http.Client{Timeout: 60 * time.Second}
	base := url.URL{Scheme: "http", Host: *addr}

	switch op := flag.Arg(0); op {
	case "start", "round", "reset":
		base.Path = "/ctl/" + op
		resp, err := client.Post(base.String(), "", nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(EXIT_INTERNAL)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(body))
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintln(os.Stderr, msg)
			kind, _, _ := strings.Cut(msg, ":")
			if code, ok := kinds[kind]; ok {
				os.Exit(code)
			}
			os.Exit(EXIT_INTERNAL)
		}
		fmt.Println(msg)
	case "standings":
		base.Path = "/standings.json"
		resp, err := client.Get(base.String())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(EXIT_INTERNAL)
		}
		defer resp.Body.Close()

		var standings struct {
			League string               `json:"league"`
			State  string               `json:"state"`
			Round  uint                 `json:"round"`
			Table  []proto.StandingsRow `json:"table"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&standings); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(EXIT_INTERNAL)
		}

		fmt.Printf("League %s (%s), round %d\n",
			standings.League, standings.State, standings.Round)
		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tPLAYER\tPOINTS\tWINS\tLOSSES\tDRAWS")
		for _, row := range standings.Table {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n",
				row.Rank, row.Player, row.Points,
				row.Wins, row.Losses, row.Draws)
		}
		tw.Flush()
	default:
		usage()
	}
}
