// Configuration
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
	"flag"
	"io"
	"log"
	"os"
	"time"

	pgl "go-pgl"

	"github.com/BurntSushi/toml"
)

const defconf = "league.toml"

func init() {
	def := &defaultConfig

	flag.StringVar(&def.League.Id, "league", def.League.Id,
		"Identifier of the league")
	flag.UintVar(&def.League.Rounds, "rounds", def.League.Rounds,
		"Number of rounds to play (0 for a full cycle)")

	flag.UintVar(&def.Proto.Port, "tcpport", def.Proto.Port,
		"Port to use for TCP connections")
	flag.BoolVar(&def.Proto.Ping, "ping", def.Proto.Ping,
		"Enable ping as a keepalive check")

	flag.DurationVar(&def.Game.Timeout, "move-timeout", def.Game.Timeout,
		"Time limit for a single move")
	flag.UintVar(&def.Game.RoundsToWin, "rounds-to-win", def.Game.RoundsToWin,
		"Score a player needs to win a match")
	flag.UintVar(&def.Game.MaxRounds, "max-rounds", def.Game.MaxRounds,
		"Upper bound on rounds per match")

	flag.StringVar(&def.Database.File, "db", def.Database.File,
		"File to use for the database")

	flag.UintVar(&def.Web.Port, "wwwport", def.Web.Port,
		"Port to use for the HTTP server")
	flag.BoolVar(&def.Web.WebSocket, "websocket", def.Web.WebSocket,
		"Enable WebSocket connections")

	flag.BoolVar(&debug, "debug", debug, "Enable debug output")
	flag.BoolVar(&silent, "silent", silent, "Disable verbose output")
	flag.BoolVar(&dump, "dump-config", dump, "Dump configuration to standard output")
	flag.StringVar(&cfile, "conf", cfile, "Path to configuration file")
}

type LeagueConf struct {
	Id     string `toml:"id"`
	Game   string `toml:"game"`
	Rounds uint   `toml:"rounds"`
}

type DatabaseConf struct {
	File string `toml:"file"`
}

type ProtoConf struct {
	Port    uint          `toml:"port"`
	Ping    bool          `toml:"ping"`
	Timeout time.Duration `toml:"timeout"`
}

type GameConf struct {
	Timeout     time.Duration `toml:"timeout"`
	RoundsToWin uint          `toml:"rounds-to-win"`
	MaxRounds   uint          `toml:"max-rounds"`
	MinMove     int           `toml:"min-move"`
	MaxMove     int           `toml:"max-move"`
	// Consecutive forfeits by one player before the match is
	// aborted in the opponent's favour.
	ForfeitLimit uint `toml:"forfeit-limit"`

	WinPoints  uint `toml:"win-points"`
	DrawPoints uint `toml:"draw-points"`
	LossPoints uint `toml:"loss-points"`
}

type ClosedConf struct {
	Images []string `toml:"images"`
}

type WebConf struct {
	Enabled   bool   `toml:"enabled"`
	Port      uint   `toml:"port"`
	WebSocket bool   `toml:"websocket"`
	About     string `toml:"about,omitempty"`
}

// Internal representation
type Conf struct {
	League   LeagueConf   `toml:"league"`
	Database DatabaseConf `toml:"database"`
	Proto    ProtoConf    `toml:"proto"`
	Game     GameConf     `toml:"game"`
	Closed   ClosedConf   `toml:"closed"`
	Web      WebConf      `toml:"web"`
}

// Configuration object used by default
var defaultConfig = Conf{
	League: LeagueConf{
		Id:   "pgl",
		Game: "parity",
	},
	Proto: ProtoConf{
		Port:    2761,
		Ping:    true,
		Timeout: time.Second * 20,
	},
	Database: DatabaseConf{
		File: "league.db",
	},
	Game: GameConf{
		Timeout:      time.Second * 5,
		RoundsToWin:  3,
		MaxRounds:    5,
		MinMove:      1,
		MaxMove:      5,
		ForfeitLimit: 3,
		WinPoints:    3,
		DrawPoints:   1,
		LossPoints:   0,
	},
	Web: WebConf{
		Enabled:   true,
		WebSocket: true,
		Port:      8080,
	},
}

var (
	debug  = false
	silent = false
	dump   = false
	cfile  = defconf
)

// Points converts the configured allocation into the common type.
func (c *Conf) Points() pgl.Points {
	return pgl.Points{
		Win:  c.Game.WinPoints,
		Draw: c.Game.DrawPoints,
		Loss: c.Game.LossPoints,
	}
}

// Load opens the configuration file, if available, and applies the
// command line overrides.
func (c *Conf) Load() {
	*c = defaultConfig
	file, err := os.Open(cfile)
	if err != nil {
		if !os.IsNotExist(err) || cfile != defconf {
			log.Fatal(err)
		}
	} else {
		defer file.Close()
		_, err := toml.NewDecoder(file).Decode(c)
		if err != nil {
			log.Print(err)
			*c = defaultConfig
		}
	}

	switch {
	case debug:
		pgl.Debug.SetOutput(os.Stderr)
		log.Default().SetFlags(log.LstdFlags | log.Lshortfile)
		pgl.Debug.Println("Debug logging has been enabled")
	case silent:
		log.Default().SetOutput(io.Discard)
	}

	// Dump the configuration onto the disk if requested
	if dump {
		if err := c.Dump(os.Stdout); err != nil {
			log.Fatalln("Failed to dump default configuration:", err)
		}
		os.Exit(0)
	}
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	return toml.NewEncoder(wr).Encode(c)
}
