// Web interface manager
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

package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
)

const about = `<p>This is a parity game league server.</p>`

//go:embed *.tmpl
var html embed.FS

var (
	// Template manager
	tmpl *template.Template

	// Custom template functions
	funcs = template.FuncMap{
		"inc": func(i int) int {
			return i + 1
		},
		"dec": func(i int) int {
			return i - 1
		},
		"timefmt": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.Stamp)
		},
		"now": func() string {
			return time.Now().Format(time.RFC3339)
		},
		"result": func(m *pgl.Match) template.HTML {
			var msg string
			switch m.State {
			case pgl.SCHEDULED:
				msg = "Scheduled"
			case pgl.PLAYING:
				msg = "Ongoing"
			case pgl.COMPLETED:
				if m.Winner == nil {
					msg = `<span class="draw">Draw</span>`
				} else {
					msg = fmt.Sprintf(`<span class="won">%s won</span>`,
						template.HTMLEscapeString(m.Winner.Id))
				}
			case pgl.ABORTED:
				if m.Winner == nil {
					msg = "Aborted"
				} else {
					msg = fmt.Sprintf(`<span class="resign">Aborted, %s awarded</span>`,
						template.HTMLEscapeString(m.Winner.Id))
				}
			default:
				panic("Unknown outcome")
			}
			return template.HTML(msg)
		},
	}
)

type web struct {
	st   *cmd.State
	conf *cmd.Conf
	mux  *http.ServeMux
	serv *http.Server
}

func (s *web) Start(st *cmd.State, conf *cmd.Conf) {
	s.st = st
	s.conf = conf

	// Prepare HTTP Multiplexer
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/about", s.about)
	s.mux.HandleFunc("/agents", s.showAgents)
	s.mux.HandleFunc("/matches", s.showMatches)
	s.mux.HandleFunc("/match/", s.showMatch)
	s.mux.HandleFunc("/standings.json", s.standings)
	s.mux.HandleFunc("/ctl/start", s.ctlStart)
	s.mux.HandleFunc("/ctl/round", s.ctlRound)
	s.mux.HandleFunc("/ctl/reset", s.ctlReset)
	s.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	s.mux.HandleFunc("/", s.index)

	// Install the WebSocket handler
	if s.conf.Web.WebSocket {
		log.Print("Accepting websocket connections on /socket")
		s.mux.HandleFunc("/socket", upgrader(st, conf))
	}

	// Parse templates
	tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(html, "*.tmpl"))
	var aboutpage string
	if s.conf.Web.About != "" {
		contents, err := os.ReadFile(s.conf.Web.About)
		if err != nil && os.IsNotExist(err) {
			log.Fatal(err)
		}
		aboutpage = string(contents)
	}
	if aboutpage == "" {
		aboutpage = about
	}
	if _, err := tmpl.New("about.tmpl").Parse(aboutpage); err != nil {
		log.Fatal(err)
	}

	addr := fmt.Sprintf(":%d", s.conf.Web.Port)
	log.Printf("Listening via HTTP on %s", addr)
	s.serv = &http.Server{Addr: addr, Handler: s.mux}
	if err := s.serv.ListenAndServe(); err != http.ErrServerClosed {
		log.Print(err)
	}
}

func (s *web) Shutdown() {
	if s.serv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.serv.Shutdown(ctx); err != nil {
		log.Print(err)
	}
}

func (*web) String() string { return "Web Server" }

// Prepare registers the web interface, if enabled.
func Prepare(st *cmd.State, conf *cmd.Conf) {
	if !conf.Web.Enabled {
		return
	}
	st.Register(&web{})
}
