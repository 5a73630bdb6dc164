// TCP interface
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

package proto

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"

	cmd "go-pgl/cmd"
)

type Listener struct {
	conn    net.Listener
	port    uint16
	handler func(*Client) bool
}

func (*Listener) String() string {
	return "TCP Handler"
}

// Initialise a listener, unless it has already been initialised
func (t *Listener) init() {
	if t.conn != nil {
		return
	}

	var err error
	tcp := fmt.Sprintf(":%d", t.port)
	t.conn, err = net.Listen("tcp", tcp)
	if err != nil {
		log.Fatal(err)
	}
	if t.port == 0 {
		// Extract port number the operating system bound the listener
		// to, since port 0 is redirected to a "random" open port
		addr := t.conn.Addr().String()
		i := strings.LastIndexByte(addr, ':')
		if i == -1 {
			log.Fatal("Invalid address ", addr)
		}
		port, err := strconv.ParseUint(addr[i+1:], 10, 16)
		if err != nil {
			log.Fatal("Unexpected error ", err)
		}
		t.port = uint16(port)
	}
}

func (t *Listener) Start(st *cmd.State, conf *cmd.Conf) {
	t.init()

	log.Printf("Accepting connections on :%d", t.port)
	for {
		conn, err := t.conn.Accept()
		if err != nil {
			break
		}

		if t.handler(MakeClient(conn, st, conf)) {
			break
		}
	}
}

func (t *Listener) Port() uint16 {
	return t.port
}

func (t *Listener) Shutdown() {
	if err := t.conn.Close(); err != nil {
		log.Print(err)
	}
}

func launch(c *Client) bool {
	go c.Connect()
	return false
}

func MakeListener(port uint16) *Listener {
	return &Listener{port: port, handler: launch}
}

// StartListener runs a listener on a random port and hands accepted
// clients to HANDLER.  It is used to give isolated agents a dedicated
// endpoint to connect back to.
func StartListener(st *cmd.State, conf *cmd.Conf, handler func(*Client) bool) *Listener {
	l := &Listener{handler: handler}
	l.init()
	go l.Start(st, conf)
	return l
}

// Prepare registers the default TCP endpoint.
func Prepare(st *cmd.State, conf *cmd.Conf) {
	st.Register(MakeListener(uint16(conf.Proto.Port)))
}
