// General Isolation
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

package isol

import (
	"fmt"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
)

// ControlledAgent is an agent whose lifetime the server manages, as
// opposed to remote agents that connect on their own.
type ControlledAgent interface {
	pgl.Agent
	fmt.Stringer
	Start(*cmd.State, *cmd.Conf) (pgl.Agent, error)
	Shutdown() error
}

func Start(st *cmd.State, conf *cmd.Conf, a pgl.Agent) (pgl.Agent, error) {
	pgl.Debug.Println("Starting", a)
	if ca, ok := a.(ControlledAgent); ok {
		return ca.Start(st, conf)
	}
	return a, nil
}

func Shutdown(a pgl.Agent) error {
	pgl.Debug.Println("Shutting down", a)
	if ca, ok := a.(ControlledAgent); ok {
		return ca.Shutdown()
	}
	return nil
}
