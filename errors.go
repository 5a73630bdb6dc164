// Error taxonomy
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
	"errors"
	"fmt"
)

type ErrorKind uint8

const (
	RegistrationRejected ErrorKind = iota
	InsufficientParticipants
	NoEligiblePlayers
	DuplicateRegistration
	InvalidCapabilities
	WrongState
	ProtocolError
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case RegistrationRejected:
		return "RegistrationRejected"
	case InsufficientParticipants:
		return "InsufficientParticipants"
	case NoEligiblePlayers:
		return "NoEligiblePlayers"
	case DuplicateRegistration:
		return "DuplicateRegistration"
	case InvalidCapabilities:
		return "InvalidCapabilities"
	case WrongState:
		return "WrongState"
	case ProtocolError:
		return "ProtocolError"
	case InternalError:
		return "InternalError"
	default:
		panic(fmt.Sprintf("Illegal error kind: %d", k))
	}
}

// Error is a typed failure with a stable kind and a human-readable
// reason.  None of these conditions are fatal to the server.
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Fail constructs a typed error.
func Fail(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// IsKind checks if ERR is a typed error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
