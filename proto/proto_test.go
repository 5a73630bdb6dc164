// Protocol codec tests
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
	"encoding/json"
	"testing"
	"time"

	pgl "go-pgl"
)

func TestPackParse(t *testing.T) {
	line, err := Pack("register", "league", "ref-1", "me", &Register{
		Role:    "player",
		Contact: "me@example.com",
		Games:   []string{"parity"},
	})
	if err != nil {
		t.Fatal(err)
	}

	msg, err := Parse(line)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != "register" || msg.League != "league" ||
		msg.Ref != "ref-1" || msg.From != "me" {
		t.Errorf("Envelope fields mangled: %+v", msg)
	}
	if msg.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, msg.Version)
	}
	if msg.Stamp.IsZero() {
		t.Error("Missing timestamp")
	}

	var reg Register
	if err := msg.Decode(&reg); err != nil {
		t.Fatal(err)
	}
	if reg.Role != "player" || reg.Contact != "me@example.com" {
		t.Errorf("Payload mangled: %+v", reg)
	}
}

func TestVerify(t *testing.T) {
	stamp := time.Now()
	for _, test := range []struct {
		name string
		msg  Message
		ok   bool
	}{
		{
			name: "valid",
			msg:  Message{Version: "1.0", Type: "ping", Stamp: stamp},
			ok:   true,
		}, {
			name: "newer minor version",
			msg:  Message{Version: "1.9", Type: "ping", Stamp: stamp},
			ok:   true,
		}, {
			name: "missing type",
			msg:  Message{Version: "1.0", Stamp: stamp},
		}, {
			name: "missing stamp",
			msg:  Message{Version: "1.0", Type: "ping"},
		}, {
			name: "missing version",
			msg:  Message{Type: "ping", Stamp: stamp},
		}, {
			name: "major version mismatch",
			msg:  Message{Version: "2.0", Type: "ping", Stamp: stamp},
		}, {
			name: "malformed version",
			msg:  Message{Version: "one", Type: "ping", Stamp: stamp},
		}, {
			name: "bare version",
			msg:  Message{Version: "1", Type: "ping", Stamp: stamp},
		},
	} {
		err := test.msg.Verify()
		if test.ok && err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
		}
		if !test.ok {
			if err == nil {
				t.Errorf("%s: expected an error", test.name)
			} else if !pgl.IsKind(err, pgl.ProtocolError) {
				t.Errorf("%s: expected ProtocolError, got %v",
					test.name, err)
			}
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{
		"not json",
		`{"type": 5}`,
		`{}`,
	} {
		if _, err := Parse([]byte(input)); !pgl.IsKind(err, pgl.ProtocolError) {
			t.Errorf("Parse(%q): expected ProtocolError, got %v",
				input, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	msg := Message{
		Version: Version,
		Type:    "move",
		Stamp:   time.Now(),
		Data:    json.RawMessage(`{"value": "three"}`),
	}
	var mv MoveReply
	if err := msg.Decode(&mv); !pgl.IsKind(err, pgl.ProtocolError) {
		t.Errorf("Expected ProtocolError, got %v", err)
	}
}
