// Protocol Codec
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
	"fmt"
	"strconv"
	"strings"
	"time"

	pgl "go-pgl"
)

const (
	majorVersion = 1
	minorVersion = 0
)

// Version is the protocol version tag every message carries.
var Version = fmt.Sprintf("%d.%d", majorVersion, minorVersion)

// Message is the envelope every PGL message is wrapped in.  Messages
// are exchanged as single JSON lines.
type Message struct {
	Version string          `json:"v"`
	Type    string          `json:"type"`
	League  string          `json:"league,omitempty"`
	Ref     string          `json:"ref,omitempty"`  // correlation identifier
	From    string          `json:"from,omitempty"` // sender identifier
	Stamp   time.Time       `json:"time"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Payload shapes.  Roles and identifiers travel as strings so that
// agents in any language can handle them without shared constants.
type (
	Hello struct {
		League string `json:"league"`
		Game   string `json:"game"`
	}

	Register struct {
		Role     string   `json:"role"` // "player" or "referee"
		Name     string   `json:"name,omitempty"`
		Games    []string `json:"games,omitempty"`
		Contact  string   `json:"contact"`
		Capacity uint     `json:"capacity,omitempty"`
	}

	Welcome struct {
		Id string `json:"id"`
	}

	Failure struct {
		Kind   string `json:"kind"`
		Reason string `json:"reason"`
	}

	MatchStart struct {
		Match       string `json:"match"`
		Round       uint   `json:"round"`
		Role        string `json:"role"`
		Opponent    string `json:"opponent"`
		Referee     string `json:"referee"`
		RoundsToWin uint   `json:"rounds-to-win"`
		MaxRounds   uint   `json:"max-rounds"`
		TimeLimitMs int64  `json:"time-limit-ms"`
		MinMove     int    `json:"min-move"`
		MaxMove     int    `json:"max-move"`
	}

	MoveRequest struct {
		Match       string `json:"match"`
		Round       uint   `json:"round"`
		Role        string `json:"role"`
		You         uint   `json:"you"`
		Opponent    uint   `json:"opponent"`
		TimeLimitMs int64  `json:"time-limit-ms"`
	}

	MoveReply struct {
		Value int `json:"value"`
	}

	RoundResult struct {
		Match       string `json:"match"`
		Round       uint   `json:"round"`
		OddMove     int    `json:"odd-move"`
		EvenMove    int    `json:"even-move"`
		OddForfeit  bool   `json:"odd-forfeit,omitempty"`
		EvenForfeit bool   `json:"even-forfeit,omitempty"`
		Sum         int    `json:"sum"`
		Winner      string `json:"winner,omitempty"`
		OddScore    uint   `json:"odd-score"`
		EvenScore   uint   `json:"even-score"`
	}

	MatchEnd struct {
		Match     string `json:"match"`
		State     string `json:"state"`
		OddScore  uint   `json:"odd-score"`
		EvenScore uint   `json:"even-score"`
		Winner    string `json:"winner,omitempty"` // empty denotes a draw
		Points    uint   `json:"points"`
	}

	StandingsRow struct {
		Rank   uint   `json:"rank"`
		Player string `json:"player"`
		Name   string `json:"name"`
		Points uint   `json:"points"`
		Wins   uint   `json:"wins"`
		Losses uint   `json:"losses"`
		Draws  uint   `json:"draws"`
	}

	Standings struct {
		Table []StandingsRow `json:"table"`
	}
)

// Pack wraps a payload into an envelope and serialises it.
func Pack(typ, league, ref, from string, data interface{}) ([]byte, error) {
	m := Message{
		Version: Version,
		Type:    typ,
		League:  league,
		Ref:     ref,
		From:    from,
		Stamp:   time.Now(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		m.Data = raw
	}
	return json.Marshal(&m)
}

// Parse deserialises and verifies a single message.  A message that
// fails verification is rejected before it can mutate any state.
func Parse(line []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return nil, pgl.Fail(pgl.ProtocolError,
			"malformed message: %s", err)
	}
	if err := m.Verify(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Verify checks the required envelope fields and the protocol
// version.  Only the major version has to match.
func (m *Message) Verify() error {
	if m.Type == "" {
		return pgl.Fail(pgl.ProtocolError, "missing message type")
	}
	if m.Stamp.IsZero() {
		return pgl.Fail(pgl.ProtocolError, "missing timestamp")
	}
	if m.Version == "" {
		return pgl.Fail(pgl.ProtocolError, "missing protocol version")
	}
	major, _, found := strings.Cut(m.Version, ".")
	if !found {
		return pgl.Fail(pgl.ProtocolError,
			"invalid protocol version %q", m.Version)
	}
	v, err := strconv.Atoi(major)
	if err != nil {
		return pgl.Fail(pgl.ProtocolError,
			"invalid protocol version %q", m.Version)
	}
	if v != majorVersion {
		return pgl.Fail(pgl.ProtocolError,
			"unsupported protocol version %q", m.Version)
	}
	return nil
}

// Decode unpacks the message payload into V.
func (m *Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return pgl.Fail(pgl.ProtocolError,
			"malformed %q payload: %s", m.Type, err)
	}
	return nil
}
