// Client Communication Management
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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	pgl "go-pgl"
	cmd "go-pgl/cmd"
	"go-pgl/standings"

	"github.com/google/uuid"
)

// Client wraps a network connection into an agent.  One goroutine per
// connection reads and interprets input, move requests are correlated
// with their replies through the pending map.
type Client struct {
	st   *cmd.State
	conf *cmd.Conf

	// Agent metadata, filled in on registration
	meta    pgl.Meta
	player  *pgl.Player
	referee *pgl.Referee

	// Protocol state
	iolock sync.Mutex // IO lock
	rwc    io.ReadWriteCloser
	kill   context.CancelFunc
	dead   uint32 // actually bool
	pinged uint32 // actually bool

	plock   sync.Mutex
	pending map[string]chan *pgl.Move
}

func MakeClient(rwc io.ReadWriteCloser, st *cmd.State, conf *cmd.Conf) *Client {
	return &Client{
		st:      st,
		conf:    conf,
		rwc:     rwc,
		pending: make(map[string]chan *pgl.Move),
	}
}

// String will return a string representation for a client for
// internal use
func (cli *Client) String() string {
	if cli.player != nil {
		return cli.player.String()
	}
	if cli.referee != nil {
		return cli.referee.String()
	}
	return fmt.Sprintf("%p (unregistered)", cli.rwc)
}

func (cli *Client) Meta() *pgl.Meta { return &cli.meta }

func (cli *Client) Alive() bool {
	return atomic.LoadUint32(&cli.dead) == 0
}

func (cli *Client) Kill() {
	if cli.kill != nil {
		cli.kill()
	}
}

// send serialises a message and forwards it to the client.  FROM is
// the sender identifier; if empty the league itself is the sender.
func (cli *Client) send(typ, ref, from string, data interface{}) {
	if from == "" {
		from = cli.conf.League.Id
	}
	line, err := Pack(typ, cli.conf.League.Id, ref, from, data)
	if err != nil {
		log.Print(err)
		return
	}

	// attempt to send this message before any other message is sent
	cli.iolock.Lock()
	defer cli.iolock.Unlock()
	if !cli.Alive() {
		return
	}

	pgl.Debug.Println(cli, ">", string(line))
	if _, err := cli.rwc.Write(append(line, '\n')); err != nil {
		pgl.Debug.Print(err)
	}
}

// fail is a shorthand to report a typed error to the client.
func (cli *Client) fail(ref string, err error) {
	var (
		kind   = pgl.InternalError
		reason = err.Error()
		e      *pgl.Error
	)
	if errors.As(err, &e) {
		kind = e.Kind
		reason = e.Reason
	}
	cli.send("error", ref, "", &Failure{Kind: kind.String(), Reason: reason})
}

// Request asks the client for a move.  The request carries a fresh
// correlation identifier; the deadline is enforced by the caller
// through the context.  A late answer is not an error, the engine
// scores it as a forfeit.
func (cli *Client) Request(ctx context.Context, m *pgl.Match, role pgl.Role) (*pgl.Move, bool) {
	if !cli.Alive() {
		return nil, false
	}

	ref := uuid.NewString()
	c := make(chan *pgl.Move, 1)
	cli.plock.Lock()
	cli.pending[ref] = c
	cli.plock.Unlock()
	defer func() {
		cli.plock.Lock()
		delete(cli.pending, ref)
		cli.plock.Unlock()
	}()

	cli.send("move?", ref, m.Referee.Id, &MoveRequest{
		Match:       m.Id,
		Round:       uint(len(m.Rounds)) + 1,
		Role:        role.String(),
		You:         m.Score(role),
		Opponent:    m.Score(!role),
		TimeLimitMs: cli.conf.Game.Timeout.Milliseconds(),
	})

	select {
	case <-ctx.Done():
		return nil, cli.Alive()
	case move, ok := <-c:
		if !ok {
			return nil, false
		}
		return move, true
	}
}

// Started sends the match-start notification.
func (cli *Client) Started(m *pgl.Match, role pgl.Role) {
	cli.send("match", uuid.NewString(), m.Referee.Id, &MatchStart{
		Match:       m.Id,
		Round:       m.Round,
		Role:        role.String(),
		Opponent:    m.Player(!role).Id,
		Referee:     m.Referee.Id,
		RoundsToWin: cli.conf.Game.RoundsToWin,
		MaxRounds:   cli.conf.Game.MaxRounds,
		TimeLimitMs: cli.conf.Game.Timeout.Milliseconds(),
		MinMove:     cli.conf.Game.MinMove,
		MaxMove:     cli.conf.Game.MaxMove,
	})
}

// Resolved sends the round-result notification.
func (cli *Client) Resolved(m *pgl.Match, rec *pgl.RoundOfPlay, role pgl.Role) {
	res := &RoundResult{
		Match:       m.Id,
		Round:       rec.Number,
		OddMove:     rec.OddMove,
		EvenMove:    rec.EvenMove,
		OddForfeit:  rec.OddForfeit,
		EvenForfeit: rec.EvenForfeit,
		Sum:         rec.Sum,
		OddScore:    rec.OddScore,
		EvenScore:   rec.EvenScore,
	}
	if rec.Contested {
		res.Winner = rec.Winner.String()
	}
	cli.send("round", uuid.NewString(), m.Referee.Id, res)
}

// Ended sends the match-end notification with the point allocation.
func (cli *Client) Ended(m *pgl.Match, role pgl.Role, points uint) {
	end := &MatchEnd{
		Match:     m.Id,
		State:     m.State.String(),
		OddScore:  m.OddScore,
		EvenScore: m.EvenScore,
		Points:    points,
	}
	if m.Winner != nil {
		end.Winner = m.Winner.Id
	}
	cli.send("end", uuid.NewString(), m.Referee.Id, end)
}

// Pinger regularly sends out a ping and checks if a pong was received.
func (cli *Client) pinger(ctx context.Context) {
	if cli.conf.Proto.Timeout == 0 {
		panic("Ping timeout must be greater than 0")
	}
	ticker := time.NewTicker(cli.conf.Proto.Timeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// To prevent race conditions, we atomically check and
		// reset the pinged flag.  If the flag is still set from
		// the previous tick, the client never answered and the
		// connection is given up.
		if atomic.CompareAndSwapUint32(&cli.pinged, 0, 1) {
			cli.send("ping", uuid.NewString(), "", nil)
		} else {
			pgl.Debug.Printf("%s did not respond to a ping in time", cli)
			cli.Kill()
			return
		}
	}
}

// Interpret parses and evaluates INPUT.  Malformed input is rejected
// without mutating any state.
func (cli *Client) interpret(input []byte) error {
	if len(bytes.TrimSpace(input)) == 0 { // Ignore empty lines
		return nil
	}

	msg, err := Parse(input)
	if err != nil {
		cli.fail("", err)
		return nil
	}
	if msg.League != "" && msg.League != cli.conf.League.Id {
		cli.fail(msg.Ref, pgl.Fail(pgl.ProtocolError,
			"unknown league %q", msg.League))
		return nil
	}

	switch msg.Type {
	case "register":
		var reg Register
		if err := msg.Decode(&reg); err != nil {
			cli.fail(msg.Ref, err)
			return nil
		}
		cli.register(msg.Ref, &reg)
	case "move":
		var mv MoveReply
		if err := msg.Decode(&mv); err != nil {
			cli.fail(msg.Ref, err)
			return nil
		}

		cli.plock.Lock()
		c, ok := cli.pending[msg.Ref]
		if ok {
			delete(cli.pending, msg.Ref)
		}
		cli.plock.Unlock()
		if !ok {
			// Either a late answer to an expired request or
			// an unsolicited move; both are ignored.
			pgl.Debug.Printf("%s: no pending request %q",
				cli, msg.Ref)
			return nil
		}
		c <- &pgl.Move{Value: mv.Value, Stamp: time.Now()}
	case "standings?":
		league := cli.st.League
		table := standings.Table(league.Players(), league.Matches(),
			cli.conf.Points())
		rows := make([]StandingsRow, len(table))
		for i, s := range table {
			rows[i] = StandingsRow{
				Rank:   s.Rank,
				Player: s.Player.Id,
				Name:   s.Player.Meta.Name,
				Points: s.Points,
				Wins:   s.Wins,
				Losses: s.Losses,
				Draws:  s.Draws,
			}
		}
		cli.send("standings", msg.Ref, "", &Standings{Table: rows})
	case "pong":
		atomic.StoreUint32(&cli.pinged, 0)
	case "ok", "error":
		// We do not expect the client to confirm or reject
		// anything, so these can be ignored.
	case "goodbye":
		cli.Kill()
	default:
		pgl.Debug.Printf("Invalid command %q", msg.Type)
	}

	return nil
}

// register performs the check-then-act registration through the
// league, which serialises it against concurrent state transitions.
func (cli *Client) register(ref string, reg *Register) {
	if cli.player != nil || cli.referee != nil {
		cli.fail(ref, pgl.Fail(pgl.DuplicateRegistration,
			"connection already registered"))
		return
	}
	if reg.Contact == "" {
		cli.fail(ref, pgl.Fail(pgl.ProtocolError,
			"missing contact address"))
		return
	}

	bg := context.Background()
	switch reg.Role {
	case "player":
		cli.meta = pgl.Meta{
			Name:    reg.Name,
			Games:   reg.Games,
			Contact: reg.Contact,
		}
		p, err := cli.st.League.RegisterPlayer(cli.meta, cli)
		if err != nil {
			cli.fail(ref, err)
			return
		}
		cli.player = p
		cli.st.Database.SavePlayer(bg, p)
		cli.send("welcome", ref, "", &Welcome{Id: p.Id})
	case "referee":
		r, err := cli.st.League.RegisterReferee(reg.Contact,
			reg.Capacity, cli)
		if err != nil {
			cli.fail(ref, err)
			return
		}
		cli.referee = r
		cli.st.Database.SaveReferee(bg, r)
		cli.send("welcome", ref, "", &Welcome{Id: r.Id})
	default:
		cli.fail(ref, pgl.Fail(pgl.ProtocolError,
			"unknown role %q", reg.Role))
	}
}

// Connect coordinates a client connection.
//
// It sends the initial hello, starts a ping thread (if the
// configuration requires it), a goroutine to handle and interpret
// input and then waits for the client to be killed.
func (cli *Client) Connect() {
	dbg := pgl.Debug.Println

	if cli.rwc == nil {
		panic("No ReadWriteCloser")
	}
	defer cli.rwc.Close()

	var ctx context.Context
	ctx, cli.kill = context.WithCancel(context.Background())

	// Initiate the protocol with the client
	cli.send("hello", uuid.NewString(), "", &Hello{
		League: cli.conf.League.Id,
		Game:   cli.conf.League.Game,
	})

	if cli.conf.Proto.Ping {
		go cli.pinger(ctx)
	}

	// Start a thread to read the client input from rwc
	go func() {
		scanner := bufio.NewScanner(cli.rwc)
		for scanner.Scan() {
			if !cli.Alive() {
				break
			}

			dbg(cli, "<", scanner.Text())
			if err := cli.interpret(scanner.Bytes()); err != nil {
				log.Print(err)
			}
		}

		err := scanner.Err()
		if err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
			log.Print(err)
		}
		cli.kill()
	}()

	<-ctx.Done()

	// Send a simple goodbye, ignoring errors if the network
	// connection was broken
	cli.iolock.Lock()
	atomic.StoreUint32(&cli.dead, 1)
	if line, err := Pack("goodbye", cli.conf.League.Id, "", "", nil); err == nil {
		cli.rwc.Write(append(line, '\n'))
	}
	cli.iolock.Unlock()

	// Wake up anything still waiting on an answer
	cli.plock.Lock()
	for ref, c := range cli.pending {
		close(c)
		delete(cli.pending, ref)
	}
	cli.plock.Unlock()

	if cli.referee != nil {
		cli.referee.Alive = false
	}

	dbg("Closed connection to", cli)
}
