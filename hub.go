/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Messages coming from clients. One struct covers every command; unused
// fields are simply omitted on the wire.
type ClientMessage struct {
	Type      string `json:"type"`                // command name, e.g. "enter_challenge"
	Line      *int   `json:"line,omitempty"`      // set_challenge_line / enter_challenge / request_enter_challenge
	Mode      string `json:"mode,omitempty"`      // set_match_mode
	Threshold *int   `json:"threshold,omitempty"` // set_match_mode
	SongID    string `json:"song_id,omitempty"`   // set_current_song
	Text      string `json:"text,omitempty"`      // enter_challenge / update_contestant / publish_contestant / evaluate
}

// ChallengeConfigMessage carries the complete challenge configuration, so
// a client that missed earlier updates resyncs on the next one.
type ChallengeConfigMessage struct {
	Type      string `json:"type"` // "challenge_config_updated"
	Line      int    `json:"line"`
	Mode      string `json:"mode"`
	Threshold int    `json:"threshold"`
}

type CurrentSongMessage struct {
	Type   string `json:"type"` // "current_song_changed" or "current_song"
	SongID string `json:"song_id"`
}

type SongStartedMessage struct {
	Type   string `json:"type"` // "song_started"
	SongID string `json:"song_id"`
}

// SimpleEvent is for events with no payload ("paused", "resume_song").
type SimpleEvent struct {
	Type string `json:"type"`
}

type EnterChallengeMessage struct {
	Type         string `json:"type"` // "enter_challenge"
	Line         int    `json:"line"`
	OriginalText string `json:"original_text"`
}

// ContestantTextMessage relays a contestant's in-progress text for display
// only; nothing is judged until an explicit evaluate command.
type ContestantTextMessage struct {
	Type string `json:"type"` // "contestant_updated" or "show_contestant_text"
	Text string `json:"text"`
}

type ResultMessage struct {
	Type           string `json:"type"` // "show_result"
	Ok             bool   `json:"ok"`
	OriginalText   string `json:"original_text"`
	ContestantText string `json:"contestant_text"`
}

// RequestEnterChallengeMessage asks the stage client to resolve the lyric
// text for a line and call enter_challenge back. The relay exists so the
// server never needs to own lyric-timing data.
type RequestEnterChallengeMessage struct {
	Type string `json:"type"` // "request_enter_challenge"
	Line int    `json:"line"`
}

// SessionInfoMessage is sent directly to each client on connect so it can
// sync to the session mid-game without waiting for the next broadcast.
type SessionInfoMessage struct {
	Type      string `json:"type"` // "session_info"
	SongID    string `json:"song_id"`
	Line      int    `json:"line"`
	Mode      string `json:"mode"`
	Threshold int    `json:"threshold"`
	Phase     string `json:"phase"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type commandRequest struct {
	client *Client
	msg    ClientMessage
}

// Hub fans commands from any connected client out to all of them. There is
// a single room: one hub, one session, one global broadcast topic. The
// run() goroutine is the only writer of the session, so commands from
// concurrent connections are applied last-write-wins but never race.
type Hub struct {
	clients map[*Client]bool
	session *session

	register chan *Client
	unreg    chan *Client
	commands chan commandRequest
}

func newHub(policy matchPolicy) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		session:  newSession(policy),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		commands: make(chan commandRequest),
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

			c.send <- SessionInfoMessage{
				Type:      "session_info",
				SongID:    h.session.currentSong,
				Line:      h.session.challengeLine,
				Mode:      h.session.policy.mode.String(),
				Threshold: h.session.policy.threshold,
				Phase:     h.session.phase.String(),
			}

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case req := <-h.commands:
			h.handleCommand(cfg, req)
		}
	}
}

// broadcast sends msg to every connected client, the sender included.
// A client whose send buffer is full is dropped on the spot; it misses
// the event and is expected to reconnect and resync via session_info.
func (h *Hub) broadcast(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// sendTo delivers a direct reply to a single client.
func (h *Hub) sendTo(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) challengeConfig() ChallengeConfigMessage {
	return ChallengeConfigMessage{
		Type:      "challenge_config_updated",
		Line:      h.session.challengeLine,
		Mode:      h.session.policy.mode.String(),
		Threshold: h.session.policy.threshold,
	}
}

// handleCommand applies one client command to the session and broadcasts
// the resulting event. Malformed input degrades to a safe default rather
// than erroring: invalid config updates are skipped but the config event
// still goes out, so every client converges on the authoritative state.
func (h *Hub) handleCommand(cfg *Config, req commandRequest) {
	msg := req.msg

	switch msg.Type {
	case "set_challenge_line":
		if msg.Line != nil {
			if applied := h.session.setChallengeLine(*msg.Line); !applied {
				logf(cfg, "GAME: Rejected challenge line %d", *msg.Line)
			}
		}
		h.broadcast(h.challengeConfig())

	case "set_match_mode":
		if applied := h.session.setMatchMode(msg.Mode, msg.Threshold); !applied {
			logf(cfg, "GAME: Rejected match mode update (mode %q)", msg.Mode)
		}
		h.broadcast(h.challengeConfig())

	case "set_current_song":
		h.session.setCurrentSong(msg.SongID)
		logf(cfg, "GAME: Current song set to %q", msg.SongID)
		h.broadcast(CurrentSongMessage{Type: "current_song_changed", SongID: msg.SongID})

	case "start_song":
		songID, ok := h.session.startSong()
		if !ok {
			return
		}
		logf(cfg, "GAME: Started song %q", songID)
		h.broadcast(SongStartedMessage{Type: "song_started", SongID: songID})

	case "pause":
		h.broadcast(SimpleEvent{Type: "paused"})

	case "resume_song":
		h.broadcast(SimpleEvent{Type: "resume_song"})

	case "enter_challenge":
		if msg.Line == nil {
			return
		}
		h.session.enterChallenge(*msg.Line, msg.Text)
		logf(cfg, "GAME: Entered challenge on line %d", *msg.Line)
		h.broadcast(EnterChallengeMessage{
			Type:         "enter_challenge",
			Line:         *msg.Line,
			OriginalText: msg.Text,
		})

	case "update_contestant":
		h.broadcast(ContestantTextMessage{Type: "contestant_updated", Text: msg.Text})

	case "publish_contestant":
		h.broadcast(ContestantTextMessage{Type: "show_contestant_text", Text: msg.Text})

	case "evaluate":
		ok, original := h.session.evaluate(msg.Text)
		logf(cfg, "GAME: Judged contestant text (mode %s): ok=%t", h.session.policy.mode, ok)
		h.broadcast(ResultMessage{
			Type:           "show_result",
			Ok:             ok,
			OriginalText:   original,
			ContestantText: msg.Text,
		})

	case "request_enter_challenge":
		if msg.Line == nil {
			return
		}
		h.broadcast(RequestEnterChallengeMessage{Type: "request_enter_challenge", Line: *msg.Line})

	case "get_current_song":
		h.sendTo(req.client, CurrentSongMessage{Type: "current_song", SongID: h.session.currentSong})

	default:
		// ignore unknown types
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades a connection and ties its pumps to the hub.
func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		h.register <- client

		logf(cfg, "GAME: Client connected from %s", realIP(r))

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		h.commands <- commandRequest{
			client: c,
			msg:    msg,
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
