// Quizbox Trivia Game
//
// Players connect over a single WebSocket and are grouped into game sessions
// identified by short shareable codes. One player per game is the Game Master
// (GM): they set a question and a secret answer and start the round. Everyone
// else races to guess the answer before the round timer runs out; the first
// correct guess wins the round and scores points. The GM role rotates to the
// next player after every round.
//
// Features:
// - Single WebSocket endpoint at /ws/trivia speaking a small event protocol
//   (hello, create_game, join_game, leave_game, start_game, submit_guess,
//   send_message), every event answered with an {ok, error?} ack
// - Durable client identity: the client supplies its own ID in "hello" and
//   keeps score/membership across reconnects; without a hello the transient
//   connection ID is used instead
// - Game IDs are 6-char uppercase base-36 codes from crypto/rand, with a
//   server-side collision check; inbound IDs are trimmed and uppercased
// - First correct guess wins the round; players get 3 guesses per round
// - Rounds time out after a configurable duration (default 60s)
// - GM rotates cyclically to the next player a few seconds after each round
// - Every state change is broadcast as a sanitized game_update (the answer
//   and connection details are never exposed) to the game's room plus each
//   player's last-known connection, so freshly reconnected clients catch up
// - Games vanish as soon as the last player leaves; abandoned games are
//   reaped after a configurable idle timeout
// - In-browser QR button to share the current game, backed by go-qrcode

package main

import (
	"crypto/rand"
	_ "embed"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	gameIDLength   = 6
	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxAttempts    = 3
	winPoints      = 10
)

type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusInProgress GameStatus = "in-progress"
	StatusEnded      GameStatus = "ended"
)

// Player is one durable participant in a game, keyed by client ID. The entry
// survives disconnects (only connID goes stale); an explicit leave removes it.
type Player struct {
	ID           string
	ConnID       string
	Score        int
	IsGameMaster bool
	Attempts     int
}

// ChatMessage is one entry in a game's append-only log, covering both chat
// and guesses.
type ChatMessage struct {
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Game is one trivia session. Players are kept in join order, which is also
// the GM rotation order. All fields are guarded by the owning GameManager's
// mutex.
type Game struct {
	ID           string
	GameMasterID string
	Players      []*Player
	Question     string
	Answer       string // lowercased at round start
	Status       GameStatus
	WinnerID     string
	CreatedAt    time.Time
	StartTime    time.Time
	Messages     []ChatMessage

	lastActive time.Time
	timer      *time.Timer // round timer while in-progress, rotation timer while ended
}

func (g *Game) player(clientID string) *Player {
	for _, p := range g.Players {
		if p.ID == clientID {
			return p
		}
	}
	return nil
}

func (g *Game) playerIndex(clientID string) int {
	for i, p := range g.Players {
		if p.ID == clientID {
			return i
		}
	}
	return -1
}

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "hello", "create_game", "join_game", "leave_game", "start_game", "submit_guess", "send_message"
	ClientID string `json:"clientId,omitempty"` // hello
	GameID   string `json:"gameId,omitempty"`
	Question string `json:"question,omitempty"` // start_game
	Answer   string `json:"answer,omitempty"`   // start_game
	Guess    string `json:"guess,omitempty"`    // submit_guess
	Text     string `json:"text,omitempty"`     // send_message
}

// AckMessage answers every inbound event. Operation failures surface here as
// {ok:false, error} and never terminate the connection.
type AckMessage struct {
	Type         string `json:"type"`  // always "ack"
	Event        string `json:"event"` // the inbound event being acknowledged
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
	ClientID     string `json:"clientId,omitempty"`     // hello
	GameID       string `json:"gameId,omitempty"`       // create_game
	Correct      *bool  `json:"correct,omitempty"`      // submit_guess
	AttemptsLeft *int   `json:"attemptsLeft,omitempty"` // submit_guess
}

// PlayerView is the sanitized projection of a Player: no connection details.
type PlayerView struct {
	ID           string `json:"id"`
	Score        int    `json:"score"`
	IsGameMaster bool   `json:"isGameMaster"`
	Attempts     int    `json:"attempts"`
}

// GameUpdateMessage is the sanitized projection of a Game broadcast after
// every mutation. The answer and timer are never included.
type GameUpdateMessage struct {
	Type         string        `json:"type"` // always "game_update"
	ID           string        `json:"id"`
	GameMasterID string        `json:"gameMasterId"`
	Status       GameStatus    `json:"status"`
	Question     string        `json:"question,omitempty"`
	WinnerID     string        `json:"winnerId,omitempty"`
	StartTime    int64         `json:"startTime,omitempty"` // epoch ms, zero unless a round ran
	Players      []PlayerView  `json:"players"`
	Messages     []ChatMessage `json:"messages"`
}

// view snapshots the game into a broadcastable update. Slices are copied so
// later mutations cannot race the write pumps encoding the snapshot.
func (g *Game) view() GameUpdateMessage {
	players := make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, PlayerView{
			ID:           p.ID,
			Score:        p.Score,
			IsGameMaster: p.IsGameMaster,
			Attempts:     p.Attempts,
		})
	}

	var startTime int64
	if !g.StartTime.IsZero() {
		startTime = g.StartTime.UnixMilli()
	}

	return GameUpdateMessage{
		Type:         "game_update",
		ID:           g.ID,
		GameMasterID: g.GameMasterID,
		Status:       g.Status,
		Question:     g.Question,
		WinnerID:     g.WinnerID,
		StartTime:    startTime,
		Players:      players,
		Messages:     append([]ChatMessage(nil), g.Messages...),
	}
}

// Client is one WebSocket connection. clientID starts out equal to the
// transient connID and is replaced by the durable ID from "hello"; it is only
// touched from the connection's read pump.
type Client struct {
	conn     *websocket.Conn
	send     chan any
	connID   string
	clientID string
}

// trySend queues a message for the write pump without ever blocking.
func (c *Client) trySend(v any) {
	select {
	case c.send <- v:
	default:
	}
}

// GameManager owns every game session, the per-game rooms, and the index of
// live connections. One mutex guards all of it: every operation is a short
// synchronous read-modify-write, and sends to clients go through buffered
// channels so no I/O happens under the lock.
type GameManager struct {
	mu    sync.Mutex
	games map[string]*Game
	rooms map[string]map[*Client]bool
	conns map[string]*Client

	roundTimeout time.Duration
	rotateDelay  time.Duration
}

func newGameManager(cfg *Config) *GameManager {
	gm := &GameManager{
		games:        make(map[string]*Game),
		rooms:        make(map[string]map[*Client]bool),
		conns:        make(map[string]*Client),
		roundTimeout: cfg.roundTimeout,
		rotateDelay:  cfg.rotateDelay,
	}
	if cfg.sessionTimeout > 0 {
		go gm.reaperLoop(cfg, cfg.sessionTimeout)
	}
	return gm
}

func randomGameID() string {
	buf := make([]byte, gameIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	out := make([]byte, gameIDLength)
	for i := range out {
		out[i] = gameIDAlphabet[int(buf[i])%len(gameIDAlphabet)]
	}
	return string(out)
}

// newGameIDLocked retries until the generated ID is free. Assumes gm.mu is held.
func (gm *GameManager) newGameIDLocked() string {
	for {
		id := randomGameID()
		if _, exists := gm.games[id]; !exists {
			return id
		}
	}
}

func normalizeGameID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (gm *GameManager) register(c *Client) {
	gm.mu.Lock()
	gm.conns[c.connID] = c
	gm.mu.Unlock()
}

func (gm *GameManager) unregister(c *Client) {
	gm.mu.Lock()
	gm.dropClientLocked(c)
	gm.mu.Unlock()
}

// dropClientLocked removes a connection from the index and every room and
// closes its send channel. Game membership is untouched: a disconnected
// player keeps their seat and score until they explicitly leave.
func (gm *GameManager) dropClientLocked(c *Client) {
	if _, ok := gm.conns[c.connID]; !ok {
		return
	}
	delete(gm.conns, c.connID)
	for _, members := range gm.rooms {
		delete(members, c)
	}
	close(c.send)
}

func (gm *GameManager) joinRoomLocked(gameID string, c *Client) {
	if gm.rooms[gameID] == nil {
		gm.rooms[gameID] = make(map[*Client]bool)
	}
	gm.rooms[gameID][c] = true
}

func (gm *GameManager) leaveRoomLocked(gameID string, c *Client) {
	delete(gm.rooms[gameID], c)
	if len(gm.rooms[gameID]) == 0 {
		delete(gm.rooms, gameID)
	}
}

// broadcastLocked fans the sanitized game state out to every room member,
// then to each player's last-known connection (covers clients that
// reconnected on a fresh socket and are no longer in the room). Deliveries
// are deduplicated by connection and best-effort: a client with a full send
// buffer is dropped, never retried.
func (gm *GameManager) broadcastLocked(g *Game) {
	update := g.view()
	delivered := make(map[string]bool, len(gm.rooms[g.ID]))

	for client := range gm.rooms[g.ID] {
		delivered[client.connID] = true
		select {
		case client.send <- update:
		default:
			gm.dropClientLocked(client)
		}
	}

	for _, p := range g.Players {
		if p.ConnID == "" || delivered[p.ConnID] {
			continue
		}
		client, ok := gm.conns[p.ConnID]
		if !ok {
			continue
		}
		select {
		case client.send <- update:
		default:
			gm.dropClientLocked(client)
		}
	}
}

// armTimerLocked replaces the game's pending timer, if any.
func (gm *GameManager) armTimerLocked(g *Game, d time.Duration, fn func()) {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(d, fn)
}

// deleteGameLocked drops a game and its room and cancels any pending timer,
// so no deferred callback can act on a recreated game ID.
func (gm *GameManager) deleteGameLocked(g *Game) {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	delete(gm.games, g.ID)
	delete(gm.rooms, g.ID)
}

// createGame opens a new session with the caller as its only player and GM.
func (gm *GameManager) createGame(cfg *Config, c *Client) string {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	now := time.Now()
	g := &Game{
		ID:           gm.newGameIDLocked(),
		GameMasterID: c.clientID,
		Players: []*Player{{
			ID:           c.clientID,
			ConnID:       c.connID,
			IsGameMaster: true,
			Attempts:     maxAttempts,
		}},
		Status:     StatusWaiting,
		CreatedAt:  now,
		lastActive: now,
	}
	gm.games[g.ID] = g
	gm.joinRoomLocked(g.ID, c)

	logf(cfg, "GAMES: %s created game %s", c.clientID, g.ID)

	gm.broadcastLocked(g)

	return g.ID
}

// joinGame adds the caller to a waiting game, or refreshes their connection
// if they are already a player (the reconnect path).
func (gm *GameManager) joinGame(cfg *Config, c *Client, gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return errGameNotFound
	}
	if g.Status == StatusInProgress {
		return errGameInProgress
	}

	g.lastActive = time.Now()

	if p := g.player(c.clientID); p != nil {
		p.ConnID = c.connID
	} else {
		g.Players = append(g.Players, &Player{
			ID:       c.clientID,
			ConnID:   c.connID,
			Attempts: maxAttempts,
		})
		logf(cfg, "GAMES: %s joined game %s", c.clientID, gameID)
	}

	gm.joinRoomLocked(gameID, c)
	gm.broadcastLocked(g)

	return nil
}

// leaveGame removes the caller from a game. An empty game is deleted on the
// spot; a departing GM hands the role to the first remaining player.
func (gm *GameManager) leaveGame(cfg *Config, c *Client, gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return errGameNotFound
	}

	g.lastActive = time.Now()
	gm.leaveRoomLocked(gameID, c)

	idx := g.playerIndex(c.clientID)
	if idx < 0 {
		return nil
	}

	wasGM := g.Players[idx].IsGameMaster
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	logf(cfg, "GAMES: %s left game %s", c.clientID, gameID)

	if len(g.Players) == 0 {
		gm.deleteGameLocked(g)
		logf(cfg, "GAMES: Deleted empty game %s", gameID)
		return nil
	}

	if wasGM {
		g.Players[0].IsGameMaster = true
		g.GameMasterID = g.Players[0].ID
	}

	gm.broadcastLocked(g)

	return nil
}

// startGame begins a round: GM only, at least two players, question and
// answer required. The answer is lowercased once here and compared lowercased
// at guess time. Re-arming replaces any stale round timer.
func (gm *GameManager) startGame(cfg *Config, c *Client, gameID, question, answer string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return errGameNotFound
	}
	if c.clientID != g.GameMasterID {
		return errNotGameMaster
	}
	if len(g.Players) < 2 {
		return errNotEnoughPlayers
	}

	question = strings.TrimSpace(question)
	answer = strings.ToLower(strings.TrimSpace(answer))
	if question == "" || answer == "" {
		return errMissingFields
	}

	now := time.Now()
	g.Question = question
	g.Answer = answer
	g.Status = StatusInProgress
	g.StartTime = now
	g.WinnerID = ""
	g.lastActive = now
	for _, p := range g.Players {
		p.Attempts = maxAttempts
	}

	gm.armTimerLocked(g, gm.roundTimeout, func() {
		gm.endGame(cfg, gameID, "timeout")
	})

	logf(cfg, "GAMES: %s started a round in game %s", c.clientID, gameID)

	gm.broadcastLocked(g)

	return nil
}

// submitGuess logs the guess and either wins the round (first correct guess)
// or burns one of the player's attempts.
func (gm *GameManager) submitGuess(cfg *Config, c *Client, gameID, guess string) (correct bool, attemptsLeft int, err error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return false, 0, errGameNotFound
	}
	if g.Status != StatusInProgress {
		// Covers the race where a guess lands after the round timer fired.
		return false, 0, errNoRoundInProgress
	}
	p := g.player(c.clientID)
	if p == nil {
		return false, 0, errNotAPlayer
	}
	if p.Attempts <= 0 {
		return false, 0, errNoAttemptsLeft
	}

	folded := strings.ToLower(strings.TrimSpace(guess))
	now := time.Now()
	g.Messages = append(g.Messages, ChatMessage{
		SenderID:  c.clientID,
		Text:      folded,
		Timestamp: now.UnixMilli(),
	})
	g.lastActive = now

	if folded == g.Answer {
		p.Score += winPoints
		g.WinnerID = p.ID
		logf(cfg, "GAMES: %s won the round in game %s", c.clientID, gameID)
		gm.endGameLocked(cfg, g, "win")
		return true, p.Attempts, nil
	}

	p.Attempts--
	gm.broadcastLocked(g)

	return false, p.Attempts, nil
}

// sendMessage appends a chat line regardless of game status.
func (gm *GameManager) sendMessage(cfg *Config, c *Client, gameID, text string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return errGameNotFound
	}

	now := time.Now()
	g.Messages = append(g.Messages, ChatMessage{
		SenderID:  c.clientID,
		Text:      text,
		Timestamp: now.UnixMilli(),
	})
	g.lastActive = now

	gm.broadcastLocked(g)

	return nil
}

// endGame is the entrypoint for the round timer; a missing game is a no-op.
func (gm *GameManager) endGame(cfg *Config, gameID, reason string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return
	}
	gm.endGameLocked(cfg, g, reason)
}

// endGameLocked closes the current round. The status guard makes it
// idempotent: when a winning guess and the round timer race, whichever runs
// second finds the game already ended and does nothing, so exactly one
// transition and one rotation happen.
func (gm *GameManager) endGameLocked(cfg *Config, g *Game, reason string) {
	if g.Status != StatusInProgress {
		return
	}

	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}

	g.Status = StatusEnded
	if reason != "win" {
		g.WinnerID = ""
	}
	g.lastActive = time.Now()

	logf(cfg, "GAMES: Round over in game %s (%s)", g.ID, reason)

	gm.broadcastLocked(g)

	gameID := g.ID
	g.timer = time.AfterFunc(gm.rotateDelay, func() {
		gm.rotateGame(cfg, gameID)
	})
}

// rotateGame hands the GM role to the next player in join order, resets
// attempts, and returns the game to waiting with the round state cleared.
// Runs a few seconds after each round so clients can show the result first.
func (gm *GameManager) rotateGame(cfg *Config, gameID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return
	}
	if g.Status != StatusEnded {
		// A new round was started before the rotation fired; leave it alone.
		return
	}

	g.timer = nil

	if len(g.Players) == 0 {
		gm.deleteGameLocked(g)
		return
	}

	idx := g.playerIndex(g.GameMasterID)
	if idx < 0 {
		idx = len(g.Players) - 1 // previous GM left; wrap to the front
	}
	for _, p := range g.Players {
		p.IsGameMaster = false
		p.Attempts = maxAttempts
	}
	next := g.Players[(idx+1)%len(g.Players)]
	next.IsGameMaster = true
	g.GameMasterID = next.ID

	g.Status = StatusWaiting
	g.WinnerID = ""
	g.Question = ""
	g.Answer = ""
	g.StartTime = time.Time{}
	g.Messages = nil
	g.lastActive = time.Now()

	logf(cfg, "GAMES: Game master rotated to %s in game %s", next.ID, gameID)

	gm.broadcastLocked(g)
}

// reaperLoop periodically removes games idle longer than the session timeout.
func (gm *GameManager) reaperLoop(cfg *Config, idleTimeout time.Duration) {
	ticker := time.NewTicker(idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-idleTimeout)

		gm.mu.Lock()
		for id, g := range gm.games {
			if g.lastActive.Before(cutoff) {
				gm.deleteGameLocked(g)
				logf(cfg, "GAMES: Reaped idle game %s", id)
			}
		}
		gm.mu.Unlock()
	}
}

// dispatch maps one inbound event to a game operation and always answers
// with an ack. Operation failures become {ok:false, error} and never close
// the connection.
func (gm *GameManager) dispatch(cfg *Config, c *Client, msg ClientMessage) {
	switch msg.Type {
	case "hello":
		id := strings.TrimSpace(msg.ClientID)
		if id == "" {
			id = c.connID
		}
		c.clientID = id
		c.trySend(AckMessage{Type: "ack", Event: "hello", OK: true, ClientID: id})

	case "create_game":
		gameID := gm.createGame(cfg, c)
		c.trySend(AckMessage{Type: "ack", Event: "create_game", OK: true, GameID: gameID})

	case "join_game":
		err := gm.joinGame(cfg, c, normalizeGameID(msg.GameID))
		c.trySend(ack("join_game", err))

	case "leave_game":
		err := gm.leaveGame(cfg, c, normalizeGameID(msg.GameID))
		c.trySend(ack("leave_game", err))

	case "start_game":
		err := gm.startGame(cfg, c, normalizeGameID(msg.GameID), msg.Question, msg.Answer)
		c.trySend(ack("start_game", err))

	case "submit_guess":
		correct, attemptsLeft, err := gm.submitGuess(cfg, c, normalizeGameID(msg.GameID), msg.Guess)
		reply := ack("submit_guess", err)
		if err == nil {
			reply.Correct = &correct
			reply.AttemptsLeft = &attemptsLeft
		}
		c.trySend(reply)

	case "send_message":
		err := gm.sendMessage(cfg, c, normalizeGameID(msg.GameID), msg.Text)
		c.trySend(ack("send_message", err))

	default:
		// ignore unknown types
	}
}

func ack(event string, err error) AckMessage {
	if err != nil {
		return AckMessage{Type: "ack", Event: event, OK: false, Error: err.Error()}
	}
	return AckMessage{Type: "ack", Event: event, OK: true}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWSForManager upgrades the connection and runs its pumps. Each
// connection gets a fresh transient ID; the durable identity arrives via
// "hello".
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		connID := uuid.NewString()
		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			connID:   connID,
			clientID: connID,
		}

		gm.register(client)

		go client.writePump()
		client.readPump(cfg, gm)
	}
}

func (c *Client) readPump(cfg *Config, gm *GameManager) {
	defer func() {
		gm.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		gm.dispatch(cfg, c, msg)
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

// qrHandler generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ---- Static file paths ----

//go:embed trivia/index.html
var indexHTML []byte

//go:embed trivia/app.css
var triviaCSS []byte

//go:embed trivia/app.js
var triviaJS []byte

func getIndexHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(indexHTML)
	}
}

func getCssHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(triviaCSS)
	}
}

func getJsHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(triviaJS)
	}
}

// registerTriviaGame sets up routes so that:
//   - $path               → game client (create/join UI)
//   - $path/:gameid       → game client with the join form pre-filled
//   - $path/:gameid/qr    → PNG QR code for that game URL
//   - /ws$path            → the shared WebSocket endpoint
func registerTriviaGame(cfg *Config, path string, mux *httprouter.Router) {
	gm := newGameManager(cfg)

	mux.GET(cfg.prefix+path, getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	// Shared assets (no gameid in route)
	mux.GET(cfg.prefix+"/assets/trivia/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/trivia/app.js", getJsHandler(cfg))

	// One socket for all games; sessions are multiplexed by game ID
	mux.GET(cfg.prefix+"/ws"+path, serveWSForManager(cfg, gm))

	// Per-game QR code
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
