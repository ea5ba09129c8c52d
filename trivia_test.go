package main

import (
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		roundTimeout: 250 * time.Millisecond,
		rotateDelay:  25 * time.Millisecond,
	}
}

func testClient(id string) *Client {
	return &Client{
		send:     make(chan any, 64),
		connID:   "conn-" + id,
		clientID: id,
	}
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// snapshot copies the fields tests assert on, under the manager lock.
type gameSnapshot struct {
	exists       bool
	status       GameStatus
	gameMasterID string
	winnerID     string
	question     string
	answer       string
	players      []Player
	messageCount int
}

func (gm *GameManager) snapshot(gameID string) gameSnapshot {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	g, ok := gm.games[gameID]
	if !ok {
		return gameSnapshot{}
	}
	players := make([]Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, *p)
	}
	return gameSnapshot{
		exists:       true,
		status:       g.Status,
		gameMasterID: g.GameMasterID,
		winnerID:     g.WinnerID,
		question:     g.Question,
		answer:       g.Answer,
		players:      players,
		messageCount: len(g.Messages),
	}
}

func checkSingleGameMaster(t *testing.T, snap gameSnapshot) {
	t.Helper()
	count := 0
	for _, p := range snap.players {
		if p.IsGameMaster {
			count++
			if p.ID != snap.gameMasterID {
				t.Errorf("gameMasterID = %q, flagged player = %q", snap.gameMasterID, p.ID)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one game master, got %d", count)
	}
}

func TestCreateGame(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	gm.register(alice)

	gameID := gm.createGame(cfg, alice)
	if len(gameID) != gameIDLength {
		t.Fatalf("game id %q: expected %d characters", gameID, gameIDLength)
	}
	if gameID != normalizeGameID(gameID) {
		t.Errorf("game id %q is not normalized", gameID)
	}

	snap := gm.snapshot(gameID)
	if !snap.exists {
		t.Fatal("game missing from registry")
	}
	if snap.status != StatusWaiting {
		t.Errorf("status = %q, want %q", snap.status, StatusWaiting)
	}
	if len(snap.players) != 1 || snap.players[0].ID != "alice" {
		t.Fatalf("players = %+v, want just alice", snap.players)
	}
	if snap.players[0].Attempts != maxAttempts {
		t.Errorf("attempts = %d, want %d", snap.players[0].Attempts, maxAttempts)
	}
	checkSingleGameMaster(t, snap)
}

func TestJoinReconnectAndNormalization(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)

	if err := gm.joinGame(cfg, bob, normalizeGameID("  "+gameID+" ")); err != nil {
		t.Fatalf("join with unnormalized id: %v", err)
	}

	// Same durable id on a fresh connection must update connID, not duplicate.
	bob2 := &Client{send: make(chan any, 64), connID: "conn-bob-2", clientID: "bob"}
	gm.register(bob2)
	if err := gm.joinGame(cfg, bob2, gameID); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	snap := gm.snapshot(gameID)
	if len(snap.players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.players))
	}
	if snap.players[1].ConnID != "conn-bob-2" {
		t.Errorf("reconnect did not update connID: %q", snap.players[1].ConnID)
	}
	checkSingleGameMaster(t, snap)

	if err := gm.joinGame(cfg, bob, "ZZZZZZ"); err != errGameNotFound {
		t.Errorf("join of unknown game: err = %v, want %v", err, errGameNotFound)
	}
}

func TestJoinBlockedDuringRound(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	carol := testClient("carol")
	gm.register(alice)
	gm.register(bob)
	gm.register(carol)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	err := gm.joinGame(cfg, carol, gameID)
	if err != errGameInProgress {
		t.Fatalf("err = %v, want %v", err, errGameInProgress)
	}
	if err.Error() != "Game already in progress" {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestStartValidation(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)

	err := gm.startGame(cfg, alice, gameID, "2+2", "4")
	if err != errNotEnoughPlayers {
		t.Fatalf("single-player start: err = %v, want %v", err, errNotEnoughPlayers)
	}
	if err.Error() != "At least 2 players required" {
		t.Errorf("error message = %q", err.Error())
	}

	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}

	if err := gm.startGame(cfg, bob, gameID, "2+2", "4"); err != errNotGameMaster {
		t.Errorf("non-GM start: err = %v, want %v", err, errNotGameMaster)
	}
	if err := gm.startGame(cfg, alice, gameID, "", "4"); err != errMissingFields {
		t.Errorf("empty question: err = %v, want %v", err, errMissingFields)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "  "); err != errMissingFields {
		t.Errorf("blank answer: err = %v, want %v", err, errMissingFields)
	}

	if err := gm.startGame(cfg, alice, gameID, "Capital of France?", "Paris"); err != nil {
		t.Fatal(err)
	}
	snap := gm.snapshot(gameID)
	if snap.status != StatusInProgress {
		t.Errorf("status = %q, want %q", snap.status, StatusInProgress)
	}
	if snap.answer != "paris" {
		t.Errorf("answer = %q, want lowercased %q", snap.answer, "paris")
	}
}

func TestWinningGuessAndRotation(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	correct, _, err := gm.submitGuess(cfg, alice, gameID, "4")
	if err != nil {
		t.Fatal(err)
	}
	if !correct {
		t.Fatal("guess was not marked correct")
	}

	snap := gm.snapshot(gameID)
	if snap.status != StatusEnded {
		t.Errorf("status = %q, want %q", snap.status, StatusEnded)
	}
	if snap.winnerID != "alice" {
		t.Errorf("winnerID = %q, want alice", snap.winnerID)
	}
	if snap.players[0].Score != winPoints {
		t.Errorf("score = %d, want %d", snap.players[0].Score, winPoints)
	}

	// After the rotation delay the game resets and bob takes over as GM.
	waitFor(t, func() bool {
		return gm.snapshot(gameID).status == StatusWaiting
	})

	snap = gm.snapshot(gameID)
	if snap.gameMasterID != "bob" {
		t.Errorf("gameMasterID = %q, want bob", snap.gameMasterID)
	}
	checkSingleGameMaster(t, snap)
	if snap.question != "" || snap.answer != "" || snap.winnerID != "" {
		t.Errorf("round state not cleared: %+v", snap)
	}
	if snap.messageCount != 0 {
		t.Errorf("messages not cleared: %d", snap.messageCount)
	}
	for _, p := range snap.players {
		if p.Attempts != maxAttempts {
			t.Errorf("player %s attempts = %d, want %d", p.ID, p.Attempts, maxAttempts)
		}
	}
	if snap.players[0].Score != winPoints {
		t.Errorf("score lost across rotation: %d", snap.players[0].Score)
	}
}

func TestGuessIsCaseInsensitive(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "Capital of France?", "Paris"); err != nil {
		t.Fatal(err)
	}

	correct, _, err := gm.submitGuess(cfg, bob, gameID, "  PARIS ")
	if err != nil {
		t.Fatal(err)
	}
	if !correct {
		t.Error("case-insensitive guess was not accepted")
	}
	if snap := gm.snapshot(gameID); snap.winnerID != "bob" {
		t.Errorf("winnerID = %q, want bob", snap.winnerID)
	}
}

func TestAttemptsExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.roundTimeout = 5 * time.Second // keep the round alive for all guesses
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	for want := maxAttempts - 1; want >= 0; want-- {
		correct, left, err := gm.submitGuess(cfg, bob, gameID, "5")
		if err != nil {
			t.Fatal(err)
		}
		if correct {
			t.Fatal("wrong guess marked correct")
		}
		if left != want {
			t.Errorf("attemptsLeft = %d, want %d", left, want)
		}
	}

	if _, _, err := gm.submitGuess(cfg, bob, gameID, "5"); err != errNoAttemptsLeft {
		t.Errorf("fourth guess: err = %v, want %v", err, errNoAttemptsLeft)
	}

	snap := gm.snapshot(gameID)
	if snap.players[1].Attempts < 0 {
		t.Errorf("attempts went negative: %d", snap.players[1].Attempts)
	}
	if snap.status != StatusInProgress {
		t.Errorf("round ended early: status = %q", snap.status)
	}
}

func TestGuessRejectedOutsideRound(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	carol := testClient("carol")
	gm.register(alice)
	gm.register(bob)
	gm.register(carol)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}

	if _, _, err := gm.submitGuess(cfg, bob, gameID, "4"); err != errNoRoundInProgress {
		t.Errorf("guess in waiting game: err = %v, want %v", err, errNoRoundInProgress)
	}

	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := gm.submitGuess(cfg, carol, gameID, "4"); err != errNotAPlayer {
		t.Errorf("guess by non-player: err = %v, want %v", err, errNotAPlayer)
	}

	// Simulate the timer firing, then a late guess arriving.
	gm.endGame(cfg, gameID, "timeout")
	if _, _, err := gm.submitGuess(cfg, bob, gameID, "4"); err != errNoRoundInProgress {
		t.Errorf("guess after timeout: err = %v, want %v", err, errNoRoundInProgress)
	}
	if snap := gm.snapshot(gameID); snap.winnerID != "" {
		t.Errorf("timeout round has winner %q", snap.winnerID)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	carol := testClient("carol")
	gm.register(alice)
	gm.register(bob)
	gm.register(carol)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.joinGame(cfg, carol, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	// A timer firing concurrently with a winning guess must yield exactly one
	// transition and one rotation.
	gm.endGame(cfg, gameID, "timeout")
	gm.endGame(cfg, gameID, "timeout")

	waitFor(t, func() bool {
		return gm.snapshot(gameID).status == StatusWaiting
	})
	// Give a hypothetical second rotation time to fire.
	time.Sleep(3 * cfg.rotateDelay)

	snap := gm.snapshot(gameID)
	if snap.gameMasterID != "bob" {
		t.Errorf("gameMasterID = %q, want bob (exactly one rotation)", snap.gameMasterID)
	}
	checkSingleGameMaster(t, snap)
}

func TestRoundTimeout(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		return gm.snapshot(gameID).status == StatusEnded
	})
	if snap := gm.snapshot(gameID); snap.winnerID != "" {
		t.Errorf("timed-out round has winner %q", snap.winnerID)
	}

	waitFor(t, func() bool {
		return gm.snapshot(gameID).status == StatusWaiting
	})
	if snap := gm.snapshot(gameID); snap.gameMasterID != "bob" {
		t.Errorf("gameMasterID = %q, want bob", snap.gameMasterID)
	}
}

func TestRotationWrapsAround(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}

	// Hand the GM role to the last player in join order, then rotate.
	gm.mu.Lock()
	g := gm.games[gameID]
	g.Players[0].IsGameMaster = false
	g.Players[1].IsGameMaster = true
	g.GameMasterID = "bob"
	g.Status = StatusEnded
	gm.mu.Unlock()

	gm.rotateGame(cfg, gameID)

	snap := gm.snapshot(gameID)
	if snap.gameMasterID != "alice" {
		t.Errorf("gameMasterID = %q, want alice (wrap to front)", snap.gameMasterID)
	}
	checkSingleGameMaster(t, snap)
}

func TestLeaveReassignsGameMaster(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	carol := testClient("carol")
	gm.register(alice)
	gm.register(bob)
	gm.register(carol)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.joinGame(cfg, carol, gameID); err != nil {
		t.Fatal(err)
	}

	if err := gm.leaveGame(cfg, alice, gameID); err != nil {
		t.Fatal(err)
	}

	snap := gm.snapshot(gameID)
	if len(snap.players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.players))
	}
	if snap.gameMasterID != "bob" {
		t.Errorf("gameMasterID = %q, want bob (first remaining)", snap.gameMasterID)
	}
	checkSingleGameMaster(t, snap)
}

func TestLastLeaveDeletesGame(t *testing.T) {
	cfg := testConfig()
	cfg.roundTimeout = 5 * time.Second
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	// Leave mid-round so the pending timer has to be cancelled too.
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	if err := gm.leaveGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.leaveGame(cfg, alice, gameID); err != nil {
		t.Fatal(err)
	}

	if gm.snapshot(gameID).exists {
		t.Fatal("empty game still in registry")
	}
	if err := gm.joinGame(cfg, bob, gameID); err != errGameNotFound {
		t.Errorf("join of deleted game: err = %v, want %v", err, errGameNotFound)
	}
}

func TestChatAppendsRegardlessOfStatus(t *testing.T) {
	cfg := testConfig()
	cfg.roundTimeout = 5 * time.Second
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}

	if err := gm.sendMessage(cfg, bob, gameID, "hi there"); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}
	if err := gm.sendMessage(cfg, bob, gameID, "thinking..."); err != nil {
		t.Fatal(err)
	}

	if snap := gm.snapshot(gameID); snap.messageCount != 2 {
		t.Errorf("messages = %d, want 2", snap.messageCount)
	}

	if err := gm.sendMessage(cfg, bob, "ZZZZZZ", "anyone?"); err != errGameNotFound {
		t.Errorf("chat to unknown game: err = %v, want %v", err, errGameNotFound)
	}
}

func TestViewIsSanitized(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	alice := testClient("alice")
	bob := testClient("bob")
	gm.register(alice)
	gm.register(bob)

	gameID := gm.createGame(cfg, alice)
	if err := gm.joinGame(cfg, bob, gameID); err != nil {
		t.Fatal(err)
	}
	if err := gm.startGame(cfg, alice, gameID, "2+2", "4"); err != nil {
		t.Fatal(err)
	}

	gm.mu.Lock()
	update := gm.games[gameID].view()
	gm.mu.Unlock()

	if update.Type != "game_update" {
		t.Errorf("type = %q", update.Type)
	}
	if update.Question != "2+2" {
		t.Errorf("question = %q", update.Question)
	}
	if update.StartTime == 0 {
		t.Error("startTime missing from in-progress update")
	}
	for _, p := range update.Players {
		if p.ID == "" {
			t.Error("player view missing id")
		}
	}
	// The answer must never leave the server; PlayerView carries no
	// connection details by construction.
	if update.GameMasterID != "alice" {
		t.Errorf("gameMasterId = %q", update.GameMasterID)
	}
}

func TestGameIDsAreUnique(t *testing.T) {
	cfg := testConfig()
	gm := newGameManager(cfg)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := testClient(uniqueID())
		gm.register(c)
		id := gm.createGame(cfg, c)
		if seen[id] {
			t.Fatalf("duplicate game id %q", id)
		}
		seen[id] = true
	}
}

var uniqueCounter int

func uniqueID() string {
	uniqueCounter++
	return "player-" + string(rune('a'+uniqueCounter%26)) + randomGameID()
}
