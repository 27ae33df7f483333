package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"lucky_streets/internal/db"
	"lucky_streets/internal/domain"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/repository"
	"lucky_streets/internal/service"

	"github.com/gorilla/websocket"
)

// ws_smoke queues two funded accounts for matchmaking against a running
// server and plays until the session ends or the timeout hits.
func main() {
	tier := flag.Int64("tier", 100, "buy-in tier")
	timeout := flag.Duration("timeout", 2*time.Minute, "give up after")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()
	service.InitJWT(secret)

	ctx := context.Background()
	repo := repository.NewAccountRepository(pool)
	balances := service.NewBalanceService(pool)

	var wg sync.WaitGroup
	for _, name := range []string{"smokeA", "smokeB"} {
		account, err := repo.GetOrCreate(ctx, name, name)
		if err != nil {
			logger.Fatal("account", "name", name, "error", err)
		}
		if account.Balance < *tier {
			if _, err := balances.Credit(ctx, account.ID, *tier*10, domain.TxDevGrant, nil); err != nil {
				logger.Fatal("fund account", "name", name, "error", err)
			}
		}
		token, err := service.GenerateJWT(account.ID, name)
		if err != nil {
			logger.Fatal("token", "error", err)
		}

		// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
		url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, token)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			logger.Fatal("dial", "name", name, "error", err)
		}
		defer conn.Close()

		wg.Add(1)
		go func(id int64, name string) {
			defer wg.Done()
			play(conn, id, name, *tier, time.Now().Add(*timeout))
		}(account.ID, name)
	}
	wg.Wait()
	logger.Info("smoke test finished")
}

type message struct {
	Type   string          `json:"type"`
	Status string          `json:"status"`
	Code   string          `json:"code"`
	State  json.RawMessage `json:"state"`
}

type state struct {
	Phase         string `json:"phase"`
	TurnState     string `json:"turn_state"`
	CurrentPlayer int64  `json:"current_player"`
	TurnNumber    int    `json:"turn_number"`
	PendingSpace  int    `json:"pending_space"`
	Winner        int64  `json:"winner"`
}

// play answers every turn with the simplest legal move: roll, buy, end.
// Anything it cannot answer is left to the server's turn timers.
func play(conn *websocket.Conn, id int64, name string, tier int64, deadline time.Time) {
	log := logger.With("player", name)
	send := func(v any) {
		b, _ := json.Marshal(v)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Error("write", "error", err)
		}
	}
	send(map[string]any{"type": "join_matchmaking", "buy_in": tier})

	answered := ""
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Error("read", "error", err)
			return
		}
		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "matchmaking", "error":
			log.Info("server", "msg", string(raw))
			continue
		}
		if len(msg.State) == 0 {
			continue
		}
		var st state
		if err := json.Unmarshal(msg.State, &st); err != nil {
			continue
		}
		if st.Phase == "finished" {
			log.Info("session over", "winner", st.Winner, "won", st.Winner == id)
			return
		}

		step := fmt.Sprintf("%d/%s", st.TurnNumber, st.TurnState)
		if step == answered {
			continue
		}
		if st.TurnState == "auction-in-progress" {
			answered = step
			send(map[string]any{"type": "pass_auction"})
			continue
		}
		if st.CurrentPlayer != id {
			continue
		}
		switch st.TurnState {
		case "awaiting-roll":
			send(map[string]any{"type": "roll_dice"})
		case "awaiting-purchase-decision":
			send(map[string]any{"type": "buy_property", "space": st.PendingSpace})
		case "awaiting-build-or-end":
			send(map[string]any{"type": "end_turn"})
		default:
			continue
		}
		answered = step
	}
	log.Warn("timed out")
}
