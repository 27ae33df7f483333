package ws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"lucky_streets/internal/clock"
	"lucky_streets/internal/config"
	"lucky_streets/internal/domain"
	"lucky_streets/internal/game"
	"lucky_streets/internal/logger"
	"lucky_streets/internal/matchmaking"
	"lucky_streets/internal/metrics"
	"lucky_streets/internal/service"
)

const ledgerTimeout = 10 * time.Second

// Wallet is the external ledger holding real balances.
type Wallet interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	Debit(ctx context.Context, userID int64, amount int64, txType string, meta map[string]interface{}) (int64, error)
	Credit(ctx context.Context, userID int64, amount int64, txType string, meta map[string]interface{}) (int64, error)
}

// Settler pays out and records a finished session.
type Settler interface {
	Settle(ctx context.Context, snap game.Snapshot) error
}

// Auditor records money movements made by the hub.
type Auditor interface {
	LogBalanceChange(ctx context.Context, userID int64, change int64, reason string, details map[string]interface{})
}

type Identity struct {
	ID   int64
	Name string
}

type CreateOptions struct {
	BuyIn   int64
	Private bool
	Variant game.VariantKind
}

type HubConfig struct {
	Tiers            []int64
	Overrides        func(game.VariantKind) game.Overrides
	MatchVariant     game.VariantKind
	MatchmakingGrace time.Duration
	ReconnectGrace   time.Duration
	RoomIdleTimeout  time.Duration
	CleanupInterval  time.Duration
}

func NewHubConfig(g config.GameConfig) HubConfig {
	return HubConfig{
		Tiers:            g.BuyInTiers,
		Overrides:        g.Rules,
		MatchVariant:     game.VariantLucky,
		MatchmakingGrace: g.MatchmakingGrace,
		ReconnectGrace:   g.ReconnectGrace,
		RoomIdleTimeout:  g.RoomIdleTimeout,
		CleanupInterval:  g.CleanupInterval,
	}
}

func (c HubConfig) hasTier(amount int64) bool {
	for _, t := range c.Tiers {
		if t == amount {
			return true
		}
	}
	return false
}

// Hub is the registry of live rooms, seats and connected clients.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	seats   map[int64]string
	clients map[int64]Subscriber

	cfg         HubConfig
	wallet      Wallet
	settler     Settler
	auditor     Auditor
	clock       clock.Clock
	queue       *matchmaking.Queue
	mirror      matchmaking.Mirror
	sessionOpts []game.Option
	settling    sync.WaitGroup
}

type HubOption func(*Hub)

func WithClock(c clock.Clock) HubOption {
	return func(h *Hub) { h.clock = c }
}

func WithMirror(m matchmaking.Mirror) HubOption {
	return func(h *Hub) { h.mirror = m }
}

func WithAuditor(a Auditor) HubOption {
	return func(h *Hub) { h.auditor = a }
}

// WithSessionOptions applies extra options to every session the hub creates.
func WithSessionOptions(opts ...game.Option) HubOption {
	return func(h *Hub) { h.sessionOpts = append(h.sessionOpts, opts...) }
}

func NewHub(cfg HubConfig, wallet Wallet, settler Settler, opts ...HubOption) *Hub {
	h := &Hub{
		rooms:   make(map[string]*Room),
		seats:   make(map[int64]string),
		clients: make(map[int64]Subscriber),
		cfg:     cfg,
		wallet:  wallet,
		settler: settler,
		clock:   clock.Real{},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.cfg.MatchVariant == "" {
		h.cfg.MatchVariant = game.VariantLucky
	}
	if h.cfg.ReconnectGrace <= 0 {
		h.cfg.ReconnectGrace = 30 * time.Second
	}
	if h.cfg.RoomIdleTimeout <= 0 {
		h.cfg.RoomIdleTimeout = 30 * time.Minute
	}
	if h.cfg.CleanupInterval <= 0 {
		h.cfg.CleanupInterval = time.Minute
	}
	qopts := []matchmaking.Option{matchmaking.WithGrace(cfg.MatchmakingGrace)}
	if h.mirror != nil {
		qopts = append(qopts, matchmaking.WithMirror(h.mirror))
	}
	h.queue = matchmaking.New(h.clock, h.onMatch, qopts...)
	return h
}

func (h *Hub) Tiers() []int64 {
	return append([]int64(nil), h.cfg.Tiers...)
}

// Rules returns the effective rules of a variant after configured overrides.
func (h *Hub) Rules(kind game.VariantKind) (*game.Rules, error) {
	return h.rules(kind)
}

func (h *Hub) rules(kind game.VariantKind) (*game.Rules, error) {
	if kind == "" {
		kind = game.VariantLucky
	}
	rules, err := game.RulesFor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrInvalidAction, err)
	}
	if h.cfg.Overrides != nil {
		h.cfg.Overrides(kind).Apply(rules)
	}
	return rules, nil
}

func (h *Hub) newSession(code string, rules *game.Rules, buyIn int64, opts ...game.Option) *game.Session {
	all := append([]game.Option{game.WithClock(h.clock.Now)}, h.sessionOpts...)
	return game.NewSession(code, rules, buyIn, append(all, opts...)...)
}

// ledgerErr maps wallet failures onto the engine's error vocabulary.
func ledgerErr(err error) error {
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return game.ErrInsufficientFunds
	case errors.Is(err, service.ErrUserNotFound):
		return fmt.Errorf("%w: account not found", game.ErrInvalidAction)
	default:
		return fmt.Errorf("ledger: %w", err)
	}
}

func (h *Hub) checkFunds(ctx context.Context, playerID, buyIn int64) error {
	balance, err := h.wallet.GetBalance(ctx, playerID)
	if err != nil {
		return ledgerErr(err)
	}
	if balance < buyIn {
		return game.ErrInsufficientFunds
	}
	return nil
}

// seatedRoom returns the unfinished room a player sits in.
func (h *Hub) seatedRoom(playerID int64) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seatedRoomLocked(playerID)
}

func (h *Hub) seatedRoomLocked(playerID int64) *Room {
	code, ok := h.seats[playerID]
	if !ok {
		return nil
	}
	r := h.rooms[code]
	if r == nil || r.Snapshot().Phase == game.PhaseFinished {
		return nil
	}
	return r
}

// SeatOf returns the code of the unfinished session a player sits in.
func (h *Hub) SeatOf(playerID int64) (string, bool) {
	r := h.seatedRoom(playerID)
	if r == nil {
		return "", false
	}
	return r.Code, true
}

func (h *Hub) unseat(playerID int64, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seats[playerID] == code {
		delete(h.seats, playerID)
	}
}

func (h *Hub) room(code string) (*Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[code]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return r, nil
}

// CreateSession opens a lobby with the creator seated as host.
func (h *Hub) CreateSession(ctx context.Context, id Identity, opts CreateOptions) (game.Snapshot, error) {
	if !h.cfg.hasTier(opts.BuyIn) {
		return game.Snapshot{}, fmt.Errorf("%w: buy-in %d is not offered", game.ErrInvalidAction, opts.BuyIn)
	}
	rules, err := h.rules(opts.Variant)
	if err != nil {
		return game.Snapshot{}, err
	}
	if h.seatedRoom(id.ID) != nil {
		return game.Snapshot{}, fmt.Errorf("%w: already seated in a session", game.ErrInvalidAction)
	}
	if err := h.checkFunds(ctx, id.ID, opts.BuyIn); err != nil {
		return game.Snapshot{}, err
	}

	var sessionOpts []game.Option
	if opts.Private {
		sessionOpts = append(sessionOpts, game.Private())
	}

	h.mu.Lock()
	if h.seatedRoomLocked(id.ID) != nil {
		h.mu.Unlock()
		return game.Snapshot{}, fmt.Errorf("%w: already seated in a session", game.ErrInvalidAction)
	}
	code := newCode(func(c string) bool { _, ok := h.rooms[c]; return ok })
	s := h.newSession(code, rules, opts.BuyIn, sessionOpts...)
	events, err := s.AddPlayer(id.ID, id.Name)
	if err != nil {
		h.mu.Unlock()
		return game.Snapshot{}, err
	}
	r := newRoom(h, s)
	r.commit(events)
	h.rooms[code] = r
	h.seats[id.ID] = code
	h.mu.Unlock()

	h.queue.Dequeue(id.ID)
	go r.Run()
	r.log.Info("session created", "host", id.ID, "buy_in", opts.BuyIn, "variant", rules.Variant, "private", opts.Private)
	h.attachIfConnected(ctx, r, id.ID)
	return r.Snapshot(), nil
}

// JoinSession seats a player in an open lobby.
func (h *Hub) JoinSession(ctx context.Context, code string, id Identity) (game.Snapshot, error) {
	r, err := h.room(code)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap := r.Snapshot()
	if snap.Phase != game.PhaseLobby {
		return game.Snapshot{}, game.ErrAlreadyStarted
	}
	if len(snap.Players) >= r.session.Rules().MaxPlayers {
		return game.Snapshot{}, game.ErrRoomFull
	}
	if err := h.checkFunds(ctx, id.ID, snap.BuyIn); err != nil {
		return game.Snapshot{}, err
	}

	h.mu.Lock()
	if other := h.seatedRoomLocked(id.ID); other != nil && other != r {
		h.mu.Unlock()
		return game.Snapshot{}, fmt.Errorf("%w: already seated in a session", game.ErrInvalidAction)
	}
	rejoin := h.seats[id.ID] == code
	h.seats[id.ID] = code
	h.mu.Unlock()

	err = r.exec(ctx, func() ([]game.Event, error) {
		if r.starting {
			return nil, game.ErrAlreadyStarted
		}
		return r.session.AddPlayer(id.ID, id.Name)
	}, nil)
	if err != nil {
		if !rejoin {
			h.unseat(id.ID, code)
		}
		return game.Snapshot{}, err
	}
	h.queue.Dequeue(id.ID)
	r.log.Info("player joined", "player_id", id.ID)
	h.attachIfConnected(ctx, r, id.ID)
	return r.Snapshot(), nil
}

// StartSession collects every buy-in and starts play. Debits run outside the
// room queue; a failed debit refunds everyone already charged.
func (h *Hub) StartSession(ctx context.Context, code string, hostID int64) (game.Snapshot, error) {
	r, err := h.room(code)
	if err != nil {
		return game.Snapshot{}, err
	}

	var players []int64
	var buyIn int64
	err = r.exec(ctx, func() ([]game.Event, error) {
		s := r.session
		switch {
		case s.Phase != game.PhaseLobby || r.starting:
			return nil, game.ErrAlreadyStarted
		case s.HostID != hostID:
			return nil, fmt.Errorf("%w: only the host can start", game.ErrInvalidAction)
		case len(s.Players) < s.Rules().MinPlayers:
			return nil, fmt.Errorf("%w: need at least %d players", game.ErrInvalidAction, s.Rules().MinPlayers)
		}
		r.starting = true
		buyIn = s.BuyIn
		for _, p := range s.Players {
			players = append(players, p.ID)
		}
		return nil, nil
	}, nil)
	if err != nil {
		return game.Snapshot{}, err
	}

	meta := map[string]interface{}{"room": code, "session_id": r.session.ID}
	var paid []int64
	for _, id := range players {
		if _, err := h.wallet.Debit(ctx, id, buyIn, domain.TxSessionBuyIn, meta); err != nil {
			r.log.Warn("buy-in debit failed", "player_id", id, "error", err)
			h.refund(paid, buyIn, meta)
			_ = r.exec(context.Background(), func() ([]game.Event, error) {
				r.starting = false
				return nil, nil
			}, nil)
			return game.Snapshot{}, ledgerErr(err)
		}
		h.audit(ctx, id, -buyIn, domain.TxSessionBuyIn, meta)
		paid = append(paid, id)
	}

	// Refunds are decided in the room and paid after exec returns.
	decided := make(chan []int64, 1)
	err = r.exec(context.Background(), func() ([]game.Event, error) {
		r.starting = false
		seated := make(map[int64]bool, len(r.session.Players))
		for _, p := range r.session.Players {
			seated[p.ID] = true
		}
		var owed []int64
		for _, id := range paid {
			if !seated[id] {
				owed = append(owed, id)
			}
		}
		events, err := r.session.Start()
		if err != nil {
			owed = paid
		}
		decided <- owed
		return events, err
	}, nil)
	select {
	case owed := <-decided:
		h.refund(owed, buyIn, meta)
	default:
		h.refund(paid, buyIn, meta)
	}
	if err != nil {
		return game.Snapshot{}, err
	}
	r.log.Info("session started", "players", len(paid), "pot", r.Snapshot().Pot)
	return r.Snapshot(), nil
}

func (h *Hub) refund(ids []int64, amount int64, meta map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()
	for _, id := range ids {
		if _, err := h.wallet.Credit(ctx, id, amount, domain.TxSessionRefund, meta); err != nil {
			logger.Error("buy-in refund failed", "player_id", id, "amount", amount, "error", err)
			continue
		}
		h.audit(ctx, id, amount, domain.TxSessionRefund, meta)
	}
}

func (h *Hub) audit(ctx context.Context, id, change int64, reason string, meta map[string]interface{}) {
	if h.auditor == nil {
		return
	}
	details := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		details[k] = v
	}
	h.auditor.LogBalanceChange(ctx, id, change, reason, details)
}

// RemovePlayer takes a player out of a room: a free seat in the lobby, a
// forfeit once play has started.
func (h *Hub) RemovePlayer(ctx context.Context, code string, playerID int64) error {
	r, err := h.room(code)
	if err != nil {
		return err
	}
	if err := r.leave(ctx, playerID); err != nil {
		return err
	}
	h.unseat(playerID, code)
	r.log.Info("player left", "player_id", playerID)
	return nil
}

// Leave removes the player from whatever they are in: queue or room.
func (h *Hub) Leave(ctx context.Context, playerID int64) error {
	left := h.queue.Dequeue(playerID)
	h.mu.RLock()
	code, ok := h.seats[playerID]
	h.mu.RUnlock()
	if !ok {
		if left {
			return nil
		}
		return game.ErrRoomNotFound
	}
	return h.RemovePlayer(ctx, code, playerID)
}

// RoomCount reports how many rooms the hub holds, finished ones included.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) GetSession(code string) (game.Snapshot, bool) {
	r, err := h.room(code)
	if err != nil {
		return game.Snapshot{}, false
	}
	return r.Snapshot(), true
}

// OpenSessions lists public lobbies that still have a free seat, oldest first.
func (h *Hub) OpenSessions() []game.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []game.Snapshot
	for _, r := range h.rooms {
		snap := r.Snapshot()
		if snap.Phase != game.PhaseLobby || snap.IsPrivate || snap.IsAnonymous {
			continue
		}
		if len(snap.Players) >= r.session.Rules().MaxPlayers {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Act runs a player action in the room the player is seated in.
func (h *Hub) Act(ctx context.Context, playerID int64, fn func(*game.Session) ([]game.Event, error)) error {
	r := h.seatedRoom(playerID)
	if r == nil {
		return game.ErrRoomNotFound
	}
	return r.Do(ctx, fn)
}

// JoinMatchmaking queues a player for an anonymous game at a tier.
func (h *Hub) JoinMatchmaking(ctx context.Context, id Identity, tier int64) (matchmaking.Ticket, error) {
	if !h.cfg.hasTier(tier) {
		return matchmaking.Ticket{}, fmt.Errorf("%w: buy-in %d is not offered", game.ErrInvalidAction, tier)
	}
	if h.seatedRoom(id.ID) != nil {
		return matchmaking.Ticket{}, fmt.Errorf("%w: already seated in a session", game.ErrInvalidAction)
	}
	if err := h.checkFunds(ctx, id.ID, tier); err != nil {
		return matchmaking.Ticket{}, err
	}
	return h.queue.Enqueue(id.ID, id.Name, tier)
}

func (h *Hub) LeaveMatchmaking(playerID int64) bool {
	return h.queue.Dequeue(playerID)
}

func (h *Hub) QueueStatus() map[int64]int {
	return h.queue.Status()
}

func (h *Hub) QueuePosition(playerID int64) (tier int64, pos int, ok bool) {
	return h.queue.Position(playerID)
}

// onMatch turns a formed group into a running anonymous session. Players
// whose buy-in cannot be collected are dropped; if fewer than two remain
// the rest go back to the queue.
func (h *Hub) onMatch(tier int64, tickets []matchmaking.Ticket) {
	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()

	rules, err := h.rules(h.cfg.MatchVariant)
	if err != nil {
		logger.Error("matchmaking rules", "error", err)
		h.queue.Requeue(tickets)
		return
	}

	meta := map[string]interface{}{"tier": tier, "source": "matchmaking"}
	var paid []matchmaking.Ticket
	for _, t := range tickets {
		if h.seatedRoom(t.PlayerID) != nil {
			h.notifyError(t.PlayerID, fmt.Errorf("%w: already seated in a session", game.ErrInvalidAction))
			continue
		}
		if _, err := h.wallet.Debit(ctx, t.PlayerID, tier, domain.TxSessionBuyIn, meta); err != nil {
			logger.Warn("matchmaking debit failed", "player_id", t.PlayerID, "tier", tier, "error", err)
			h.notifyError(t.PlayerID, ledgerErr(err))
			continue
		}
		h.audit(ctx, t.PlayerID, -tier, domain.TxSessionBuyIn, meta)
		paid = append(paid, t)
	}

	if len(paid) < matchmaking.MinMatchSize {
		ids := make([]int64, 0, len(paid))
		for _, t := range paid {
			ids = append(ids, t.PlayerID)
		}
		h.refund(ids, tier, meta)
		h.queue.Requeue(paid)
		for _, t := range paid {
			h.notifyQueued(t.PlayerID)
		}
		return
	}

	h.mu.Lock()
	code := newCode(func(c string) bool { _, ok := h.rooms[c]; return ok })
	s := h.newSession(code, rules, tier, game.Anonymous())
	var events []game.Event
	var seated []matchmaking.Ticket
	var rejected []int64
	for _, t := range paid {
		ev, err := s.AddPlayer(t.PlayerID, t.Name)
		if err != nil {
			logger.Warn("matchmaking seat failed", "player_id", t.PlayerID, "tier", tier, "error", err)
			rejected = append(rejected, t.PlayerID)
			continue
		}
		seated = append(seated, t)
		events = append(events, ev...)
	}
	ev, err := s.Start()
	if err != nil {
		h.mu.Unlock()
		logger.Error("matchmaking start failed", "tier", tier, "error", err)
		ids := rejected
		for _, t := range seated {
			ids = append(ids, t.PlayerID)
		}
		h.refund(ids, tier, meta)
		h.queue.Requeue(seated)
		return
	}
	events = append(events, ev...)
	r := newRoom(h, s)
	r.commit(events)
	h.rooms[code] = r
	for _, t := range seated {
		h.seats[t.PlayerID] = code
	}
	h.mu.Unlock()

	h.refund(rejected, tier, meta)
	for _, id := range rejected {
		h.notifyError(id, fmt.Errorf("%w: could not take a seat", game.ErrInvalidAction))
	}
	go r.Run()
	r.log.Info("matchmaking session started", "tier", tier, "players", len(seated))
	for _, t := range seated {
		h.send(t.PlayerID, mustJSON(MatchmakingMessage{Type: MsgMatchmaking, Status: "matched", Tier: tier, Code: code}))
		h.attachIfConnected(ctx, r, t.PlayerID)
	}
}

// roomFinished runs on the room goroutine once the session is over. Seats
// are released at once; settlement runs on its own goroutine.
func (h *Hub) roomFinished(r *Room, snap game.Snapshot) {
	h.mu.Lock()
	for _, p := range snap.Players {
		if h.seats[p.ID] == r.Code {
			delete(h.seats, p.ID)
		}
	}
	h.mu.Unlock()

	metrics.SessionsFinished.WithLabelValues(string(snap.Variant), snap.EndReason).Inc()
	if h.settler == nil {
		return
	}
	h.settling.Add(1)
	go func() {
		defer h.settling.Done()
		ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
		defer cancel()
		if err := h.settler.Settle(ctx, snap); err != nil {
			metrics.Settlements.WithLabelValues("error").Inc()
			r.log.Error("settlement failed", "winner", snap.Winner, "pot", snap.Pot, "error", err)
			return
		}
		metrics.Settlements.WithLabelValues("ok").Inc()
		r.log.Info("session settled", "winner", snap.Winner, "pot", snap.Pot)
	}()
}

// Register records a live connection and re-subscribes it to the room the
// player is seated in.
func (h *Hub) Register(ctx context.Context, sub Subscriber) {
	id := sub.PlayerID()
	h.mu.Lock()
	h.clients[id] = sub
	h.mu.Unlock()

	if r := h.seatedRoom(id); r != nil {
		if err := r.attach(ctx, sub); err != nil {
			logger.Warn("reattach failed", "player_id", id, "room", r.Code, "error", err)
		}
	}
}

// Unregister handles a closed connection.
func (h *Hub) Unregister(ctx context.Context, sub Subscriber) {
	id := sub.PlayerID()
	h.mu.Lock()
	if cur, ok := h.clients[id]; !ok || cur != sub {
		h.mu.Unlock()
		return
	}
	delete(h.clients, id)
	code, seated := h.seats[id]
	r := h.rooms[code]
	h.mu.Unlock()

	h.queue.Dequeue(id)
	if seated && r != nil {
		if err := r.detach(ctx, sub); err != nil {
			logger.Warn("detach failed", "player_id", id, "room", code, "error", err)
		}
	}
}

func (h *Hub) attachIfConnected(ctx context.Context, r *Room, playerID int64) {
	h.mu.RLock()
	sub, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := r.attach(ctx, sub); err != nil {
		logger.Warn("attach failed", "player_id", playerID, "room", r.Code, "error", err)
	}
}

func (h *Hub) send(playerID int64, msg []byte) {
	h.mu.RLock()
	sub, ok := h.clients[playerID]
	h.mu.RUnlock()
	if ok && !sub.Deliver(msg) {
		metrics.DroppedMessages.Inc()
	}
}

func (h *Hub) notifyError(playerID int64, err error) {
	h.send(playerID, errorMessage(err))
}

func (h *Hub) notifyQueued(playerID int64) {
	tier, pos, ok := h.queue.Position(playerID)
	if !ok {
		return
	}
	h.send(playerID, mustJSON(MatchmakingMessage{Type: MsgMatchmaking, Status: "queued", Tier: tier, Position: pos}))
}

func (h *Hub) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(h.cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupStaleRooms()
			}
		}
	}()
}

// cleanupStaleRooms evicts finished rooms nobody watches and lobbies left
// idle past the timeout.
func (h *Hub) cleanupStaleRooms() {
	now := h.clock.Now()
	phases := map[game.Phase]int{}
	var closed []*Room

	h.mu.Lock()
	for code, r := range h.rooms {
		snap := r.Snapshot()
		idle := now.Sub(r.LastActive())
		evict := false
		switch snap.Phase {
		case game.PhaseFinished:
			evict = r.Subscribers() == 0 || idle > h.cfg.RoomIdleTimeout
		case game.PhaseLobby:
			evict = idle > h.cfg.RoomIdleTimeout
		}
		if !evict {
			phases[snap.Phase]++
			continue
		}
		delete(h.rooms, code)
		for id, c := range h.seats {
			if c == code {
				delete(h.seats, id)
			}
		}
		closed = append(closed, r)
	}
	h.mu.Unlock()

	for _, r := range closed {
		r.Close()
		r.log.Info("cleaned up stale room")
	}
	for _, phase := range []game.Phase{game.PhaseLobby, game.PhaseDrafting, game.PhaseActive, game.PhaseFinished} {
		metrics.SessionsActive.WithLabelValues(string(phase)).Set(float64(phases[phase]))
	}
}

// Shutdown stops matchmaking, closes every room and waits for settlements
// already in flight.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.queue.Stop()
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}

	done := make(chan struct{})
	go func() {
		h.settling.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
