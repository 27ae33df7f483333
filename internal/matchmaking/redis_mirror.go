package matchmaking

import (
	"context"
	"encoding/json"
	"strconv"

	redis "github.com/redis/go-redis/v9"
)

// RedisMirror keeps one hash per tier, keyed by player id, so operators and
// other instances can see who is waiting.
type RedisMirror struct {
	client *redis.Client
	prefix string
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client, prefix: "mm:tier:"}
}

func (m *RedisMirror) key(tier int64) string {
	return m.prefix + strconv.FormatInt(tier, 10)
}

func (m *RedisMirror) Put(ctx context.Context, t Ticket) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return m.client.HSet(ctx, m.key(t.Tier), strconv.FormatInt(t.PlayerID, 10), raw).Err()
}

func (m *RedisMirror) Remove(ctx context.Context, tier, playerID int64) error {
	return m.client.HDel(ctx, m.key(tier), strconv.FormatInt(playerID, 10)).Err()
}

// Tickets reads back the mirrored tickets of a tier.
func (m *RedisMirror) Tickets(ctx context.Context, tier int64) ([]Ticket, error) {
	vals, err := m.client.HGetAll(ctx, m.key(tier)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Ticket, 0, len(vals))
	for _, raw := range vals {
		var t Ticket
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
