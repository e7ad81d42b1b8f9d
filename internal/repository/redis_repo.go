package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"leke-chat/internal/models"
)

const conversationsKey = "leke:conversations"

// RedisConversationRepo stores each conversation as a JSON element of one
// list, so RPUSH order is insertion order.
type RedisConversationRepo struct {
	client *redis.Client
	key    string
}

func NewRedisConversationRepo(client *redis.Client) *RedisConversationRepo {
	return &RedisConversationRepo{client: client, key: conversationsKey}
}

func (r *RedisConversationRepo) Append(ctx context.Context, c *models.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, r.key, data).Err()
}

func (r *RedisConversationRepo) List(ctx context.Context) ([]models.Conversation, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	all := make([]models.Conversation, 0, len(raw))
	for i, item := range raw {
		var c models.Conversation
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			return nil, fmt.Errorf("corrupt conversation at index %d: %w", i, err)
		}
		all = append(all, c)
	}
	return all, nil
}

func (r *RedisConversationRepo) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
