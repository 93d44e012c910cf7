package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-api/internal/domain"
)

// TokenCache guarda resoluciones token -> cuenta para abaratar la
// verificacion por request. Es solo una cache: un miss (o un error del
// backend) obliga a consultar el repositorio, nunca falla la request.
// Tokens invalidos no se cachean.
type TokenCache interface {
	Get(token string) (domain.User, bool)
	Set(token string, user domain.User)
}

const tokenCacheTTL = 5 * time.Minute

type memoryTokenCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryTokenEntry
}

type memoryTokenEntry struct {
	user      domain.User
	expiresAt time.Time
}

func NewMemoryTokenCache() TokenCache {
	return &memoryTokenCache{
		ttl:   tokenCacheTTL,
		items: make(map[string]memoryTokenEntry),
	}
}

func (c *memoryTokenCache) Get(token string) (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[token]
	if !ok {
		return domain.User{}, false
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, token)
		return domain.User{}, false
	}
	return entry.user, true
}

func (c *memoryTokenCache) Set(token string, user domain.User) {
	if token == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[token] = memoryTokenEntry{
		user:      user,
		expiresAt: time.Now().UTC().Add(c.ttl),
	}
}

type redisTokenCache struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenCache crea una cache respaldada por Redis. Los campos
// de credenciales del usuario no se serializan, asi que hay que
// reponer el token al leer.
func NewRedisTokenCache(client *redis.Client) TokenCache {
	if client == nil {
		return nil
	}
	return &redisTokenCache{
		client: client,
		prefix: "auth:token:",
	}
}

type cachedUser struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	Username   string        `json:"username"`
	Avatar     *domain.Image `json:"avatar,omitempty"`
	Newsletter bool          `json:"newsletter"`
}

func (c *redisTokenCache) Get(token string) (domain.User, bool) {
	if token == "" {
		return domain.User{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+token).Bytes()
	if err != nil {
		return domain.User{}, false
	}
	var cached cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.User{}, false
	}
	return domain.User{
		ID:    cached.ID,
		Email: cached.Email,
		Account: domain.Account{
			Username: cached.Username,
			Avatar:   cached.Avatar,
		},
		Newsletter: cached.Newsletter,
		Token:      token,
	}, true
}

func (c *redisTokenCache) Set(token string, user domain.User) {
	if token == "" {
		return
	}
	raw, err := json.Marshal(cachedUser{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Account.Username,
		Avatar:     user.Account.Avatar,
		Newsletter: user.Newsletter,
	})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+token, raw, tokenCacheTTL).Err()
}
