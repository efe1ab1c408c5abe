package tokenstore

import (
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// DefaultRedisKey is the key under which RedisBackend stores the token when
// no other key is specified.
const DefaultRedisKey = "sweetshop:session:token"

// deleteIfScript deletes KEYS[1] if it is absent or holds ARGV[1] and returns
// 1 in either case; otherwise it leaves the key alone and returns 0.
var deleteIfScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	return 1
end
if current == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// RedisBackend persists the token under a single Redis key, which allows the
// slot to be shared by several processes or hosts.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend returns a RedisBackend that stores the token under the
// given key or, if key is empty, under DefaultRedisKey.
func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{
		client: client,
		key:    key,
	}
}

func (r *RedisBackend) Load() (string, error) {
	token, err := r.client.Get(r.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "error reading token from redis key %q", r.key)
	}
	return token, nil
}

func (r *RedisBackend) Save(token string) error {
	if err := r.client.Set(r.key, token, 0).Err(); err != nil {
		return errors.Wrapf(err, "error writing token to redis key %q", r.key)
	}
	return nil
}

func (r *RedisBackend) Delete() error {
	if err := r.client.Del(r.key).Err(); err != nil {
		return errors.Wrapf(err, "error deleting redis key %q", r.key)
	}
	return nil
}

func (r *RedisBackend) DeleteIf(token string) (bool, error) {
	res, err := deleteIfScript.Run(r.client, []string{r.key}, token).Result()
	if err != nil {
		return false, errors.Wrapf(
			err,
			"error conditionally deleting redis key %q",
			r.key,
		)
	}
	n, ok := res.(int64)
	if !ok {
		return false, errors.Errorf(
			"unexpected result %v conditionally deleting redis key %q",
			res,
			r.key,
		)
	}
	return n == 1, nil
}
