// README: Redis client initialization for enquiry storage and settings.
package infra

import "github.com/redis/go-redis/v9"

func NewRedis(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password})
}
