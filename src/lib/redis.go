package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"ers/src/config"
	"ers/src/models"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// CachePublishedForm stores the published form so registration traffic does
// not hit the database for it. Cache failures are logged and swallowed: the
// database stays authoritative.
func CachePublishedForm(form *models.EventForm) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	body, err := json.Marshal(form)
	if err != nil {
		log.Printf("Error marshaling form for cache: %s\n", err.Error())
		return
	}
	if err := rdb.SetEx(context.Background(), config.PublishedFormCacheKey, string(body), 12*time.Hour).Err(); err != nil {
		log.Printf("Failed to cache published form: %s\n", err.Error())
	}
}

func GetCachedPublishedForm() *models.EventForm {
	rdb := GetRedisClient()
	if rdb == nil {
		return nil
	}
	val, err := rdb.Get(context.Background(), config.PublishedFormCacheKey).Result()
	if err == redis.Nil {
		return nil
	} else if err != nil {
		log.Printf("Error reading published form cache: %s\n", err.Error())
		return nil
	}
	var form models.EventForm
	if err := json.Unmarshal([]byte(val), &form); err != nil {
		log.Printf("Error decoding cached form: %s\n", err.Error())
		return nil
	}
	return &form
}

func InvalidatePublishedForm() {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(context.Background(), config.PublishedFormCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate published form cache: %s\n", err.Error())
	}
}
