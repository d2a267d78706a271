package publisher

import (
	"context"
	"encoding/base64"
	"math/rand/v2"
	"strconv"

	"github.com/redis/go-redis/v9"

	crawlerrors "sjsage522/estatecrawler/pkg/errors"
)

// Options configures a RedisPublisher
type Options struct {
	Addr            string
	DB              int
	StreamPrefix    string
	StreamCount     int
	StreamMaxLength int64
}

// RedisPublisher implements Publisher using sharded Redis streams
type RedisPublisher struct {
	client *redis.Client
	ctx    context.Context
	opts   Options
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, opts Options) *RedisPublisher {
	if opts.StreamCount < 1 {
		opts.StreamCount = 1
	}

	client := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	return &RedisPublisher{
		client: client,
		ctx:    ctx,
		opts:   opts,
	}
}

// Ping checks the connection
func (p *RedisPublisher) Ping() error {
	if err := p.client.Ping(p.ctx).Err(); err != nil {
		return crawlerrors.NewPublisher("", "redis unreachable", err)
	}
	return nil
}

// StreamName returns the name of shard i
func (p *RedisPublisher) StreamName(i int) string {
	return p.opts.StreamPrefix + ":" + strconv.Itoa(i)
}

// Publish publishes a message to a Redis stream
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	// with StreamCount 10 the stream is one of prefix:0 ~ prefix:9
	stream := p.StreamName(rand.IntN(p.opts.StreamCount))

	err := p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encodedMessage,
		},
	}).Err()
	if err != nil {
		return crawlerrors.NewPublisher(stream, "xadd failed", err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams() error {
	if p.opts.StreamMaxLength <= 0 {
		return nil
	}

	for i := 0; i < p.opts.StreamCount; i++ {
		stream := p.StreamName(i)
		if err := p.client.XTrimMaxLen(p.ctx, stream, p.opts.StreamMaxLength).Err(); err != nil {
			return crawlerrors.NewPublisher(stream, "trim failed", err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
