package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/roach88/snooker/internal/model"
)

// DefaultRedisPrefix namespaces every key the store touches.
const DefaultRedisPrefix = "snooker"

// RedisStore is a Repository backed by Redis.
//
// Keys, under the prefix:
//
//	<prefix>:current   string, the current match document
//	<prefix>:history   list of match ids, most recent first
//	<prefix>:matches   hash id -> document for every id in history
//	<prefix>:settings  hash of preferences
type RedisStore struct {
	rdb          *redis.Client
	prefix       string
	log          zerolog.Logger
	historyLimit int
}

var _ Repository = (*RedisStore)(nil)

// OpenRedis connects to the Redis server at url and verifies the
// connection.
func OpenRedis(ctx context.Context, url string, opts ...Option) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStore(client, DefaultRedisPrefix, opts...), nil
}

// NewRedisStore wraps an existing client. The store owns the client and
// closes it on Close.
func NewRedisStore(client *redis.Client, prefix string, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		rdb:          client,
		prefix:       prefix,
		log:          o.logger.With().Str("component", "store").Str("backend", "redis").Logger(),
		historyLimit: o.historyLimit,
	}
}

func (s *RedisStore) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// SaveCurrent overwrites the current match slot.
func (s *RedisStore) SaveCurrent(ctx context.Context, m *model.Match) error {
	doc, err := encodeMatch(m)
	if err != nil {
		return fmt.Errorf("save current: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key("current"), doc, 0).Err(); err != nil {
		return fmt.Errorf("save current: %w", err)
	}
	s.log.Debug().Str("match", m.ID).Int("bytes", len(doc)).Msg("current match saved")
	return nil
}

// LoadCurrent returns the current match, or ErrNotFound.
func (s *RedisStore) LoadCurrent(ctx context.Context) (*model.Match, error) {
	data, err := s.rdb.Get(ctx, s.key("current")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load current: %w", err)
	}
	return decodeMatch(data)
}

// ClearCurrent empties the current match slot.
func (s *RedisStore) ClearCurrent(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key("current")).Err(); err != nil {
		return fmt.Errorf("clear current: %w", err)
	}
	return nil
}

// SaveToHistory pushes m to the head of history, or replaces the stored
// document in place when m is already there.
func (s *RedisStore) SaveToHistory(ctx context.Context, m *model.Match) error {
	doc, err := encodeMatch(m)
	if err != nil {
		return fmt.Errorf("save to history: %w", err)
	}

	exists, err := s.rdb.HExists(ctx, s.key("matches"), m.ID).Result()
	if err != nil {
		return fmt.Errorf("save to history: %w", err)
	}
	if exists {
		if err := s.rdb.HSet(ctx, s.key("matches"), m.ID, doc).Err(); err != nil {
			return fmt.Errorf("save to history: %w", err)
		}
		return nil
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key("history"), m.ID)
		pipe.HSet(ctx, s.key("matches"), m.ID, doc)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save to history: %w", err)
	}
	return s.trim(ctx)
}

// trim drops history entries beyond the cap.
func (s *RedisStore) trim(ctx context.Context) error {
	limit := int64(s.historyLimit)
	stale, err := s.rdb.LRange(ctx, s.key("history"), limit, -1).Result()
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LTrim(ctx, s.key("history"), 0, limit-1)
		pipe.HDel(ctx, s.key("matches"), stale...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	s.log.Debug().Int("dropped", len(stale)).Int("limit", s.historyLimit).Msg("history trimmed")
	return nil
}

// History returns every stored match, most recent first.
func (s *RedisStore) History(ctx context.Context) ([]*model.Match, error) {
	ids, err := s.rdb.LRange(ctx, s.key("history"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	matches := []*model.Match{}
	if len(ids) == 0 {
		return matches, nil
	}

	docs, err := s.rdb.HMGet(ctx, s.key("matches"), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	for i, doc := range docs {
		str, ok := doc.(string)
		if !ok {
			s.log.Warn().Str("match", ids[i]).Msg("history entry without document")
			continue
		}
		m, err := decodeMatch([]byte(str))
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// LoadByID returns the history entry with the given id, or ErrNotFound.
func (s *RedisStore) LoadByID(ctx context.Context, id string) (*model.Match, error) {
	data, err := s.rdb.HGet(ctx, s.key("matches"), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", id, err)
	}
	return decodeMatch(data)
}

// DeleteFromHistory removes one entry, or returns ErrNotFound.
func (s *RedisStore) DeleteFromHistory(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.HDel(ctx, s.key("matches"), id)
		pipe.LRem(ctx, s.key("history"), 0, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadSettings returns stored preferences over the defaults.
func (s *RedisStore) LoadSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()
	fields, err := s.rdb.HGetAll(ctx, s.key("settings")).Result()
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	for k, v := range fields {
		applySettingField(&settings, k, v)
	}
	return settings, nil
}

// SaveSettings stores every preference.
func (s *RedisStore) SaveSettings(ctx context.Context, settings Settings) error {
	values := make([]any, 0, 6)
	for k, v := range settingsFields(settings) {
		values = append(values, k, v)
	}
	if err := s.rdb.HSet(ctx, s.key("settings"), values...).Err(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Size reports stored document sizes.
func (s *RedisStore) Size(ctx context.Context) (SizeReport, error) {
	var r SizeReport

	current, err := s.rdb.StrLen(ctx, s.key("current")).Result()
	if err != nil {
		return r, fmt.Errorf("current size: %w", err)
	}
	r.CurrentBytes = current

	docs, err := s.rdb.HVals(ctx, s.key("matches")).Result()
	if err != nil {
		return r, fmt.Errorf("history size: %w", err)
	}
	for _, doc := range docs {
		r.HistoryBytes += int64(len(doc))
	}
	r.HistoryCount = len(docs)
	return r, nil
}

// ClearAll deletes every key the store owns.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	err := s.rdb.Del(ctx, s.key("current"), s.key("history"), s.key("matches"), s.key("settings")).Err()
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	return nil
}
