package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix    = "doc:"
	patchMaxRetries = 5
)

// RedisStore keeps each document as a JSON value under "doc:<collection>/<id>".
// Collection reads SCAN the prefix; field-level operations read-modify-write
// the owning document under an optimistic WATCH/MULTI guard.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func docKey(collection, id string) string {
	return docKeyPrefix + collection + "/" + id
}

func (s *RedisStore) ReadSubtree(ctx context.Context, path string) (any, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if len(segs) == 1 {
		return s.readCollection(ctx, segs[0])
	}

	raw, err := s.client.Get(ctx, docKey(segs[0], segs[1])).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("read", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("read %q: decode document: %w", path, err)
	}
	if len(segs) == 2 {
		return doc, nil
	}
	return fieldAt(doc, segs[2:]), nil
}

func (s *RedisStore) readCollection(ctx context.Context, collection string) (any, error) {
	out := map[string]any{}
	prefix := docKeyPrefix + collection + "/"
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, unavailable("read", collection, err)
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("read %q: decode %q: %w", collection, key, err)
		}
		out[strings.TrimPrefix(key, prefix)] = doc
	}
	if err := iter.Err(); err != nil {
		return nil, unavailable("scan", collection, err)
	}
	return out, nil
}

func (s *RedisStore) WriteDocument(ctx context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("%w: %q is not a document path", ErrInvalidPath, path)
	}
	if len(segs) == 2 {
		buf, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("write %q: encode: %w", path, err)
		}
		if err := s.client.Set(ctx, docKey(segs[0], segs[1]), buf, 0).Err(); err != nil {
			return unavailable("write", path, err)
		}
		return nil
	}
	return s.patchDocument(ctx, docPath(segs), func(doc map[string]any) {
		setFieldAt(doc, segs[2:], value)
	})
}

func (s *RedisStore) PatchFields(ctx context.Context, path string, fields map[string]any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) != 2 {
		return fmt.Errorf("%w: patch needs a document path, got %q", ErrInvalidPath, path)
	}
	return s.patchDocument(ctx, docPath(segs), func(doc map[string]any) {
		for k, v := range fields {
			doc[k] = v
		}
	})
}

// patchDocument applies mutate to the stored document under a WATCH guard,
// retrying on concurrent modification.
func (s *RedisStore) patchDocument(ctx context.Context, path string, mutate func(map[string]any)) error {
	segs := strings.SplitN(path, "/", 2)
	key := docKey(segs[0], segs[1])

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		doc := map[string]any{}
		switch {
		case err == redis.Nil:
			// patching an absent document creates it
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return fmt.Errorf("decode document: %w", err)
			}
		}
		mutate(doc)
		buf, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		return err
	}

	for i := 0; i < patchMaxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return unavailable("patch", path, err)
	}
	return unavailable("patch", path, fmt.Errorf("gave up after %d contended attempts", patchMaxRetries))
}

func (s *RedisStore) DeleteSubtree(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	switch len(segs) {
	case 1:
		prefix := docKeyPrefix + segs[0] + "/"
		iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return unavailable("delete", path, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return unavailable("delete", path, err)
			}
		}
		return nil
	case 2:
		if err := s.client.Del(ctx, docKey(segs[0], segs[1])).Err(); err != nil {
			return unavailable("delete", path, err)
		}
		return nil
	default:
		return s.patchDocument(ctx, docPath(segs), func(doc map[string]any) {
			deleteFieldAt(doc, segs[2:])
		})
	}
}

func (s *RedisStore) AppendChild(ctx context.Context, collectionPath string, value any) (string, error) {
	segs, err := splitPath(collectionPath)
	if err != nil {
		return "", err
	}
	if len(segs) != 1 {
		return "", fmt.Errorf("%w: append needs a collection path, got %q", ErrInvalidPath, collectionPath)
	}
	buf, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("append %q: encode: %w", collectionPath, err)
	}
	for {
		id := PushKey()
		ok, err := s.client.SetNX(ctx, docKey(segs[0], id), buf, 0).Result()
		if err != nil {
			return "", unavailable("append", collectionPath, err)
		}
		if ok {
			return id, nil
		}
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", "", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
