package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_Key(t *testing.T) {
	assert.Equal(t, "sess:abc", NewRedisStore(nil, "").key("abc"))
	assert.Equal(t, "app:abc", NewRedisStore(nil, "app").key("abc"))
}

func TestRedisStore_UnreachableIsNotAnonymous(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	st := NewRedisStore(rdb, "sess")
	ctx := context.Background()

	_, err := st.Load(ctx, "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)

	assert.Error(t, st.Save(ctx, Session{ID: "x"}, time.Minute))
	assert.Error(t, st.Delete(ctx, "x"))
}
