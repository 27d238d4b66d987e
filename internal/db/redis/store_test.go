package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/catalograg/internal/db"
)

func newTestStore(t *testing.T) (*Store, *mock.Client) {
	t.Helper()
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	return &Store{client: c, prefix: "catalograg:"}, c
}

func TestPing_Success(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected db.Error with PING op, got %v", err)
	}
}

func TestGet_PrefixesKey(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "catalograg:emb:abc")).
		Return(mock.Result(mock.RedisBlobString("value")))

	data, err := s.Get(context.Background(), "emb:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "catalograg:missing")).
		Return(mock.Result(mock.RedisNil()))

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_NetworkError(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "catalograg:k")).
		Return(mock.ErrorResult(errors.New("connection reset")))

	_, err := s.Get(context.Background(), "k")
	if err == nil || errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected wrapped network error, got %v", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) == 5 && cmd[0] == "SET" && cmd[1] == "catalograg:k" &&
				cmd[2] == "v" && cmd[3] == "EX" && cmd[4] == "60"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_ZeroMeansForever(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "catalograg:k", "v")).
		Return(mock.Result(mock.RedisString("OK")))

	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIncrBy(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "catalograg:counter", "5")).
		Return(mock.Result(mock.RedisInt64(5)))

	if err := s.IncrBy(context.Background(), "counter", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_WithNX(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "catalograg:k", "300", "NX")).
		Return(mock.Result(mock.RedisInt64(1)))

	if err := s.Expire(context.Background(), "k", 5*time.Minute, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_Error(t *testing.T) {
	s, c := newTestStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "catalograg:k", "300")).
		Return(mock.ErrorResult(errors.New("boom")))

	err := s.Expire(context.Background(), "k", 5*time.Minute, false)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpExpire {
		t.Fatalf("expected EXPIRE db.Error, got %v", err)
	}
}
