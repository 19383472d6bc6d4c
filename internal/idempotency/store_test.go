package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor_StableAndDistinct(t *testing.T) {
	a := KeyFor(1, 2, 3, "tok_visa")
	b := KeyFor(1, 2, 3, "tok_visa")
	c := KeyFor(1, 2, 4, "tok_visa")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // sha256 hex
}

func TestStore_LookupMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewStore(db, time.Hour)

	mock.ExpectGet("checkout:charge:key1").RedisNil()
	v, err := s.Lookup(context.Background(), "key1")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RememberThenLookup(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewStore(db, time.Hour)

	mock.ExpectSet("checkout:charge:key1", "ch_42", time.Hour).SetVal("OK")
	require.NoError(t, s.Remember(context.Background(), "key1", "ch_42"))

	mock.ExpectGet("checkout:charge:key1").SetVal("ch_42")
	v, err := s.Lookup(context.Background(), "key1")
	require.NoError(t, err)
	assert.Equal(t, "ch_42", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewStore(db, time.Hour)

	mock.ExpectDel("checkout:charge:key1").SetVal(1)
	require.NoError(t, s.Clear(context.Background(), "key1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_NilClientDegrades(t *testing.T) {
	s := NewStore(nil, time.Hour)
	v, err := s.Lookup(context.Background(), "key1")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, s.Remember(context.Background(), "key1", "ch_1"))
	assert.NoError(t, s.Clear(context.Background(), "key1"))
}
