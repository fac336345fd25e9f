package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTasksDropsDoneAndSkippedKeepingOrder(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{ID: "1", Text: "follow"},
		{ID: "2", Text: "retweet", Done: true},
		{ID: "3", Text: "like"},
		{ID: "4", Text: "quote"},
		{ID: "5", Text: "reply"},
	}

	got := FilterTasks(tasks, []string{"4", " 9 "})

	assert.Equal(t, []Task{
		{ID: "1", Text: "follow"},
		{ID: "3", Text: "like"},
		{ID: "5", Text: "reply"},
	}, got)
}

func TestFilterTasksEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FilterTasks(nil, []string{"1"}))
}

func TestTaskTitleUsesFirstLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Follow us", Task{Text: "Follow us \nand more"}.Title())
	assert.Equal(t, "", Task{}.Title())
}

func TestAggregatePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    float64
	}{
		{name: "numbers", payload: `{"a":10,"b":2.5}`, want: 12.5},
		{name: "numeric strings count", payload: `{"a":"10","b":5}`, want: 15},
		{name: "non numeric ignored", payload: `{"a":10,"b":"n/a","c":true,"d":null,"e":{"x":1}}`, want: 10},
		{name: "empty object", payload: `{}`, want: 0},
		{name: "not an object", payload: `[1,2,3]`, want: 0},
		{name: "garbage", payload: `oops`, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, AggregatePoints(json.RawMessage(tc.payload)), 1e-9)
		})
	}
}

func TestBindProxies(t *testing.T) {
	t.Parallel()

	accounts := []Account{{Index: 0, Address: "0xa"}, {Index: 1, Address: "0xb"}}

	t.Run("one to one", func(t *testing.T) {
		bindings, err := BindProxies(accounts, []string{"http://p1", "http://p2", "http://p3"}, true)
		require.NoError(t, err)
		require.Len(t, bindings, 2)
		assert.Equal(t, "http://p1", bindings[0].Proxy)
		assert.Equal(t, "http://p2", bindings[1].Proxy)
	})

	t.Run("shortage", func(t *testing.T) {
		_, err := BindProxies(accounts, []string{"http://p1"}, true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrProxyShortage))
		assert.ErrorContains(t, err, "accounts: 2, proxies: 1")
	})

	t.Run("proxy mode off ignores proxies", func(t *testing.T) {
		bindings, err := BindProxies(accounts, nil, false)
		require.NoError(t, err)
		assert.Empty(t, bindings[0].Proxy)
	})

	t.Run("no accounts", func(t *testing.T) {
		_, err := BindProxies(nil, []string{"http://p1"}, true)
		assert.ErrorIs(t, err, ErrNoAccounts)
	})
}

func TestNormalizePrivateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0xabc", NormalizePrivateKey(" abc "))
	assert.Equal(t, "0xabc", NormalizePrivateKey("0xabc"))
	assert.Equal(t, "0xabc", NormalizePrivateKey("0Xabc"))
}

func TestSessionRecordExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	signed := func(exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
		raw, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		return raw
	}

	assert.True(t, SessionRecord{}.Expired(now))
	assert.False(t, SessionRecord{AccessToken: "opaque", ExpiresAt: now.Add(time.Hour)}.Expired(now))
	assert.True(t, SessionRecord{AccessToken: "opaque", ExpiresAt: now}.Expired(now))
	assert.True(t, SessionRecord{AccessToken: "opaque"}.Expired(now))
	assert.False(t, SessionRecord{AccessToken: signed(now.Add(time.Hour))}.Expired(now))
	assert.True(t, SessionRecord{AccessToken: signed(now.Add(-time.Minute))}.Expired(now))
}

func TestOutcomeFatalOnlyForAuthenticationFailure(t *testing.T) {
	t.Parallel()

	assert.True(t, Outcome{Err: ErrAuthenticationFailed}.Fatal())
	assert.False(t, Outcome{Err: ErrProtocolMismatch}.Fatal())
	assert.False(t, Outcome{Success: true}.Fatal())
}

func TestOutcomeDecode(t *testing.T) {
	t.Parallel()

	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, Outcome{Data: json.RawMessage(`{"name":"x"}`)}.Decode(&payload))
	assert.Equal(t, "x", payload.Name)
	assert.Error(t, Outcome{}.Decode(&payload))
}
