package gw2

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 1000, 1000)
}

func TestCharacterCoreForwardsKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/characters/Zojja Prime/core", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"name":"Zojja Prime","race":"Asura","gender":"Female","profession":"Elementalist","level":80}`))
	})

	ch, err := client.CharacterCore(context.Background(), "Zojja Prime", "secret-key")
	require.NoError(t, err)
	assert.Equal(t, "Asura", ch.Race)
	assert.Equal(t, "Female", ch.Gender)
	assert.Equal(t, "Elementalist", ch.Profession)
}

func TestNonSuccessIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"text":"Invalid access token"}`))
	})

	_, err := client.EquipmentTabs(context.Background(), "Nobody", "bad")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "Invalid access token", upstream.Message)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestTransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.URL, 1000, 1000)
	srv.Close()

	_, err := client.SkinIDs(context.Background())

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Zero(t, upstream.StatusCode)
	assert.NotNil(t, upstream.Err)
}

func TestSkinsBatchesIDs(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		assert.LessOrEqual(t, len(ids), MaxIDsPerRequest)

		var b strings.Builder
		b.WriteString("[")
		for i, id := range ids {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"id":` + id + `,"name":"Skin ` + id + `","type":"Armor"}`)
		}
		b.WriteString("]")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(b.String()))
	})

	ids := make([]int, 450)
	for i := range ids {
		ids[i] = i + 1
	}

	skins, err := client.Skins(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, skins, 450)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRateLimitedResponseIsRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[1,2,3]`))
	})

	ids, err := client.SkinIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBatch(t *testing.T) {
	testCases := []struct {
		name string
		ids  []int
		size int
		want [][]int
	}{
		{name: "empty", ids: nil, size: 2, want: nil},
		{name: "exact", ids: []int{1, 2, 3, 4}, size: 2, want: [][]int{{1, 2}, {3, 4}}},
		{name: "remainder", ids: []int{1, 2, 3}, size: 2, want: [][]int{{1, 2}, {3}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Batch(tc.ids, tc.size))
		})
	}
}

func TestJoinIDs(t *testing.T) {
	assert.Equal(t, "5,7,11", JoinIDs([]int{5, 7, 11}))
	assert.Equal(t, "", JoinIDs(nil))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", MaskAPIKey(""))
	assert.Equal(t, "***", MaskAPIKey("short"))
	assert.Equal(t, "ABC...WXYZ", MaskAPIKey("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
}
