package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `{
	"success": true,
	"data": [{"id": "4", "title": "Charr Commander", "author_name": "Rytlock", "tags": ["Charr", "Guardian"], "likes_count": 12, "published": true}],
	"pagination": {"page": 2, "limit": 10, "total": 11, "total_pages": 2}
}`

func TestListPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/posts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL+"/").ListPosts(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.True(t, page.Success)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Charr Commander", page.Data[0].Title)
	assert.Equal(t, []string{"Charr", "Guardian"}, page.Data[0].Tags)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestPopularPostsClampsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/posts/popular", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success": true, "data": null, "pagination": {}}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL).PopularPosts(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestSearchPostsSendsFlattenedTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/posts/search", r.URL.Path)
		assert.Equal(t, "Charr,Blue dyes", q.Get("tags"))
		assert.Equal(t, "phoenix", q.Get("q"))
		assert.Equal(t, "Rytlock", q.Get("author"))
		assert.Equal(t, "25", q.Get("limit"))
		w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SearchPosts(context.Background(), SearchQuery{
		Query:  "phoenix",
		Author: "Rytlock",
		Tags:   []string{"Charr", "Blue dyes"},
	})
	require.NoError(t, err)
}

func TestSearchPostsOmitsEmptyFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_, hasTags := q["tags"]
		_, hasQ := q["q"]
		assert.False(t, hasTags)
		assert.False(t, hasQ)
		w.Write([]byte(pageBody))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SearchPosts(context.Background(), SearchQuery{})
	require.NoError(t, err)
}

func TestGetPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/posts/4":
			w.Write([]byte(`{"success": true, "data": {"id": "4", "title": "Charr Commander", "equipments": "e30="}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success": false, "error": "Post not found"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	post, err := c.GetPost(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, "4", post.ID)
	assert.JSONEq(t, `"e30="`, string(post.Equipments))

	_, err = c.GetPost(context.Background(), "5")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetPost(context.Background(), " ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "Failed to fetch posts"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListPosts(context.Background(), 1, 10)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
	assert.Equal(t, "Failed to fetch posts", upErr.Message)
	assert.Equal(t, "/api/v1/posts", upErr.Endpoint)
}

func TestTransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient(srv.URL)
	srv.Close()

	_, err := c.ListPosts(context.Background(), 1, 10)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, 0, upErr.StatusCode)
	assert.Equal(t, "/api/v1/posts", upErr.Endpoint)
	assert.Error(t, upErr.Err)
}

func TestErrorMessageFallsBackToBody(t *testing.T) {
	assert.Equal(t, "bad gateway", errorMessage([]byte(" bad gateway \n")))
	assert.Equal(t, "nope", errorMessage([]byte(`{"message": "nope"}`)))
}
