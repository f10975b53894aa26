package service

import (
	"testing"
	"time"

	"github.com/campusmedia/gallery/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderCacheKeyedByUpdatedAt(t *testing.T) {
	c := NewRenderCache(8, time.Minute)
	r := &model.Resource{ID: "1", UpdatedAt: testNow}

	_, ok := c.Get(r)
	assert.False(t, ok)

	c.Set(r, "<p>v1</p>")
	html, ok := c.Get(r)
	assert.True(t, ok)
	assert.Equal(t, "<p>v1</p>", html)

	edited := &model.Resource{ID: "1", UpdatedAt: testNow.Add(time.Second)}
	_, ok = c.Get(edited)
	assert.False(t, ok)
}

func TestRenderCacheForget(t *testing.T) {
	c := NewRenderCache(8, time.Minute)
	c.Set(&model.Resource{ID: "1", UpdatedAt: testNow}, "a")
	c.Set(&model.Resource{ID: "1", UpdatedAt: testNow.Add(time.Hour)}, "b")
	c.Set(&model.Resource{ID: "10", UpdatedAt: testNow}, "c")

	c.Forget("1")
	assert.Equal(t, 1, c.Len())
}

func TestRenderCacheExpires(t *testing.T) {
	c := NewRenderCache(8, 10*time.Millisecond)
	r := &model.Resource{ID: "1", UpdatedAt: testNow}
	c.Set(r, "a")

	assert.Eventually(t, func() bool {
		_, ok := c.Get(r)
		return !ok
	}, time.Second, 5*time.Millisecond)
}
