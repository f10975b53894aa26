package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-01T10:20:30Z", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01T10:20:30.5+07:00", time.Date(2024, 3, 1, 3, 20, 30, 500000000, time.UTC)},
		{"2024-03-01T10:20:30", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01 10:20:30", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{" 2024-03-01 ", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"yesterday", time.Time{}},
		{"2024-13-45", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTime(tt.input)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestUnmarshalCategoryShapes(t *testing.T) {
	var scalar, list, both Resource
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","category":"ภาพถ่าย"}`), &scalar))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","category":["กราฟิก"," แผนที่ ","กราฟิก"]}`), &list))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"3","category":"x","categories":["y"]}`), &both))

	assert.Equal(t, []string{"ภาพถ่าย"}, scalar.Categories)
	assert.Equal(t, []string{"กราฟิก", "แผนที่"}, list.Categories)
	assert.Equal(t, []string{"y"}, both.Categories)
}

func TestUnmarshalDegradesGracefully(t *testing.T) {
	var r Resource
	input := `{"id":"1","title":"t","createdAt":"garbage","updatedAt":"2024-01-01","viewCount":-3,"downloadCount":5,"category":42}`
	require.NoError(t, json.Unmarshal([]byte(input), &r))

	assert.False(t, r.HasCreatedAt())
	assert.Equal(t, 0, r.ViewCount)
	assert.Equal(t, 5, r.DownloadCount)
	assert.Empty(t, r.Categories)
	assert.NotNil(t, r.Tags)
}

func TestUnmarshalClampsUpdatedAt(t *testing.T) {
	var r Resource
	input := `{"id":"1","createdAt":"2024-05-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(input), &r))

	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
}

func TestMarshalUsesCamelCase(t *testing.T) {
	r := Resource{ID: "1", Title: "t", Categories: []string{"a"}, Tags: []string{}, StoragePath: "secret"}
	b, err := json.Marshal(r)
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"viewCount":0`)
	assert.Contains(t, s, `"categories":["a"]`)
	assert.NotContains(t, s, "secret")
}

func TestNormalizeStrings(t *testing.T) {
	assert.Equal(t, []string{"AI", "IoT", "ai"}, NormalizeStrings([]string{" AI", "IoT", "", "AI ", "ai"}))
	assert.Equal(t, []string{}, NormalizeStrings(nil))
}

func TestHasCategory(t *testing.T) {
	r := Resource{Categories: []string{"ภาพถ่าย", "กิจกรรม"}}
	assert.True(t, r.HasCategory("กิจกรรม"))
	assert.False(t, r.HasCategory("วิดีโอ"))
}
