package patch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookPatch struct {
	Title     Field[string]    `json:"title"`
	Rating    Field[int]       `json:"rating"`
	ImageFile Nullable[string] `json:"image_file"`
}

func TestField_UnmarshalPresence(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantTitle  Field[string]
		wantRating Field[int]
		wantImage  Nullable[string]
	}{
		{
			name: "empty object leaves everything unset",
			body: `{}`,
		},
		{
			name:       "only rating supplied",
			body:       `{"rating": 4}`,
			wantRating: Some(4),
		},
		{
			name:       "zero rating is still supplied",
			body:       `{"rating": 0}`,
			wantRating: Some(0),
		},
		{
			name:      "explicit null clears nullable field",
			body:      `{"image_file": null}`,
			wantImage: Null[string](),
		},
		{
			name:      "title and image",
			body:      `{"title": "Dune", "image_file": "dune.png"}`,
			wantTitle: Some("Dune"),
			wantImage: Value("dune.png"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p bookPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))

			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, tt.wantRating, p.Rating)
			assert.Equal(t, tt.wantImage, p.ImageFile)
		})
	}
}

func TestField_RejectsNull(t *testing.T) {
	var p bookPatch
	err := json.Unmarshal([]byte(`{"title": null}`), &p)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNull))
}

func TestField_RejectsWrongType(t *testing.T) {
	var p bookPatch
	err := json.Unmarshal([]byte(`{"rating": "five"}`), &p)

	assert.Error(t, err)
}

func TestValidationValue(t *testing.T) {
	assert.Nil(t, Field[string]{}.ValidationValue())
	assert.Equal(t, "x", Some("x").ValidationValue())
	assert.Nil(t, Null[string]().ValidationValue())
	assert.Nil(t, Nullable[string]{}.ValidationValue())
	assert.Equal(t, 3, Value(3).ValidationValue())
}

func TestNullable_Ptr(t *testing.T) {
	assert.Nil(t, Null[string]().Ptr())
	assert.Nil(t, Nullable[string]{}.Ptr())

	p := Value("cover.jpg").Ptr()
	require.NotNil(t, p)
	assert.Equal(t, "cover.jpg", *p)
}

func TestGet(t *testing.T) {
	v, ok := Some(5).Get()
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = Field[int]{}.Get()
	assert.False(t, ok)
}
