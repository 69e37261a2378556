package yolo2coco

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageErrorMessage(t *testing.T) {

	err := newStageError(StageAnnotations, "",
		&FileError{File: "a.jpg", Err: ErrImageDecode})
	assert.Equal(t, "stage annotations: a.jpg: image decode error", err.Error())
	assert.Equal(t, "a.jpg", err.File)
	assert.ErrorIs(t, err, ErrImageDecode)

	err = newStageError(StageImages, "images/", errors.New("boom"))
	assert.Equal(t, "stage images: images/: boom", err.Error())

	err = newStageError(StageCategories, "", errors.New("boom"))
	assert.Equal(t, "stage categories: boom", err.Error())
}

func TestParseMode(t *testing.T) {

	tests := []struct {
		in       string
		expected Mode
		wantErr  bool
	}{
		{in: "from-model", expected: ModeFromModel},
		{in: "from-txt", expected: ModeFromText},
		{in: "FROM-TEXT", expected: ModeFromText},
		{in: "from-json", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			m, err := ParseMode(tc.in)

			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, m)
		})
	}

	assert.Equal(t, "from-txt", ModeFromText.String())
	assert.Equal(t, "from-model", ModeFromModel.String())
}

func TestParseFailurePolicy(t *testing.T) {

	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Abort, p)

	p, err = ParseFailurePolicy("Skip")
	require.NoError(t, err)
	assert.Equal(t, Skip, p)

	_, err = ParseFailurePolicy("retry")
	assert.Error(t, err)

	assert.Equal(t, "abort", Abort.String())
	assert.Equal(t, "skip", Skip.String())
}
