package text

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribblehub-to-epub/model"
	apperrors "scribblehub-to-epub/pkg/errors"
)

func TestChapterText(t *testing.T) {
	text, err := ChapterText(&model.Chapter{
		Title:   "One",
		Content: `<p>First <em>line</em>.</p><p><img src="../Images/a.png" alt=""/></p><p>Second<br/>line</p>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "One\n\nFirst line.\n\nSecond\n\nline\n", text)
}

func TestPackWorkToText(t *testing.T) {
	work := &model.Work{
		Title:  "The Test Story",
		Author: "Jane Writer",
		Chapters: []*model.Chapter{
			{Title: "Prologue", Content: "<p>It begins.</p>"},
			{Title: "What/If?", Content: "<p>It ends.</p>"},
		},
	}

	dir, err := PackWorkToText(work, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "Jane Writer - The Test Story", filepath.Base(dir))

	got, err := os.ReadFile(filepath.Join(dir, "0001-Prologue.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Prologue\n\nIt begins.\n", string(got))

	_, err = os.Stat(filepath.Join(dir, "0002-What_If_.txt"))
	assert.NoError(t, err)
}

func TestPackWorkToTextIOError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := PackWorkToText(&model.Work{Title: "T"}, blocker)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeIO))
}
