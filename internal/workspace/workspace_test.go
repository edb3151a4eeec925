package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/workspace"
)

func newLayout(t *testing.T) workspace.Layout {
	t.Helper()
	root := t.TempDir()
	l := workspace.Layout{
		InputPDFs:      filepath.Join(root, "new_pdf"),
		Texts:          filepath.Join(root, "generated_texts"),
		ProcessedTexts: filepath.Join(root, "used_texts"),
		UsedPDFs:       filepath.Join(root, "used_pdf"),
	}
	require.NoError(t, l.EnsureDirs())
	return l
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestEnsureDirs_Idempotent(t *testing.T) {
	l := newLayout(t)

	require.NoError(t, l.EnsureDirs())

	assert.DirExists(t, l.InputPDFs)
	assert.DirExists(t, l.Texts)
	assert.DirExists(t, l.ProcessedTexts)
	assert.DirExists(t, l.UsedPDFs)
}

func TestPendingPDFs_CaseInsensitive(t *testing.T) {
	l := newLayout(t)
	touch(t, filepath.Join(l.InputPDFs, "a.pdf"))
	touch(t, filepath.Join(l.InputPDFs, "B.PDF"))
	touch(t, filepath.Join(l.InputPDFs, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(l.InputPDFs, "dir.pdf"), 0o755))

	docs, err := l.PendingPDFs()
	require.NoError(t, err)

	require.Len(t, docs, 2)
	stems := []string{docs[0].Stem, docs[1].Stem}
	assert.ElementsMatch(t, []string{"a", "B"}, stems)
	for _, d := range docs {
		assert.Equal(t, filepath.Join(l.Texts, d.Stem+".txt"), d.TextPath)
	}
}

func TestPendingTexts(t *testing.T) {
	l := newLayout(t)
	touch(t, filepath.Join(l.Texts, "paper.txt"))
	touch(t, filepath.Join(l.Texts, "paper.pdf"))

	docs, err := l.PendingTexts()
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "paper", docs[0].Stem)
	assert.Equal(t, filepath.Join(l.InputPDFs, "paper.pdf"), docs[0].PDFPath)
	assert.Equal(t, "paper.txt", docs[0].TextFilename())
}

func TestListByExt_MissingDir(t *testing.T) {
	_, err := workspace.ListByExt(filepath.Join(t.TempDir(), "nope"), ".pdf")
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	l := newLayout(t)
	src := filepath.Join(l.Texts, "paper.txt")
	touch(t, src)

	dst, err := workspace.Move(src, l.ProcessedTexts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(l.ProcessedTexts, "paper.txt"), dst)
	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)
	assert.True(t, workspace.Exists(dst))
}

func TestMove_MissingSource(t *testing.T) {
	l := newLayout(t)

	_, err := workspace.Move(filepath.Join(l.Texts, "absent.txt"), l.ProcessedTexts)

	assert.Error(t, err)
}
