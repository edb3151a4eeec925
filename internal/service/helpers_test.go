package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"paperlens/internal/domain"
	"paperlens/internal/workspace"
)

const testRecord = "x,y,z,w,1,2,3,4,5,6,7,8"

func testLayout(t *testing.T) workspace.Layout {
	t.Helper()
	root := t.TempDir()
	layout := workspace.Layout{
		InputPDFs:      filepath.Join(root, "new_pdf"),
		Texts:          filepath.Join(root, "generated_texts"),
		ProcessedTexts: filepath.Join(root, "used_texts"),
		UsedPDFs:       filepath.Join(root, "used_pdf"),
	}
	require.NoError(t, layout.EnsureDirs())
	return layout
}

func testOutputs(t *testing.T, name string) domain.OutputPair {
	t.Helper()
	dir := t.TempDir()
	return domain.OutputPair{
		Formatted:   filepath.Join(dir, name+".csv"),
		Unformatted: filepath.Join(dir, name+"_unformatted.csv"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writePrompt(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeFile(t, path, content)
	return path
}

func textDoc(layout workspace.Layout, stem string) domain.SourceDocument {
	return domain.SourceDocument{
		Stem:     stem,
		PDFPath:  filepath.Join(layout.InputPDFs, stem+".pdf"),
		TextPath: filepath.Join(layout.Texts, stem+".txt"),
	}
}
