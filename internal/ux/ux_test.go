package ux

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func (s sample) Sections() []Section {
	return []Section{{
		Title: "Sample",
		Rows: []Row{
			{Key: "name", Value: s.Name},
			{Key: "count", Value: "2", Tone: ToneOK},
		},
	}}
}

func TestNewFormatter(t *testing.T) {
	for _, format := range []string{"json", "yaml", "text", ""} {
		f, err := NewFormatter(format, nil)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	_, err := NewFormatter("xml", nil)
	assert.Error(t, err)
}

func TestFormatters(t *testing.T) {
	data := sample{Name: "miow", Count: 2}

	tests := []struct {
		format string
		want   string
	}{
		{"json", "{\n  \"name\": \"miow\",\n  \"count\": 2\n}\n"},
		{"yaml", "name: miow\ncount: 2\n"},
		{"text", "Sample\n  name:  miow\n  count: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			f, err := NewFormatter(tt.format, &FormatterOptions{Writer: &buf, NoColor: true})
			require.NoError(t, err)
			require.NoError(t, f.Format(data))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTextFormatterRequiresSections(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter(FormatText, &FormatterOptions{Writer: &buf, NoColor: true})
	require.NoError(t, err)

	assert.ErrorContains(t, f.Format(struct{ A int }{1}), "--format json")
	assert.Error(t, f.Format("plain"))
	assert.Empty(t, buf.String())

	require.NoError(t, f.Format(sample{Name: "miow"}))
	assert.Contains(t, buf.String(), "miow")
}

func TestRenderSectionsStyled(t *testing.T) {
	out := RenderSections(sample{Name: "miow"}.Sections(), false)
	assert.Contains(t, out, "Sample")
	assert.Contains(t, out, "miow")
	assert.Contains(t, out, "count")
}

func TestDiscoverMiowDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, DirName), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, filepath.Join(root, DirName), DiscoverMiowDir(nested))

	other := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(other, ".git"), 0o755))
	assert.Equal(t, filepath.Join(other, DirName), DiscoverMiowDir(other))

	p := Paths{Dir: filepath.Join(root, DirName)}
	assert.Equal(t, filepath.Join(root, DirName, "config.yaml"), p.ConfigFile())
	assert.Equal(t, filepath.Join(root, DirName, "graph.db"), p.GraphDB())
	assert.Equal(t, root, p.ProjectRoot())
}

func TestEnhanceError(t *testing.T) {
	assert.Nil(t, EnhanceError(nil))

	coded := errors.NewUnknownWorkerError("ghost")
	assert.Same(t, coded, EnhanceError(coded))

	err := EnhanceError(stderrors.New("open .miow/config.yaml: no such file or directory"))
	var ews *ErrorWithSuggestion
	require.ErrorAs(t, err, &ews)
	assert.Contains(t, ews.Suggestion, "miow config init")

	err = EnhanceError(stderrors.New("dial tcp 127.0.0.1:1: connection refused"))
	assert.Contains(t, err.Error(), "provider.base_url")

	plain := stderrors.New("something else")
	assert.Equal(t, plain, EnhanceError(plain))
}

func TestFormatError(t *testing.T) {
	assert.Nil(t, FormatError(nil, "ctx"))
	err := FormatError(stderrors.New("boom"), "index")
	assert.EqualError(t, err, "index: boom")
}
