package tree

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for path, body := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte(body), 0o644))
	}
}

func importOpts() ImportOptions {
	return ImportOptions{RegexName: "regex.txt", SamplesName: "samples.txt", Logger: zerolog.Nop()}
}

func TestExport(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"/lib/Scams/Trade Scams/regex.txt":    "trade\n",
		"/lib/Scams/Trade Scams/samples.txt":  "want to trade?\n",
		"/lib/Generic Spam/Begging/regex.txt": "(pls|please) give\n",
	})

	root, err := Export(fsys, "/lib", "regex.txt", "samples.txt", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "lib", root.Name)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "Generic Spam", root.Children[0].Name)

	trade := root.Child("Scams").Child("Trade Scams")
	require.NotNil(t, trade)
	assert.Equal(t, []string{"trade"}, trade.Patterns)
	assert.Equal(t, []string{"want to trade?"}, trade.Samples)

	begging := root.Child("Generic Spam").Child("Begging")
	require.NotNil(t, begging)
	assert.Equal(t, []string{"(pls|please) give"}, begging.Patterns)
	assert.Nil(t, begging.Samples)
}

func TestEncodeDecode(t *testing.T) {
	root := &Node{
		Name: "lib",
		Children: []*Node{
			{Name: "Scams", Children: []*Node{
				{Name: "Games of Chance", Patterns: []string{`roll & win`}, Samples: []string{"ROLL & WIN big"}},
			}},
		},
	}

	for _, format := range []Format{JSON, YAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, root, format))
			assert.Contains(t, buf.String(), "roll & win")

			got, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, root, got)
		})
	}
}

func TestImport(t *testing.T) {
	doc := `
name: ignored
children:
  - name: Scams
    children:
      - name: Trade Scams
        patterns: [trade]
        samples: ["want to trade?"]
  - name: Empty
`
	root, err := Decode(strings.NewReader(doc), YAML)
	require.NoError(t, err)

	fsys := afero.NewMemMapFs()
	require.NoError(t, Import(fsys, "/out", root, importOpts()))

	data, err := afero.ReadFile(fsys, "/out/Scams/Trade Scams/regex.txt")
	require.NoError(t, err)
	assert.Equal(t, "trade\n", string(data))

	isDir, err := afero.IsDir(fsys, "/out/Empty")
	require.NoError(t, err)
	assert.True(t, isDir)

	exists, err := afero.Exists(fsys, "/out/Empty/regex.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	err = Import(fsys, "/out", root, importOpts())
	assert.ErrorIs(t, err, ErrExists)

	opts := importOpts()
	opts.Overwrite = true
	assert.NoError(t, Import(fsys, "/out", root, opts))

	back, err := Export(fsys, "/out", "regex.txt", "samples.txt", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"want to trade?"}, back.Child("Scams").Child("Trade Scams").Samples)
}

func TestImport_BadName(t *testing.T) {
	for _, name := range []string{"", "..", "a/b"} {
		root := &Node{Children: []*Node{{Name: name, Patterns: []string{"x"}}}}
		err := Import(afero.NewMemMapFs(), "/out", root, importOpts())
		assert.ErrorIs(t, err, ErrBadName, "name %q", name)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("toml")
	assert.ErrorIs(t, err, ErrBadFormat)

	assert.Equal(t, YAML, FormatOf("tree.yaml"))
	assert.Equal(t, JSON, FormatOf("tree.json"))
}
