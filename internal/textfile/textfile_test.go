package textfile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte("first  \r\n# comment\n\n   \n  indented\nlast")
	assert.Equal(t, []Line{
		{No: 1, Text: "first"},
		{No: 5, Text: "  indented"},
		{No: 6, Text: "last"},
	}, Parse(data))
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(nil))
	assert.Empty(t, Parse([]byte("\n\n")))
}

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/f.txt", []byte("a\nb\n"), 0o644))

	f, err := Load(fsys, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Texts())
	assert.Equal(t, []byte("a\nb\n"), f.Data)

	_, err = Load(fsys, "/missing.txt")
	assert.Error(t, err)
}
