package outfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "output.regex.txt")

	require.NoError(t, Write(path, []byte("a\nb")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", string(data))

	require.NoError(t, Write(path, []byte("c")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".incoming."), "leftover temp file %s", e.Name())
	}
}

func TestWrite_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			body := strings.Repeat(fmt.Sprintf("%d", i), 4096)
			assert.NoError(t, Write(path, []byte(body)))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 4096)
	assert.Equal(t, strings.Repeat(string(data[0]), 4096), string(data))
}
