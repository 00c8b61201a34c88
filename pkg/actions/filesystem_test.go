package actions_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/source-licenser/pkg/actions"
)

func TestDryRun_RecordsWithoutTouchingDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "x\n")
	dry := actions.NewDryRunFileSystem(nil)

	env := actions.Env{DefaultLicense: testLicense, FS: dry}

	header, err := actions.New(actions.KindHeader, jsDocSettings(), env)
	require.NoError(t, err)

	sibling, err := actions.New(actions.KindSiblingFile, actions.Settings{}, env)
	require.NoError(t, err)

	for _, action := range []actions.Action{header, sibling} {
		modified, applyErr := action.Apply(context.Background(), path)
		require.NoError(t, applyErr)
		assert.True(t, modified)
	}

	assert.Equal(t, "x\n", readFile(t, path))
	assert.NoFileExists(t, filepath.Join(dir, "LICENSE"))

	changes := dry.Changes()
	require.Len(t, changes, 2)

	assert.Equal(t, filepath.Join(dir, "LICENSE"), changes[0].Path)
	assert.True(t, changes[0].Created)
	assert.Equal(t, testLicense, string(changes[0].After))

	assert.Equal(t, path, changes[1].Path)
	assert.False(t, changes[1].Created)
	assert.Equal(t, "x\n", string(changes[1].Before))
	assert.Equal(t, jsDocBlock+"x\n", string(changes[1].After))

	// A second pass reads the overlay and sees the block already present.
	modified, err := header.Apply(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestDryRun_OmitsRevertedWrites(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "a.txt", "same")
	dry := actions.NewDryRunFileSystem(actions.OSFileSystem{})

	require.NoError(t, dry.WriteFile(path, []byte("changed")))
	require.NoError(t, dry.WriteFile(path, []byte("same")))

	assert.Empty(t, dry.Changes())
}

func TestOSFileSystem_PreservesMode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo\n"), 0o750))

	require.NoError(t, actions.OSFileSystem{}.WriteFile(path, []byte("echo hi\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestPathLocks_SerialisesSamePath(t *testing.T) {
	t.Parallel()

	var (
		locks   actions.PathLocks
		wg      sync.WaitGroup
		counter int
	)

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock := locks.Lock("dir/../LICENSE")
			counter++
			unlock()
		}()
	}

	wg.Wait()
	assert.Equal(t, 50, counter)

	var nilLocks *actions.PathLocks
	nilLocks.Lock("any")()
}

func TestNew_UnknownAction(t *testing.T) {
	t.Parallel()

	_, err := actions.New("trailer", actions.Settings{}, actions.Env{})
	require.ErrorIs(t, err, actions.ErrUnknownAction)
	assert.Equal(t, []string{"footer", "header", "json", "siblingLicenseFile"}, actions.Kinds())
}
