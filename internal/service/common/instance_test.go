//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a static ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int { return p.pid }

func (p fakeProcess) PPid() int { return 1 }

func (p fakeProcess) Executable() string { return p.name }

// TestProcessesNamed matches by executable name and skips the caller.
func TestProcessesNamed(t *testing.T) {
	t.Parallel()

	processList := []ps.Process{
		fakeProcess{pid: 10, name: "escrow-server"},
		fakeProcess{pid: 11, name: "escrow-cli"},
		fakeProcess{pid: 12, name: "escrow-server"},
	}

	require.Equal(t, []int{12}, processesNamed(processList, "escrow-server", 10))
	require.Empty(t, processesNamed(processList, "redis-server", 10))
}

// TestOtherInstanceRunning does not count the calling process.
func TestOtherInstanceRunning(t *testing.T) {
	t.Parallel()

	running, err := OtherInstanceRunning("no-such-escrow-binary")
	require.NoError(t, err)
	require.False(t, running)

	self, err := os.Executable()
	require.NoError(t, err)

	_, err = OtherInstanceRunning(filepath.Base(self))
	require.NoError(t, err)
}
