//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"

	"github.com/mitchellh/go-ps"
)

// OtherInstanceRunning reports whether a process other than this one runs the
// executable called name.
func OtherInstanceRunning(name string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	return len(processesNamed(processList, name, os.Getpid())) > 0, nil
}

// processesNamed returns the ids of processes running name, skipping self.
func processesNamed(processList []ps.Process, name string, self int) []int {
	var ids []int

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() != name {
			continue
		}

		ids = append(ids, process.Pid())
	}

	return ids
}
