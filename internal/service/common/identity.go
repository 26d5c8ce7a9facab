//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os/user"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// DetectIdentity returns the name of the local user, used as the caller
// identity when none is configured.
func DetectIdentity() (domain.Identity, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}

	return domain.Identity(currentUser.Username), nil
}
