package client

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// FormatPackage renders a package as aligned name-value lines.
func FormatPackage(p *domain.Package) string {
	if p == nil {
		return "<nil package>"
	}

	var b strings.Builder

	line := func(name string, value any) {
		_, _ = fmt.Fprintf(&b, "%-11s %v\n", name+":", value)
	}

	line("id", p.ID)
	line("status", p.Status)
	line("recipient", p.Recipient)
	line("amount", p.Amount.String()+" "+string(p.Asset))
	line("created", formatLedgerTime(p.CreatedAt))
	line("expires", formatLedgerTime(p.ExpiresAt))

	for _, key := range slices.Sorted(maps.Keys(p.Metadata)) {
		line("meta."+key, p.Metadata[key])
	}

	return b.String()
}

// formatLedgerTime renders ledger seconds as UTC time, 0 as never.
func formatLedgerTime(seconds uint64) string {
	if seconds == 0 {
		return "never"
	}

	//nolint:gosec // Ledger timestamps are Unix seconds well below the int64 range.
	return time.Unix(int64(seconds), 0).UTC().Format(time.RFC3339)
}
