package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/phishguard/internal/classify"
)

var (
	phishingBanner = color.New(color.FgRed, color.Bold)
	safeBanner     = color.New(color.FgGreen, color.Bold)
	verifiedBadge  = color.New(color.FgGreen)
	pendingBadge   = color.New(color.FgYellow)
	labelStyle     = color.New(color.Faint)
)

// renderOutcome prints the verdict banner followed by the result fields.
func renderOutcome(w io.Writer, url string, result classify.CheckResult) {
	if result.IsPhishing {
		phishingBanner.Fprintln(w, "PHISHING DETECTED")
	} else {
		safeBanner.Fprintln(w, "URL SECURE")
	}

	field := func(label, value string) {
		labelStyle.Fprintf(w, "  %-11s ", label+":")
		fmt.Fprintln(w, value)
	}

	field("URL", url)
	field("Confidence", fmt.Sprintf("%d%%", result.Confidence))

	labelStyle.Fprintf(w, "  %-11s ", "Status:")
	if result.Verified {
		verifiedBadge.Fprintln(w, "Verified")
	} else {
		pendingBadge.Fprintln(w, "Pending")
	}

	if result.Target != "" {
		field("Target", result.Target)
	}
	if result.Details != "" {
		field("Details", result.Details)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
