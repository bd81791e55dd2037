package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vnykmshr/apiprobe/internal/suite"
	"github.com/vnykmshr/apiprobe/internal/util"
)

const (
	// MinRate is the minimum allowed rate (requests per second).
	MinRate = 0.1
	// WarnRate is the warning threshold for low rates.
	WarnRate = 1.0
)

// ValidateRateLimit clamps rates below MinRate and warns about slow pacing on w.
// Interactive sessions are asked to confirm rates below WarnRate; confirm is
// nil for non-interactive runs.
func ValidateRateLimit(rate *float64, w io.Writer, confirm io.Reader) error {
	// Rate of 0 means no pacing
	if *rate == 0 {
		return nil
	}

	if *rate < MinRate {
		fmt.Fprintf(w, "\nWARNING: Rate %.2f req/s is below minimum %.2f req/s\n", *rate, MinRate)
		fmt.Fprintf(w, "Adjusting to minimum rate of %.2f req/s\n\n", MinRate)
		*rate = MinRate
		return nil
	}

	if *rate < WarnRate {
		fmt.Fprintf(w, "\nWARNING: Low rate limit detected (%.2f req/s)\n", *rate)
		fmt.Fprintf(w, "- ~%.0f requests per minute\n", *rate*60)
		fmt.Fprintf(w, "- Performance samples will take a long time to complete\n\n")

		if confirm == nil {
			fmt.Fprintf(w, "Continuing in non-interactive mode...\n\n")
			return nil
		}

		fmt.Fprintf(w, "Do you want to continue with this rate? (y/N): ")
		response, err := bufio.NewReader(confirm).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			return fmt.Errorf("run canceled by user")
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

// ValidateTarget rejects private and loopback targets unless allowPrivateIPs is set,
// in which case it prints a warning box instead.
func ValidateTarget(baseURL string, allowPrivateIPs bool, w io.Writer) error {
	if err := util.ValidateBaseURL(baseURL, allowPrivateIPs); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	if allowPrivateIPs {
		if err := util.ValidateBaseURL(baseURL, false); err != nil {
			PrintWarningBox(w, "PRIVATE TARGET", []string{
				"Private address checks are disabled for this run.",
				"Target: " + util.SanitizeURLDefault(baseURL),
			})
		}
	}
	return nil
}

// ValidateSuiteTargets runs ValidateTarget over every suite base URL and
// absolute case URL, skipping the run base URL that was already checked.
func ValidateSuiteTargets(suites []*suite.Suite, checked string, allowPrivateIPs bool, w io.Writer) error {
	seen := map[string]bool{checked: true}
	for _, s := range suites {
		targets := []string{s.BaseURL}
		for _, c := range s.Cases {
			targets = append(targets, c.URL)
		}

		for _, target := range targets {
			if target == "" || seen[target] {
				continue
			}
			seen[target] = true
			if err := ValidateTarget(target, allowPrivateIPs, w); err != nil {
				return fmt.Errorf("suite %q: %w", s.Name, err)
			}
		}
	}
	return nil
}

// IsInteractiveTerminal checks if the program is running in an interactive terminal.
func IsInteractiveTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// Check if stdin is a character device (terminal) rather than a pipe or file
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
