package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
)

// Describe turns an error into the message printed to the user
func Describe(err error) string {
	var conflict *billing.ConflictError
	if errors.As(err, &conflict) {
		return fmt.Sprintf("open invoice exists: #%d for %s is still a draft (see 'jumplog invoices show %d')",
			conflict.Existing.InvoiceNumber, conflict.Existing.DropZone, conflict.Existing.InvoiceNumber)
	}

	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		var b strings.Builder
		b.WriteString("invalid input:")
		for _, name := range names {
			fmt.Fprintf(&b, "\n  %s %s", flagName(name), fields[name])
		}
		return b.String()
	}

	return "error: " + err.Error()
}

// flagName maps a jump field to the flag that sets it
func flagName(field string) string {
	switch field {
	case "JumpNumber":
		return "--number"
	case "DropZone":
		return "--dz"
	case "JumpType":
		return "--type"
	case "ExitAltitude":
		return "--exit"
	case "DeploymentAltitude":
		return "--deploy"
	case "FreefallSeconds":
		return "--freefall"
	case "InvoiceItems":
		return "--services"
	}
	return strings.ToLower(field)
}

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch s {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	default:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// splitList splits a comma separated flag value
func splitList(s string) []string {
	return domain.NormalizeServices(strings.Split(s, ","))
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
