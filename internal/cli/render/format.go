package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color styles shared by the renderers
var (
	headerStyle    = color.New(color.Bold, color.FgHiWhite)
	labelStyle     = color.New(color.Faint)
	idStyle        = color.New(color.FgWhite)
	accountStyle   = color.New(color.FgCyan)
	amountStyle    = color.New(color.FgHiWhite, color.Bold)
	timestampStyle = color.New(color.Faint)
	actionStyle    = color.New(color.FgMagenta)
	successStyle   = color.New(color.FgGreen)
	warningStyle   = color.New(color.FgYellow)
	errorStyle     = color.New(color.FgRed)
)

// displayDecimals caps the fraction digits shown for token amounts.
const displayDecimals = 4

var titleCaser = cases.Title(language.English)

// StatusLabel turns pending_settlement into "Pending Settlement".
func StatusLabel(s domain.AssertionStatus) string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

func statusColor(s domain.AssertionStatus) *color.Color {
	switch s {
	case domain.StatusActive:
		return color.New(color.FgGreen)
	case domain.StatusDisputed:
		return color.New(color.FgRed)
	case domain.StatusPendingSettlement:
		return color.New(color.FgYellow)
	case domain.StatusExpired:
		return color.New(color.FgBlue)
	case domain.StatusSettledTrue:
		return color.New(color.FgGreen, color.Bold)
	case domain.StatusSettledFalse:
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.Reset)
}

// ColoredStatus returns the colored status label.
func ColoredStatus(s domain.AssertionStatus) string {
	return statusColor(s).Sprint(StatusLabel(s))
}

func phaseColor(p domain.DvmPhase) *color.Color {
	switch p {
	case domain.PhaseCommit, domain.PhaseReveal:
		return color.New(color.FgGreen)
	case domain.PhaseCommitEnded, domain.PhaseRevealEnded:
		return color.New(color.FgYellow)
	case domain.PhaseResolved:
		return color.New(color.FgBlue)
	}
	return color.New(color.Faint)
}

// FormatAmount renders a smallest-unit amount of contractID with its symbol.
func FormatAmount(network *config.Network, contractID, raw string) string {
	if network != nil {
		if c, ok := network.Currency(contractID); ok {
			return domain.FormatTokenAmount(raw, c.Decimals, displayDecimals) + " " + c.Symbol
		}
		if contractID == network.Contracts.VotingToken {
			return domain.FormatTokenAmount(raw, network.VotingTokenDecimals, displayDecimals) + " " + network.VotingTokenSymbol
		}
	}
	return raw + " " + ShortAccount(contractID)
}

// FormatDuration renders d as "2d 3h", "4h 10m", "5m 2s" or "9s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatRemaining renders the time left until t, or "Expired".
func FormatRemaining(t, now time.Time) string {
	if !now.Before(t) {
		return "Expired"
	}
	return FormatDuration(t.Sub(now)) + " remaining"
}

// ShortAccount truncates long account ids: verylongaccountname123456.near → verylongacco...6.near
func ShortAccount(id string) string {
	const maxLength = 20
	if len(id) <= maxLength {
		return id
	}
	return id[:maxLength-8] + "..." + id[len(id)-6:]
}

// ShortHex shortens a 0x value to 0x1234…abcd.
func ShortHex(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:6] + "…" + h[len(h)-4:]
}

// ClaimText decodes a claim for display.
func ClaimText(claim domain.Bytes32) string {
	return domain.DecodeForDisplay(claim)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Box.PaddingRight = "  "
	return t
}

// keyValue prints an aligned "Label: value" line.
func keyValue(out io.Writer, label string, value any) {
	fmt.Fprintf(out, "  %s %v\n", labelStyle.Sprintf("%-14s", label+":"), value)
}

// JSON writes v as indented JSON.
func JSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warningStyle.Sprintf("⚠️  %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}
