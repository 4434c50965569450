package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// AssertionsRenderer renders assertion listings and details
type AssertionsRenderer struct {
	out     io.Writer
	network *config.Network
	now     time.Time
}

// NewAssertionsRenderer creates a new assertions renderer
func NewAssertionsRenderer(out io.Writer, network *config.Network, now time.Time) *AssertionsRenderer {
	return &AssertionsRenderer{out: out, network: network, now: now}
}

// RenderList renders one page of assertions as a table.
func (r *AssertionsRenderer) RenderList(result *usecase.ListAssertionsResult) error {
	if len(result.Assertions) == 0 {
		fmt.Fprintln(r.out, "No assertions found")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"ID", "Claim", "Status", "Bond", "Asserter", "Expires", "Actions"})
	for _, v := range result.Assertions {
		a := v.Assertion
		t.AppendRow(table.Row{
			idStyle.Sprint(ShortHex(a.ID.Hex())),
			truncate(ClaimText(a.Claim), 40),
			ColoredStatus(v.Status),
			FormatAmount(r.network, a.Currency, a.Bond),
			accountStyle.Sprint(ShortAccount(a.Asserter)),
			r.expiry(a),
			actionStyle.Sprint(joinActions(v.Actions)),
		})
	}
	t.Render()

	fmt.Fprintln(r.out, timestampStyle.Sprintf("Page %d · %d of %d assertions", result.Page, len(result.Assertions), result.Total))
	return nil
}

// RenderDetail renders one assertion with its oracle and DVM state.
func (r *AssertionsRenderer) RenderDetail(d *usecase.AssertionDetail) error {
	a := d.Assertion
	fmt.Fprintln(r.out, headerStyle.Sprintf("Assertion %s", a.ID.Hex()))
	fmt.Fprintln(r.out)

	keyValue(r.out, "Claim", ClaimText(a.Claim))
	keyValue(r.out, "Status", ColoredStatus(d.Status))
	keyValue(r.out, "Asserter", accountStyle.Sprint(a.Asserter))
	if a.Disputer != "" {
		keyValue(r.out, "Disputer", accountStyle.Sprint(a.Disputer))
	}
	keyValue(r.out, "Bond", amountStyle.Sprint(FormatAmount(r.network, a.Currency, a.Bond)))
	keyValue(r.out, "Identifier", domain.DecodeForDisplay(a.Identifier))
	keyValue(r.out, "Expires", fmt.Sprintf("%s (%s)", formatTime(a.ExpirationTime()), FormatRemaining(a.ExpirationTime(), r.now)))
	if a.CallbackRecipient != "" {
		keyValue(r.out, "Callback", a.CallbackRecipient)
	}
	if a.EscalationManager != "" {
		keyValue(r.out, "Escalation", a.EscalationManager)
	}
	if a.BondRecipient != "" {
		keyValue(r.out, "Bond paid to", accountStyle.Sprint(a.BondRecipient))
	}

	source := "indexer"
	if d.OracleSynced {
		source = "oracle"
	}
	keyValue(r.out, "Settlement", fmt.Sprintf("settled=%t pending=%t in_flight=%t %s",
		a.Settled, a.SettlementPending, a.SettlementInFlight, timestampStyle.Sprintf("(%s)", source)))
	if a.SettlementPending && !a.Settled {
		fmt.Fprintln(r.out, "  "+FormatWarning("Payout in progress"))
	}

	if d.RequestID != nil {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, headerStyle.Sprint("DVM"))
		keyValue(r.out, "Request", d.RequestID.Hex())
		if d.Phase != nil {
			phase := phaseColor(d.Phase.Phase).Sprint(d.Phase.Phase.Label())
			if d.Phase.Remaining > 0 {
				phase += timestampStyle.Sprintf(" (%s left)", FormatDuration(d.Phase.Remaining))
			}
			keyValue(r.out, "Phase", phase)
		}
		if d.Request != nil && d.Request.ResolvedPrice != nil {
			outcome := "NO"
			if d.Request.ResolvedTrue() {
				outcome = "YES"
			}
			keyValue(r.out, "Resolved", fmt.Sprintf("%s (%s)", outcome, *d.Request.ResolvedPrice))
		}
	}

	if len(d.Actions) > 0 {
		fmt.Fprintln(r.out)
		keyValue(r.out, "Actions", actionStyle.Sprint(joinActions(d.Actions)))
	}
	return nil
}

func (r *AssertionsRenderer) expiry(a *domain.Assertion) string {
	if rem := a.TimeRemaining(r.now); rem > 0 {
		return FormatDuration(rem)
	}
	return timestampStyle.Sprint(a.ExpirationTime().UTC().Format("2006-01-02 15:04"))
}

func joinActions[T ~string](actions []T) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
