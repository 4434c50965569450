package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nest-oracle/nest-cli/internal/domain"
)

// ErrorMessage maps domain errors to a one-line message for the terminal.
func ErrorMessage(err error) string {
	var (
		amountErr *domain.InvalidAmountError
		stakeErr  *domain.InsufficientStakeError
		remoteErr *domain.RemoteCallError
		codecErr  *domain.EncodingError
	)

	switch {
	case errors.Is(err, domain.ErrWalletNotConnected):
		return "No account connected: set one with --account or `nest config set account <id>`, and a signer with --signer-url"
	case errors.Is(err, domain.ErrNoCommitmentFound):
		return "No stored commitment for this vote on this machine; a vote can only be revealed where it was committed"
	case errors.As(err, &stakeErr):
		return fmt.Sprintf("Insufficient balance: requested %s, available %s", stakeErr.Requested, stakeErr.Available)
	case errors.As(err, &amountErr):
		return capitalize(amountErr.Error())
	case errors.As(err, &remoteErr):
		if remoteErr.Indeterminate {
			return fmt.Sprintf("%s did not confirm in time; the transaction may still land, check the explorer before retrying", remoteErr.Op)
		}
		return fmt.Sprintf("%s failed: %v", remoteErr.Op, remoteErr.Err)
	case errors.As(err, &codecErr):
		return capitalize(codecErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		return "Not found: " + err.Error()
	}
	return capitalize(err.Error())
}

// FormatError formats an error with the error icon
func FormatError(err error) string {
	var remoteErr *domain.RemoteCallError
	if errors.As(err, &remoteErr) && remoteErr.Indeterminate {
		return FormatWarning(ErrorMessage(err))
	}
	return errorStyle.Sprintf("❌ %s", ErrorMessage(err))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
