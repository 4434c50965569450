package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nest-oracle/nest-cli/internal/domain"
)

// requireAccount returns the connected account or ErrWalletNotConnected.
func requireAccount(w Wallet) (string, error) {
	account := w.SignedAccountID()
	if account == "" {
		return "", domain.ErrWalletNotConnected
	}
	return account, nil
}

// requireSigner is requireAccount for operations that submit a call; it
// fails before any call is built or local state is written.
func requireSigner(w Wallet) (string, error) {
	account, err := requireAccount(w)
	if err != nil {
		return "", err
	}
	if err := w.Ready(); err != nil {
		return "", err
	}
	return account, nil
}

// submit sends call through the wallet and wraps any failure as a RemoteCallError.
func submit(ctx context.Context, w Wallet, sink ProgressSink, op string, call domain.FunctionCall) (*domain.TxOutcome, error) {
	sink.OnProgress(ctx, ProgressEvent{
		Stage:   "submitting",
		Message: fmt.Sprintf("Submitting %s to %s", call.Method, call.ContractID),
		Spinner: true,
	})
	outcome, err := w.CallFunction(ctx, call)
	if err != nil {
		return nil, domain.NewRemoteCallError(op, err)
	}
	return outcome, nil
}

// resolveRequestID returns requestID when set, otherwise the DVM request the
// oracle opened for assertionID.
func resolveRequestID(ctx context.Context, viewer ContractViewer, assertionID domain.Bytes32, requestID *domain.Bytes32) (domain.Bytes32, error) {
	if requestID != nil {
		return *requestID, nil
	}
	id, err := viewer.GetDisputeRequest(ctx, assertionID)
	if err != nil {
		return domain.ZeroBytes32, fmt.Errorf("failed to look up dispute request: %w", err)
	}
	if id == nil {
		return domain.ZeroBytes32, fmt.Errorf("%w for assertion %s", domain.ErrNoDisputeRequest, assertionID.Hex())
	}
	return *id, nil
}

// isNotFound reports whether err means the entity does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
