package domain

import (
	"encoding/json"
	"strconv"
)

// Gas is a NEAR gas amount.
type Gas uint64

// TGas is one teragas.
const TGas Gas = 1_000_000_000_000

// String returns the decimal form wallets expect.
func (g Gas) String() string {
	return strconv.FormatUint(uint64(g), 10)
}

// MarshalJSON encodes gas as a decimal string.
func (g Gas) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// Deposits attached to calls, in yoctoNEAR.
const (
	NoDeposit        = "0"
	OneYocto         = "1"
	StorageDepositFT = "10000000000000000000000" // 0.01 NEAR
)

// FunctionCall is everything a wallet needs to sign one state transition.
type FunctionCall struct {
	ContractID string `json:"contract_id"`
	Method     string `json:"method"`
	Args       any    `json:"args"`
	Gas        Gas    `json:"gas"`
	Deposit    string `json:"deposit"`
}

// ArgsJSON returns the serialized arguments.
func (c FunctionCall) ArgsJSON() ([]byte, error) {
	if c.Args == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Args)
}

// TxOutcome is what the wallet reports back after submitting a call.
type TxOutcome struct {
	TransactionHash string          `json:"transaction_hash"`
	SignerID        string          `json:"signer_id,omitempty"`
	ReturnValue     json.RawMessage `json:"return_value,omitempty"`
	Logs            []string        `json:"logs,omitempty"`
	DryRun          bool            `json:"dry_run,omitempty"`
}
