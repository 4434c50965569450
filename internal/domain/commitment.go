package domain

import (
	"fmt"
	"math/big"
	"time"
)

// VoteCommitment is the locally held secret needed to reveal a committed vote.
// Until a reveal succeeds it is the only copy of the salt.
type VoteCommitment struct {
	// RequestID is the 0x-prefixed lowercase hex of the DVM request id.
	RequestID string `json:"request_id"`
	// AssertionID is the 0x-prefixed hex of the disputed assertion, for display.
	AssertionID string `json:"assertion_id"`
	// Price is the decimal i128 price that was hashed.
	Price      string  `json:"price"`
	Salt       Bytes32 `json:"salt"`
	CommitHash Bytes32 `json:"commit_hash"`
	// CommittedAt is unix milliseconds.
	CommittedAt int64 `json:"committed_at"`
}

// NewVoteCommitment hashes price and salt and assembles the record.
func NewVoteCommitment(requestID, assertionID Bytes32, price *big.Int, salt Bytes32, now time.Time) (*VoteCommitment, error) {
	hash, err := ComputeVoteHash(price, salt)
	if err != nil {
		return nil, err
	}
	return &VoteCommitment{
		RequestID:   requestID.Hex(),
		AssertionID: assertionID.Hex(),
		Price:       price.String(),
		Salt:        salt,
		CommitHash:  hash,
		CommittedAt: now.UnixMilli(),
	}, nil
}

// NormalizeRequestID returns the canonical store key for a request id.
func NormalizeRequestID(s string) (string, error) {
	if !IsValidBytes32(s) {
		return "", &EncodingError{Input: s, Reason: "request id must be 32 bytes of hex"}
	}
	b, err := ParseBytes32(s)
	if err != nil {
		return "", err
	}
	return b.Hex(), nil
}

// RequestIDBytes parses the stored request id.
func (c *VoteCommitment) RequestIDBytes() (Bytes32, error) {
	return ParseBytes32(c.RequestID)
}

// PriceInt parses the stored price.
func (c *VoteCommitment) PriceInt() (*big.Int, error) {
	return ParsePrice(c.Price)
}

// Vote reports the boolean vote the price stands for.
func (c *VoteCommitment) Vote() bool {
	p, err := c.PriceInt()
	if err != nil {
		return false
	}
	return p.Cmp(PriceTrue()) >= 0
}

// CommittedTime returns CommittedAt as a time.
func (c *VoteCommitment) CommittedTime() time.Time {
	return time.UnixMilli(c.CommittedAt)
}

// Verify recomputes the hash from price and salt.
func (c *VoteCommitment) Verify() error {
	price, err := c.PriceInt()
	if err != nil {
		return err
	}
	hash, err := ComputeVoteHash(price, c.Salt)
	if err != nil {
		return err
	}
	if hash != c.CommitHash {
		return fmt.Errorf("commitment for %s does not match its price and salt", c.RequestID)
	}
	return nil
}
