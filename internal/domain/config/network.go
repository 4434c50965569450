package config

import (
	"fmt"
	"sort"
)

// NetworkID selects a deployment of the protocol contracts.
type NetworkID string

const (
	Mainnet NetworkID = "mainnet"
	Testnet NetworkID = "testnet"
)

// DefaultNetworkID is used when nothing else is configured.
const DefaultNetworkID = Testnet

// Contracts are the protocol's contract account ids on one network.
type Contracts struct {
	Oracle              string `toml:"oracle" json:"oracle" yaml:"oracle"`
	Voting              string `toml:"voting" json:"voting" yaml:"voting"`
	VotingToken         string `toml:"voting_token" json:"voting_token" yaml:"voting_token"`
	Finder              string `toml:"finder" json:"finder" yaml:"finder"`
	Store               string `toml:"store" json:"store" yaml:"store"`
	Registry            string `toml:"registry" json:"registry" yaml:"registry"`
	IdentifierWhitelist string `toml:"identifier_whitelist" json:"identifier_whitelist" yaml:"identifier_whitelist"`
	SlashingLibrary     string `toml:"slashing_library" json:"slashing_library" yaml:"slashing_library"`
}

// Currency is display metadata for a bond token.
type Currency struct {
	Symbol   string `toml:"symbol" json:"symbol" yaml:"symbol"`
	Decimals int32  `toml:"decimals" json:"decimals" yaml:"decimals"`
}

// Network is the static, read-only configuration for one network.
type Network struct {
	ID                  NetworkID           `json:"id" yaml:"id"`
	RPCURL              string              `json:"rpc_url" yaml:"rpc_url"`
	IndexerURL          string              `json:"indexer_url" yaml:"indexer_url"`
	Contracts           Contracts           `json:"contracts" yaml:"contracts"`
	Currencies          map[string]Currency `json:"currencies" yaml:"currencies"`
	VotingTokenSymbol   string              `json:"voting_token_symbol" yaml:"voting_token_symbol"`
	VotingTokenDecimals int32               `json:"voting_token_decimals" yaml:"voting_token_decimals"`
}

const defaultIndexerURL = "http://127.0.0.1:3001"

var builtinNetworks = map[NetworkID]Network{
	Mainnet: {
		ID:         Mainnet,
		RPCURL:     "https://rpc.mainnet.near.org",
		IndexerURL: defaultIndexerURL,
		Contracts: Contracts{
			Oracle:              "nest-oracle.near",
			Voting:              "nest-voting.near",
			VotingToken:         "nest-token.near",
			Finder:              "nest-finder.near",
			Store:               "nest-store.near",
			Registry:            "nest-registry.near",
			IdentifierWhitelist: "nest-identifiers.near",
			SlashingLibrary:     "nest-slashing.near",
		},
		Currencies: map[string]Currency{
			"usdc.near": {Symbol: "USDC", Decimals: 6},
			"wrap.near": {Symbol: "wNEAR", Decimals: 24},
		},
		VotingTokenSymbol:   "NEST",
		VotingTokenDecimals: 24,
	},
	Testnet: {
		ID:         Testnet,
		RPCURL:     "https://test.rpc.fastnear.com",
		IndexerURL: defaultIndexerURL,
		Contracts: Contracts{
			Oracle:              "oracle7-260215a.testnet",
			Voting:              "nest-voting-3.testnet",
			VotingToken:         "nest-token-1.testnet",
			Finder:              "nest-finder-1.testnet",
			Store:               "nest-store-1.testnet",
			Registry:            "nest-registry-1.testnet",
			IdentifierWhitelist: "nest-identifiers-1.testnet",
			SlashingLibrary:     "nest-slashing-1.testnet",
		},
		Currencies: map[string]Currency{
			"3e2210e1184b45b64c8a434c0a7e7b23cc04ea7eb7a6c3c32520d03d4afcb8af": {Symbol: "USDC", Decimals: 6},
			"wrap.testnet": {Symbol: "wNEAR", Decimals: 24},
		},
		VotingTokenSymbol:   "NEST",
		VotingTokenDecimals: 24,
	},
}

// BuiltinNetwork returns a copy of the built-in configuration for id.
func BuiltinNetwork(id NetworkID) (*Network, error) {
	n, ok := builtinNetworks[id]
	if !ok {
		return nil, fmt.Errorf("unknown network %q (known: %v)", id, KnownNetworks())
	}
	currencies := make(map[string]Currency, len(n.Currencies))
	for k, v := range n.Currencies {
		currencies[k] = v
	}
	n.Currencies = currencies
	return &n, nil
}

// KnownNetworks lists the built-in network ids.
func KnownNetworks() []NetworkID {
	ids := make([]NetworkID, 0, len(builtinNetworks))
	for id := range builtinNetworks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Currency looks up bond token metadata.
func (n *Network) Currency(contractID string) (Currency, bool) {
	c, ok := n.Currencies[contractID]
	return c, ok
}

// CurrencyIDs returns the configured bond tokens in stable order.
func (n *Network) CurrencyIDs() []string {
	ids := make([]string, 0, len(n.Currencies))
	for id := range n.Currencies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindCurrencyBySymbol resolves a symbol such as "USDC" to its contract id.
func (n *Network) FindCurrencyBySymbol(symbol string) (string, bool) {
	for _, id := range n.CurrencyIDs() {
		if n.Currencies[id].Symbol == symbol {
			return id, true
		}
	}
	return "", false
}
