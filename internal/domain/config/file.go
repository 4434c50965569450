package config

// FileConfig is the optional nest.toml
type FileConfig struct {
	Network  string                     `toml:"network"`
	Networks map[string]NetworkOverride `toml:"networks"`
}

// NetworkOverride replaces parts of a built-in network, or defines a new one.
type NetworkOverride struct {
	RPCURL              string              `toml:"rpc_url"`
	IndexerURL          string              `toml:"indexer_url"`
	Contracts           *Contracts          `toml:"contracts"`
	Currencies          map[string]Currency `toml:"currencies"`
	VotingTokenSymbol   string              `toml:"voting_token_symbol"`
	VotingTokenDecimals int32               `toml:"voting_token_decimals"`
}

// Apply merges the override into n. Empty fields keep n's values; a
// contracts table replaces only the ids it sets.
func (o NetworkOverride) Apply(n *Network) {
	if o.RPCURL != "" {
		n.RPCURL = o.RPCURL
	}
	if o.IndexerURL != "" {
		n.IndexerURL = o.IndexerURL
	}
	if o.Contracts != nil {
		mergeString(&n.Contracts.Oracle, o.Contracts.Oracle)
		mergeString(&n.Contracts.Voting, o.Contracts.Voting)
		mergeString(&n.Contracts.VotingToken, o.Contracts.VotingToken)
		mergeString(&n.Contracts.Finder, o.Contracts.Finder)
		mergeString(&n.Contracts.Store, o.Contracts.Store)
		mergeString(&n.Contracts.Registry, o.Contracts.Registry)
		mergeString(&n.Contracts.IdentifierWhitelist, o.Contracts.IdentifierWhitelist)
		mergeString(&n.Contracts.SlashingLibrary, o.Contracts.SlashingLibrary)
	}
	if n.Currencies == nil {
		n.Currencies = make(map[string]Currency)
	}
	for id, c := range o.Currencies {
		n.Currencies[id] = c
	}
	if o.VotingTokenSymbol != "" {
		n.VotingTokenSymbol = o.VotingTokenSymbol
	}
	if o.VotingTokenDecimals != 0 {
		n.VotingTokenDecimals = o.VotingTokenDecimals
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
