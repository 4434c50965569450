package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinNetworks(t *testing.T) {
	assert.Equal(t, []NetworkID{Mainnet, Testnet}, KnownNetworks())

	for _, id := range KnownNetworks() {
		n, err := BuiltinNetwork(id)
		require.NoError(t, err)
		assert.Equal(t, id, n.ID)
		assert.NotEmpty(t, n.RPCURL)
		assert.NotEmpty(t, n.Contracts.Oracle)
		assert.NotEmpty(t, n.Contracts.Voting)
		assert.NotEmpty(t, n.Contracts.VotingToken)
		assert.NotEmpty(t, n.CurrencyIDs())
	}

	_, err := BuiltinNetwork("devnet")
	assert.ErrorContains(t, err, "unknown network")
}

func TestBuiltinNetworkIsACopy(t *testing.T) {
	a, err := BuiltinNetwork(Testnet)
	require.NoError(t, err)
	a.Currencies["fake.testnet"] = Currency{Symbol: "FAKE"}
	a.Contracts.Oracle = "changed"

	b, err := BuiltinNetwork(Testnet)
	require.NoError(t, err)
	_, ok := b.Currency("fake.testnet")
	assert.False(t, ok)
	assert.NotEqual(t, "changed", b.Contracts.Oracle)
}

func TestFindCurrencyBySymbol(t *testing.T) {
	n, err := BuiltinNetwork(Mainnet)
	require.NoError(t, err)

	id, ok := n.FindCurrencyBySymbol("USDC")
	require.True(t, ok)
	assert.Equal(t, "usdc.near", id)

	c, ok := n.Currency(id)
	require.True(t, ok)
	assert.Equal(t, int32(6), c.Decimals)

	_, ok = n.FindCurrencyBySymbol("DAI")
	assert.False(t, ok)
}

func TestNetworkOverrideApply(t *testing.T) {
	n, err := BuiltinNetwork(Testnet)
	require.NoError(t, err)
	voting := n.Contracts.Voting

	NetworkOverride{
		RPCURL:            "http://localhost:3030",
		Contracts:         &Contracts{Oracle: "my-oracle.testnet"},
		Currencies:        map[string]Currency{"dai.testnet": {Symbol: "DAI", Decimals: 18}},
		VotingTokenSymbol: "vNEST",
	}.Apply(n)

	assert.Equal(t, "http://localhost:3030", n.RPCURL)
	assert.Equal(t, "my-oracle.testnet", n.Contracts.Oracle)
	assert.Equal(t, voting, n.Contracts.Voting, "unset contract ids are kept")
	assert.Equal(t, "vNEST", n.VotingTokenSymbol)
	assert.Equal(t, int32(24), n.VotingTokenDecimals)
	_, ok := n.Currency("dai.testnet")
	assert.True(t, ok)
	_, ok = n.FindCurrencyBySymbol("USDC")
	assert.True(t, ok, "built-in currencies are kept")
}

func TestLocalConfigKeys(t *testing.T) {
	c := DefaultLocalConfig()
	assert.Equal(t, string(DefaultNetworkID), c.Get(ConfigKeyNetwork))

	c.Set(ConfigKeyAccount, "alice.near")
	assert.Equal(t, "alice.near", c.Get(ConfigKeyAccount))

	assert.Equal(t, ConfigKeySignerURL, NormalizeConfigKey("signer"))
	assert.True(t, IsValidConfigKey("signer"))
	assert.True(t, IsValidConfigKey("store"))
	assert.False(t, IsValidConfigKey("namespace"))
}

func TestValidateAccountID(t *testing.T) {
	valid := []string{"alice.near", "oracle-v2.testnet", "a1", "bob_smith.near", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"}
	for _, id := range valid {
		assert.NoError(t, ValidateAccountID(id), id)
	}

	invalid := []string{"a", "Alice.near", ".alice", "alice.", "al..ice", "alice near", "alice@near", strings.Repeat("a", 65)}
	for _, id := range invalid {
		assert.Error(t, ValidateAccountID(id), id)
	}
}
