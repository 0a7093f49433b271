// Package market consumes the GoalGuru PredictionMarket contract and
// carries the matchweek market catalog. The contract itself is an
// external collaborator; this package only invokes it.
package market

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/goalguru/walletauth/core"
	"github.com/goalguru/walletauth/ports"
)

// predictionMarketABI covers the two operations this module uses:
// reading a market and placing a prediction.
const predictionMarketABI = `[
	{"name":"markets","type":"function","stateMutability":"view",
	 "inputs":[{"name":"marketId","type":"uint256"}],
	 "outputs":[
		{"name":"question","type":"string"},
		{"name":"endTime","type":"uint256"},
		{"name":"yesPool","type":"uint256"},
		{"name":"noPool","type":"uint256"},
		{"name":"resolved","type":"bool"},
		{"name":"outcome","type":"uint8"}]},
	{"name":"predict","type":"function","stateMutability":"payable",
	 "inputs":[
		{"name":"marketId","type":"uint256"},
		{"name":"outcome","type":"uint8"}],
	 "outputs":[]}
]`

const (
	outcomeYes = 1
	outcomeNo  = 2
)

var weiPerNative = decimal.New(1, 18)

// EthMarket implements ports.Market against an EVM RPC endpoint.
type EthMarket struct {
	client   *ethclient.Client
	abi      abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
}

// NewEthMarket dials the RPC endpoint and prepares the contract binding.
// The key signs bet transactions; the chain id is auto-detected.
func NewEthMarket(ctx context.Context, rpcURL, contractAddress string, key *ecdsa.PrivateKey) (*EthMarket, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(predictionMarketABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("parse contract ABI: %w", err)
	}

	return &EthMarket{
		client:   client,
		abi:      parsed,
		contract: common.HexToAddress(contractAddress),
		key:      key,
		chainID:  chainID,
	}, nil
}

var _ ports.Market = (*EthMarket)(nil)

// ReadMarket returns the on-chain state of one market.
func (m *EthMarket) ReadMarket(ctx context.Context, id uint64) (core.Market, error) {
	data, err := m.abi.Pack("markets", new(big.Int).SetUint64(id))
	if err != nil {
		return core.Market{}, fmt.Errorf("pack markets call: %w", err)
	}

	raw, err := m.client.CallContract(ctx, callMsg(m.contract, data), nil)
	if err != nil {
		return core.Market{}, fmt.Errorf("call markets: %w", err)
	}

	out, err := m.abi.Unpack("markets", raw)
	if err != nil {
		return core.Market{}, fmt.Errorf("unpack markets result: %w", err)
	}

	return decodeMarket(id, out)
}

// decodeMarket maps the unpacked markets(...) return values onto the
// domain type. A malformed result is an error, never a panic.
func decodeMarket(id uint64, out []interface{}) (core.Market, error) {
	if len(out) != 6 {
		return core.Market{}, fmt.Errorf("unexpected markets result arity: %d", len(out))
	}

	question, _ := out[0].(string)
	endTime, ok := out[1].(*big.Int)
	if !ok || endTime == nil {
		return core.Market{}, fmt.Errorf("markets result has no endTime")
	}
	yesPool, _ := out[2].(*big.Int)
	noPool, _ := out[3].(*big.Int)
	resolved, _ := out[4].(bool)
	outcome, _ := out[5].(uint8)

	return core.Market{
		ID:       id,
		Question: question,
		EndTime:  endTime.Int64(),
		YesPool:  fromWei(yesPool),
		NoPool:   fromWei(noPool),
		Resolved: resolved,
		Outcome:  outcome,
	}, nil
}

// PlacePrediction submits a predict transaction staking amount (in the
// chain's native currency) on the chosen outcome.
func (m *EthMarket) PlacePrediction(ctx context.Context, marketID uint64, yes bool, amount decimal.Decimal) (string, error) {
	if m.key == nil {
		return "", fmt.Errorf("no signing key configured")
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("bet amount must be positive, got %s", amount)
	}

	outcome := uint8(outcomeNo)
	if yes {
		outcome = outcomeYes
	}

	data, err := m.abi.Pack("predict", new(big.Int).SetUint64(marketID), outcome)
	if err != nil {
		return "", fmt.Errorf("pack predict call: %w", err)
	}

	from := crypto.PubkeyToAddress(m.key.PublicKey)

	nonce, err := m.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := m.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	value := toWei(amount)
	to := m.contract

	gas, err := m.client.EstimateGas(ctx, estimateMsg(from, to, value, data))
	if err != nil {
		return "", fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas * 120 / 100,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(m.chainID), m.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := m.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	return signed.Hash().Hex(), nil
}

// Close releases the RPC connection.
func (m *EthMarket) Close() {
	m.client.Close()
}

func callMsg(to common.Address, data []byte) ethereum.CallMsg {
	return ethereum.CallMsg{To: &to, Data: data}
}

func estimateMsg(from, to common.Address, value *big.Int, data []byte) ethereum.CallMsg {
	return ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}
}

func fromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0).Div(weiPerNative)
}

func toWei(amount decimal.Decimal) *big.Int {
	return amount.Mul(weiPerNative).BigInt()
}
