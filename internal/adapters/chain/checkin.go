package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
)

var ErrInsufficientBalance = errors.New("insufficient balance for check-in transaction")

type CheckInConfig struct {
	RPCURL          string
	Contract        string
	Method          string
	GasLimit        uint64
	MaxGasPriceGwei int64
	ReceiptTimeout  time.Duration
}

// Backend is the subset of ethclient.Client used to send one contract call.
type Backend interface {
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type CheckInSubmitter struct {
	cfg  CheckInConfig
	dial func(ctx context.Context, rawURL string) (Backend, error)
}

var _ ports.CheckInSubmitter = (*CheckInSubmitter)(nil)

func NewCheckInSubmitter(cfg CheckInConfig) *CheckInSubmitter {
	return &CheckInSubmitter{cfg: cfg, dial: dialEthClient}
}

func dialEthClient(ctx context.Context, rawURL string) (Backend, error) {
	return ethclient.DialContext(ctx, rawURL)
}

func (c *CheckInSubmitter) SubmitCheckIn(ctx context.Context, account domain.Account) (string, error) {
	if c.cfg.RPCURL == "" || c.cfg.Contract == "" || c.cfg.Method == "" {
		return "", errors.New("check-in contract is not configured")
	}

	key, err := parsePrivateKey(account.PrivateKey)
	if err != nil {
		return "", err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	callData, err := EncodeCall(c.cfg.Method, from)
	if err != nil {
		return "", err
	}

	backend, err := c.dial(ctx, c.cfg.RPCURL)
	if err != nil {
		return "", fmt.Errorf("dial rpc: %w", err)
	}
	if closer, ok := backend.(interface{ Close() }); ok {
		defer closer.Close()
	}

	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	if c.cfg.MaxGasPriceGwei > 0 {
		maxGasPrice := new(big.Int).Mul(big.NewInt(c.cfg.MaxGasPriceGwei), big.NewInt(params.GWei))
		if gasPrice.Cmp(maxGasPrice) > 0 {
			gasPrice = maxGasPrice
		}
	}

	gasLimit := c.cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = 200_000
	}

	balance, err := backend.BalanceAt(ctx, from, nil)
	if err != nil {
		return "", fmt.Errorf("load balance: %w", err)
	}
	cost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	if balance.Cmp(cost) < 0 {
		return "", fmt.Errorf("%w: have %s wei, need %s wei", ErrInsufficientBalance, balance, cost)
	}

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("load nonce: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("load chain id: %w", err)
	}

	to := common.HexToAddress(c.cfg.Contract)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     callData,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := backend.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	waitCtx := ctx
	if c.cfg.ReceiptTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, backend, signedTx)
	if err != nil {
		return "", fmt.Errorf("wait for receipt %s: %w", signedTx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("transaction %s reverted", signedTx.Hash().Hex())
	}

	return signedTx.Hash().Hex(), nil
}

// EncodeCall builds call data for a method signature taking either no
// arguments or a single address, which is filled with the sender.
func EncodeCall(method string, sender common.Address) ([]byte, error) {
	signature := strings.ReplaceAll(strings.TrimSpace(method), " ", "")
	open := strings.Index(signature, "(")
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		return nil, fmt.Errorf("invalid method signature %q", method)
	}

	selector := crypto.Keccak256([]byte(signature))[:4]
	switch args := signature[open+1 : len(signature)-1]; args {
	case "":
		return selector, nil
	case "address":
		return append(selector, common.LeftPadBytes(sender.Bytes(), 32)...), nil
	default:
		return nil, fmt.Errorf("unsupported method arguments %q", args)
	}
}
