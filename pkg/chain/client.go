// Package chain reads EdgePunks token metadata from the collection contract.
//
// The contract is an Indelible Labs ERC-721 that stores everything on-chain:
// tokenURI returns a base64 data URL of a JSON document, and that document
// carries the layered artwork SVG as another data URL under svg_image_data.
//
//	c, err := chain.Dial(ctx, os.Getenv("WEB3_RPC_URL"), chain.DefaultContract)
//	meta, err := c.Metadata(ctx, "7")
//	svg, err := meta.SVG()
package chain

import (
	"context"
	stderrors "errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/edgepunks/edgepunks/pkg/cache"
	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/httputil"
	"github.com/edgepunks/edgepunks/pkg/observability"
)

// DefaultContract is the EdgePunks collection on Ethereum mainnet.
const DefaultContract = "0x83921cb2bdfe8f70aa2988a20dd8b91c197b04b9"

// CallGas is the gas allowance for tokenURI. Rendering the metadata on-chain
// is expensive, and eth_call caps it at the node's default otherwise.
const CallGas = 300_000_000

const tokenURIABI = `[{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}]`

var erc721ABI = mustParseABI(tokenURIABI)

func mustParseABI(def string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return a
}

// Client calls tokenURI on one contract.
type Client struct {
	caller   ethereum.ContractCaller
	contract common.Address
	limiter  *rate.Limiter
	cache    cache.Cache
	ttl      time.Duration
	attempts int
	delay    time.Duration
	close    func()
}

// Option configures a [Client].
type Option func(*Client)

// WithCache stores tokenURI results in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
			cl.ttl = ttl
		}
	}
}

// WithRateLimit caps outgoing calls at rps per second. Zero or less disables
// the limit.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			cl.limiter = nil
		}
	}
}

// WithRetry sets the retry budget for transient RPC failures.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(cl *Client) {
		cl.attempts = attempts
		cl.delay = delay
	}
}

// ValidateAddress checks that s is a 20-byte hex address.
func ValidateAddress(s string) error {
	if !common.IsHexAddress(s) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid contract address %q", s)
	}
	return nil
}

// NewClient wraps an existing caller such as an *ethclient.Client or a
// simulated backend.
func NewClient(caller ethereum.ContractCaller, contract string, opts ...Option) (*Client, error) {
	if err := ValidateAddress(contract); err != nil {
		return nil, err
	}
	c := &Client{
		caller:   caller,
		contract: common.HexToAddress(contract),
		cache:    cache.NewNullCache(),
		ttl:      cache.DefaultTTL,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dial connects to the JSON-RPC endpoint at rpcURL.
func Dial(ctx context.Context, rpcURL, contract string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(rpcURL); err != nil {
		return nil, err
	}
	rc, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(httputil.NewClient("edgepunks", 0)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "dial %s", redact(rpcURL))
	}
	c, err := NewClient(ethclient.NewClient(rc), contract, opts...)
	if err != nil {
		rc.Close()
		return nil, err
	}
	c.close = rc.Close
	return c, nil
}

// Close releases the RPC connection opened by [Dial].
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

// Contract returns the checksummed contract address.
func (c *Client) Contract() string { return c.contract.Hex() }

// TokenURI returns the raw tokenURI string for id.
func (c *Client) TokenURI(ctx context.Context, id string) (string, error) {
	if err := errors.ValidateTokenID(id); err != nil {
		return "", err
	}

	key := cache.TokenKey("tokenuri", c.contract.Hex(), id)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "tokenuri")
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "tokenuri")

	tokenID, err := tokenIDArg(id)
	if err != nil {
		return "", err
	}
	input, err := erc721ABI.Pack("tokenURI", tokenID)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "pack tokenURI(%s)", id)
	}
	msg := ethereum.CallMsg{To: &c.contract, Gas: CallGas, Data: input}

	start := time.Now()
	observability.Chain().OnCall(ctx, "tokenURI", id)
	var out []byte
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		var callErr error
		out, callErr = c.caller.CallContract(ctx, msg, nil)
		return classify(ctx, callErr)
	})
	observability.Chain().OnCallComplete(ctx, "tokenURI", id, time.Since(start), err)
	if err != nil {
		return "", callError(ctx, err, id)
	}

	values, err := erc721ABI.Unpack("tokenURI", out)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "unpack tokenURI(%s)", id)
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "tokenURI(%s) returned %T", id, values[0])
	}

	if err := c.cache.Set(ctx, key, []byte(uri), c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "tokenuri", len(uri))
	}
	return uri, nil
}

// Metadata fetches and decodes the metadata document of id.
func (c *Client) Metadata(ctx context.Context, id string) (*Metadata, error) {
	uri, err := c.TokenURI(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := ParseMetadata(uri)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "token %s", id)
	}
	return m, nil
}

// classify marks transport failures as retryable. JSON-RPC errors such as
// reverts come from the node itself and are returned as they are.
func classify(ctx context.Context, err error) error {
	if err == nil || ctx.Err() != nil {
		return err
	}
	var httpErr rpc.HTTPError
	if stderrors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500 {
			return httputil.Retryable(err)
		}
		return err
	}
	var rpcErr rpc.Error
	if stderrors.As(err, &rpcErr) {
		return err
	}
	return httputil.Retryable(err)
}

func callError(ctx context.Context, err error, id string) error {
	if ctx.Err() != nil {
		return err
	}
	if strings.Contains(err.Error(), "revert") {
		return errors.Wrap(errors.ErrCodeNotFound, err, "tokenURI(%s) reverted", id)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "tokenURI(%s)", id)
}

// redact drops the path and query of an RPC URL, which usually hold an API key.
func redact(rpcURL string) string {
	scheme, rest, ok := strings.Cut(rpcURL, "://")
	if !ok {
		return "<rpc>"
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host
}

// tokenIDArg converts a decimal token id to the uint256 call argument.
func tokenIDArg(id string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(id, 10)
	if !ok || n.Sign() < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "token id %q is not a non-negative integer", id)
	}
	return n, nil
}
