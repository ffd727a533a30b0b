package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/samber/mo"

	"github.com/uhyunpark/hyperarb/pkg/client"
	"github.com/uhyunpark/hyperarb/pkg/crypto"
	"github.com/uhyunpark/hyperarb/pkg/exchange"
	"github.com/uhyunpark/hyperarb/pkg/market"
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	coin := flag.String("coin", "ETH", "market name or exchange coin, e.g. ETH or UETH")
	kind := flag.String("kind", "perp", "perp or spot")
	buy := flag.Bool("buy", true, "buy (true) or sell (false)")
	mark := flag.Float64("mark", 0, "mark price; the limit is placed past it by -slippage")
	amount := flag.Float64("amount", 0, "order size in base units, or USDC with -notional")
	notional := flag.Bool("notional", false, "treat -amount as a USDC notional")
	reduceOnly := flag.Bool("reduce-only", false, "set the reduce-only flag")
	slippage := flag.Float64("slippage", exchange.DefaultSlippage, "fractional slippage applied to -mark")
	nonce := flag.Uint64("nonce", 0, "nonce in ms (default: now)")
	expiry := flag.Duration("expiry", exchange.DefaultExpiryWindow, "expiresAfter window past the nonce")
	source := flag.String("source", crypto.SourceMainnet, `agent source: "a" mainnet, "b" testnet`)
	vault := flag.String("vault", "", "optional vault address")
	envPath := flag.String("env", "", "load PRIVATE_KEY from this .env file")
	send := flag.Bool("send", false, "POST the payload to -url")
	url := flag.String("url", client.MainnetURL, "exchange base url used with -send")
	flag.Parse()

	// The key only ever comes from the environment so it stays out of shell history.
	if *envPath != "" {
		_ = godotenv.Load(*envPath)
	} else {
		_ = godotenv.Load()
	}
	key := os.Getenv("PRIVATE_KEY")
	if key == "" {
		fail("PRIVATE_KEY must be set")
	}
	if *source != crypto.SourceMainnet && *source != crypto.SourceTestnet {
		fail("source must be %q or %q", crypto.SourceMainnet, crypto.SourceTestnet)
	}

	k := market.Perp
	switch *kind {
	case "perp":
	case "spot":
		k = market.Spot
	default:
		fail("kind must be perp or spot, got %q", *kind)
	}
	token, err := market.DefaultRegistry().Lookup(k, *coin)
	if err != nil {
		fail("%v", err)
	}

	vaultOpt := mo.None[common.Address]()
	if *vault != "" {
		if err := crypto.ValidateAddress(*vault); err != nil {
			fail("vault: %v", err)
		}
		vaultOpt = mo.Some(common.HexToAddress(*vault))
	}

	act, err := exchange.NewBuilder(*slippage).Action(exchange.OrderParams{
		Token:            token,
		IsBuy:            *buy,
		MarkPx:           *mark,
		Amount:           *amount,
		AmountIsNotional: *notional,
		ReduceOnly:       *reduceOnly,
	})
	if err != nil {
		fail("build order: %v", err)
	}

	n := *nonce
	if n == 0 {
		n = uint64(time.Now().UnixMilli())
	}
	env := exchange.SigningEnvelope{
		Action:       act,
		Nonce:        n,
		ExpiresAfter: n + uint64(expiry.Milliseconds()),
		VaultAddress: vaultOpt,
	}
	cid, err := env.ConnectionID()
	if err != nil {
		fail("hash: %v", err)
	}
	payload, err := env.Sign(key, *source)
	if err != nil {
		fail("sign: %v", err)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fail("marshal: %v", err)
	}

	fmt.Printf("Market: %s %s (asset %d)\n", token.Name, token.Kind, token.Asset())
	fmt.Printf("Connection ID: %s\n\n", cid.Hex())
	fmt.Println("Signed Payload (JSON):")
	fmt.Println(string(out))
	fmt.Println()

	signer, err := exchange.RecoverSigner(payload, *source)
	if err != nil {
		fail("verify: %v", err)
	}
	keyAddr, err := crypto.AddressFromKeyHex(key)
	if err != nil {
		fail("%v", err)
	}
	ok, err := exchange.VerifySigner(payload, *source, keyAddr)
	if err != nil || !ok {
		fail("signature does not verify for %s", keyAddr.Hex())
	}
	fmt.Printf("Signer: %s\n", signer.Hex())

	if !*send {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	resp, err := client.New(*url).PlaceOrder(ctx, payload)
	if err != nil {
		fail("submit: %v", err)
	}
	statuses, err := resp.Statuses()
	if err != nil {
		fail("%v", err)
	}
	for i, st := range statuses {
		b, _ := json.Marshal(st)
		fmt.Printf("Order %d: %s\n", i, b)
	}
}
