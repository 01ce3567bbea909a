package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"max.com/bsquote/pkg/nats"
	"max.com/bsquote/pkg/options"
	"max.com/bsquote/pkg/quote"
)

// 命令行单次定价，利率和波动率按百分比输入
//
//	bscalc -spot 100 -strike 110 -t 1 -rate 5 -vol 25 -kind call
//	bscalc -preset tech
//	bscalc -preset safe -nats nats://127.0.0.1:4222 -user 7
func main() {
	log.SetFlags(0)

	args, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}

	req, err := args.form.Request()
	if err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	if args.natsURL != "" {
		rec, err := quoteRemote(args)
		if err != nil {
			log.Fatalf("remote quote failed: %v", err)
		}
		fmt.Fprintf(os.Stdout, "Quote %d\n", rec.QuoteID)
		res := options.Result{
			Price:      rec.Price.InexactFloat64(),
			Intrinsic:  rec.Intrinsic.InexactFloat64(),
			TimeValue:  rec.TimeValue.InexactFloat64(),
			Moneyness:  rec.Moneyness,
			Assessment: rec.Assessment,
		}
		printResult(os.Stdout, rec.Request(), res)
		return
	}

	res, err := options.Evaluate(req)
	if err != nil {
		log.Fatalf("pricing failed: %v", err)
	}
	printResult(os.Stdout, req, res)
}

type cliArgs struct {
	form    options.Form
	natsURL string
	userID  int64
}

// 与 -preset 互斥的参数
var formFlags = map[string]bool{"spot": true, "strike": true, "t": true, "rate": true, "vol": true, "kind": true}

// parseArgs 未给出的数值参数为 NaN，由表单校验报 "This field is required"
func parseArgs(argv []string) (cliArgs, error) {
	fs := flag.NewFlagSet("bscalc", flag.ContinueOnError)
	spot := fs.Float64("spot", math.NaN(), "current price of the underlying (S)")
	strike := fs.Float64("strike", math.NaN(), "strike price (K)")
	expiry := fs.Float64("t", math.NaN(), "time to maturity in years (T)")
	rate := fs.Float64("rate", math.NaN(), "risk-free rate in percent")
	vol := fs.Float64("vol", math.NaN(), "volatility in percent")
	kind := fs.String("kind", "call", "option type: call or put")
	preset := fs.String("preset", "", "load example parameters: "+strings.Join(options.PresetNames(), ", "))
	natsURL := fs.String("nats", "", "quote through the service at this NATS URL instead of locally")
	userID := fs.Int64("user", 0, "user id recorded with a remote quote")
	if err := fs.Parse(argv); err != nil {
		return cliArgs{}, err
	}

	out := cliArgs{
		form:    options.Form{Spot: *spot, Strike: *strike, Expiry: *expiry, RatePct: *rate, VolPct: *vol, Kind: *kind},
		natsURL: *natsURL,
		userID:  *userID,
	}
	if *preset == "" {
		return out, nil
	}

	var explicit []string
	fs.Visit(func(f *flag.Flag) {
		if formFlags[f.Name] {
			explicit = append(explicit, "-"+f.Name)
		}
	})
	if len(explicit) > 0 {
		return cliArgs{}, fmt.Errorf("-preset cannot be combined with %s", strings.Join(explicit, ", "))
	}
	f, ok := options.Preset(*preset)
	if !ok {
		return cliArgs{}, fmt.Errorf("unknown preset %q", *preset)
	}
	out.form = f
	return out, nil
}

func quoteRemote(args cliArgs) (*quote.Record, error) {
	publisher, err := nats.NewPublisher(args.natsURL)
	if err != nil {
		return nil, err
	}
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return quote.RequestQuote(ctx, publisher, quote.NewInput(args.userID, args.form))
}

func printResult(w io.Writer, req options.Request, res options.Result) {
	fmt.Fprintf(w, "Estimated %s value: $%.2f\n", req.Kind, res.Price)
	fmt.Fprintf(w, "  Intrinsic value:  $%.2f\n", res.Intrinsic)
	fmt.Fprintf(w, "  Time value:       $%.2f\n", res.TimeValue)
	fmt.Fprintf(w, "  Moneyness (S/K):  %.3f\n", res.Moneyness)
	fmt.Fprintf(w, "  %s\n", options.Describe(req.Kind, res.Assessment))
}
