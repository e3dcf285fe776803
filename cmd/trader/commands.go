package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/assist-by/kestrel/internal/domain"
)

func balanceCommand() cli.Command {
	return cli.Command{
		Name:  "balance",
		Usage: "Get account balance",
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			balance, err := trader.AccountBalance(ctx)
			if err != nil {
				return fail(err)
			}

			printHeader("Account Balance")
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Total Wallet Balance\t%v USDT\n", balance["totalWalletBalance"])
			fmt.Fprintf(w, "Available Balance\t%v USDT\n", balance["availableBalance"])
			fmt.Fprintf(w, "Unrealized Profit\t%v USDT\n", balance["totalUnrealizedProfit"])
			return w.Flush()
		},
	}
}

func priceCommand() cli.Command {
	return cli.Command{
		Name:      "price",
		Usage:     "Get current price for a symbol",
		ArgsUsage: "<symbol>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fail(fmt.Errorf("symbol argument is required"))
			}
			symbol := c.Args().Get(0)

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			price, err := trader.CurrentPrice(ctx, symbol)
			if err != nil {
				return fail(err)
			}

			printSuccess("\n%s: $%s", strings.ToUpper(symbol), formatUSD(price))
			return nil
		},
	}
}

func positionsCommand() cli.Command {
	return cli.Command{
		Name:  "positions",
		Usage: "Get current positions",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "symbol, s",
				Usage: "trading symbol (optional)",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			positions, err := trader.PositionInfo(ctx, c.String("symbol"))
			if err != nil {
				return fail(err)
			}

			if len(positions) == 0 {
				printWarn("\nNo open positions")
				return nil
			}

			printHeader("Open Positions")
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Symbol\tSide\tAmount\tEntry Price\tMark Price\tPnL\tLeverage")
			for _, pos := range positions {
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
					pos["symbol"], pos["positionSide"], pos["positionAmt"],
					pos["entryPrice"], pos["markPrice"], pos["unRealizedProfit"],
					pos["leverage"])
			}
			return w.Flush()
		},
	}
}

func setLeverageCommand() cli.Command {
	return cli.Command{
		Name:      "set-leverage",
		Usage:     "Set leverage for a symbol",
		ArgsUsage: "<symbol> <leverage>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fail(fmt.Errorf("symbol and leverage arguments are required"))
			}
			symbol := c.Args().Get(0)
			leverage := c.Args().Get(1)

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			if _, err := trader.SetLeverage(ctx, symbol, leverage); err != nil {
				return fail(err)
			}

			printSuccess("\n✓ Leverage set to %sx for %s", leverage, strings.ToUpper(symbol))
			return nil
		},
	}
}

func marketCommand() cli.Command {
	return cli.Command{
		Name:      "market",
		Usage:     "Place a market order",
		ArgsUsage: "<symbol> <side> <quantity>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "reduce-only",
				Usage: "reduce only flag",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fail(fmt.Errorf("symbol, side and quantity arguments are required"))
			}
			symbol := c.Args().Get(0)
			side := c.Args().Get(1)
			quantity := c.Args().Get(2)
			reduceOnly := c.Bool("reduce-only")

			printWarn("\n=== Order Confirmation ===")
			fmt.Println("Type: MARKET")
			fmt.Printf("Symbol: %s\n", strings.ToUpper(symbol))
			fmt.Printf("Side: %s\n", strings.ToUpper(side))
			fmt.Printf("Quantity: %s\n", quantity)
			fmt.Printf("Reduce Only: %v\n", reduceOnly)

			if !confirm(c, "Do you want to place this order?") {
				printWarn("Order cancelled")
				return nil
			}

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			resp, err := trader.PlaceMarketOrder(ctx, symbol, side, quantity, reduceOnly)
			if err != nil {
				return fail(err)
			}

			printSuccess("\n✓ Market order placed successfully!")
			printOrderReceipt(resp)
			return nil
		},
	}
}

func limitCommand() cli.Command {
	return cli.Command{
		Name:      "limit",
		Usage:     "Place a limit order",
		ArgsUsage: "<symbol> <side> <quantity> <price>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "tif",
				Usage: "time in force (GTC, IOC, FOK)",
				Value: string(domain.GTC),
			},
			cli.BoolFlag{
				Name:  "reduce-only",
				Usage: "reduce only flag",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 4 {
				return fail(fmt.Errorf("symbol, side, quantity and price arguments are required"))
			}
			symbol := c.Args().Get(0)
			side := c.Args().Get(1)
			quantity := c.Args().Get(2)
			price := c.Args().Get(3)
			tif := c.String("tif")
			reduceOnly := c.Bool("reduce-only")

			printWarn("\n=== Order Confirmation ===")
			fmt.Println("Type: LIMIT")
			fmt.Printf("Symbol: %s\n", strings.ToUpper(symbol))
			fmt.Printf("Side: %s\n", strings.ToUpper(side))
			fmt.Printf("Quantity: %s\n", quantity)
			fmt.Printf("Price: $%s\n", price)
			fmt.Printf("Time in Force: %s\n", tif)
			fmt.Printf("Reduce Only: %v\n", reduceOnly)

			if !confirm(c, "Do you want to place this order?") {
				printWarn("Order cancelled")
				return nil
			}

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			resp, err := trader.PlaceLimitOrder(ctx, symbol, side, quantity, price, tif, reduceOnly)
			if err != nil {
				return fail(err)
			}

			printSuccess("\n✓ Limit order placed successfully!")
			printOrderReceipt(resp)
			return nil
		},
	}
}

func stopMarketCommand() cli.Command {
	return cli.Command{
		Name:      "stop-market",
		Usage:     "Place a stop market order",
		ArgsUsage: "<symbol> <side> <quantity> <stop_price>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "reduce-only",
				Usage: "reduce only flag",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 4 {
				return fail(fmt.Errorf("symbol, side, quantity and stop_price arguments are required"))
			}
			symbol := c.Args().Get(0)
			side := c.Args().Get(1)
			quantity := c.Args().Get(2)
			stopPrice := c.Args().Get(3)
			reduceOnly := c.Bool("reduce-only")

			printWarn("\n=== Order Confirmation ===")
			fmt.Println("Type: STOP MARKET")
			fmt.Printf("Symbol: %s\n", strings.ToUpper(symbol))
			fmt.Printf("Side: %s\n", strings.ToUpper(side))
			fmt.Printf("Quantity: %s\n", quantity)
			fmt.Printf("Stop Price: $%s\n", stopPrice)
			fmt.Printf("Reduce Only: %v\n", reduceOnly)

			if !confirm(c, "Do you want to place this order?") {
				printWarn("Order cancelled")
				return nil
			}

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			resp, err := trader.PlaceStopMarketOrder(ctx, symbol, side, quantity, stopPrice, reduceOnly)
			if err != nil {
				return fail(err)
			}

			printSuccess("\n✓ Stop market order placed successfully!")
			printOrderReceipt(resp)
			return nil
		},
	}
}

func stopLimitCommand() cli.Command {
	return cli.Command{
		Name:      "stop-limit",
		Usage:     "Place a stop limit order",
		ArgsUsage: "<symbol> <side> <quantity> <price> <stop_price>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "tif",
				Usage: "time in force (GTC, IOC, FOK)",
				Value: string(domain.GTC),
			},
			cli.BoolFlag{
				Name:  "reduce-only",
				Usage: "reduce only flag",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 5 {
				return fail(fmt.Errorf("symbol, side, quantity, price and stop_price arguments are required"))
			}
			symbol := c.Args().Get(0)
			side := c.Args().Get(1)
			quantity := c.Args().Get(2)
			price := c.Args().Get(3)
			stopPrice := c.Args().Get(4)
			tif := c.String("tif")
			reduceOnly := c.Bool("reduce-only")

			printWarn("\n=== Order Confirmation ===")
			fmt.Println("Type: STOP LIMIT")
			fmt.Printf("Symbol: %s\n", strings.ToUpper(symbol))
			fmt.Printf("Side: %s\n", strings.ToUpper(side))
			fmt.Printf("Quantity: %s\n", quantity)
			fmt.Printf("Price: $%s\n", price)
			fmt.Printf("Stop Price: $%s\n", stopPrice)
			fmt.Printf("Time in Force: %s\n", tif)
			fmt.Printf("Reduce Only: %v\n", reduceOnly)

			if !confirm(c, "Do you want to place this order?") {
				printWarn("Order cancelled")
				return nil
			}

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			resp, err := trader.PlaceStopLimitOrder(ctx, symbol, side, quantity, price, stopPrice, tif, reduceOnly)
			if err != nil {
				return fail(err)
			}

			printSuccess("\n✓ Stop limit order placed successfully!")
			printOrderReceipt(resp)
			return nil
		},
	}
}

func ordersCommand() cli.Command {
	return cli.Command{
		Name:  "orders",
		Usage: "Get open orders",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "symbol, s",
				Usage: "trading symbol (optional)",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			orders, err := trader.OpenOrders(ctx, c.String("symbol"))
			if err != nil {
				return fail(err)
			}

			if len(orders) == 0 {
				printWarn("\nNo open orders")
				return nil
			}

			printHeader("Open Orders")
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "Order ID\tSymbol\tType\tSide\tPrice\tQuantity\tStatus")
			for _, o := range orders {
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
					o["orderId"], o["symbol"], o["type"], o["side"],
					o["price"], o["origQty"], o["status"])
			}
			return w.Flush()
		},
	}
}

func cancelCommand() cli.Command {
	return cli.Command{
		Name:      "cancel",
		Usage:     "Cancel an order",
		ArgsUsage: "<symbol> <order_id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fail(fmt.Errorf("symbol and order_id arguments are required"))
			}
			symbol := c.Args().Get(0)

			orderID, err := strconv.ParseInt(c.Args().Get(1), 10, 64)
			if err != nil {
				return fail(fmt.Errorf("invalid order_id: %s", c.Args().Get(1)))
			}

			if !confirm(c, fmt.Sprintf("Cancel order %d for %s?", orderID, symbol)) {
				printWarn("Cancellation aborted")
				return nil
			}

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			if _, err := trader.CancelOrder(ctx, symbol, orderID); err != nil {
				return fail(err)
			}

			printSuccess("\n✓ Order cancelled successfully!")
			return nil
		},
	}
}

// formatUSD는 천 단위 구분 기호를 넣어 소수 둘째 자리까지 변환합니다
func formatUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.Index(s, ".")
	head, tail := s[:dot], s[dot:]

	neg := strings.HasPrefix(head, "-")
	if neg {
		head = head[1:]
	}

	var b strings.Builder
	for i := 0; i < len(head); i++ {
		if i > 0 && (len(head)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(head[i])
	}

	out := b.String() + tail
	if neg {
		out = "-" + out
	}
	return out
}

func closeCommand() cli.Command {
	return cli.Command{
		Name:      "close",
		Usage:     "Close position for a symbol",
		ArgsUsage: "<symbol>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fail(fmt.Errorf("symbol argument is required"))
			}
			symbol := c.Args().Get(0)

			if !confirm(c, fmt.Sprintf("Close position for %s?", symbol)) {
				printWarn("Close position aborted")
				return nil
			}

			ctx := context.Background()

			trader, err := buildTrader(ctx, c)
			if err != nil {
				return fail(err)
			}

			resp, err := trader.ClosePosition(ctx, symbol)
			if err != nil {
				return fail(err)
			}

			if resp["status"] == domain.StatusNoPosition {
				printWarn("\nNo open position for %s", symbol)
				return nil
			}

			printSuccess("\n✓ Position closed successfully!")
			printOrderReceipt(resp)
			return nil
		},
	}
}
