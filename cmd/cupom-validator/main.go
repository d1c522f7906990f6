// Command cupom-validator lets a store owner validate redemption codes from a
// terminal or a USB barcode scanner that types into stdin.
//
// Usage:
//
//	cupom-validator -api http://localhost:8080 -token $TOKEN resolve ABCD2345
//	cupom-validator confirm ABCD2345
//	cupom-validator recent
//	cupom-validator scan            # one payload per line, confirm with y
//
// The token may also come from CUPOM_TOKEN, read from the environment or .env.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joesantos1/querodesconto-parceiros/pkg/client"
	"github.com/joesantos1/querodesconto-parceiros/pkg/countdown"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cupom-validator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", envOr("CUPOM_API_URL", "http://localhost:8080"), "base URL of the coupon service")
	token := fs.String("token", os.Getenv("CUPOM_TOKEN"), "bearer token of the store owner")
	timeout := fs.Duration("timeout", 15*time.Second, "per request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *token == "" {
		fmt.Fprintln(stderr, "a token is required (-token or CUPOM_TOKEN)")
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	session := client.NewSession(*token, 0)
	session.Subscribe(func(reason error) {
		fmt.Fprintln(stderr, client.Message(reason))
	})
	c := client.New(*apiURL, session, nil)
	flow := client.NewValidationFlow(c)
	v := &validator{flow: flow, out: stdout, timeout: *timeout, now: time.Now}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "resolve":
		err = v.withCode(ctx, rest, false)
	case "confirm":
		err = v.withCode(ctx, rest, true)
	case "recent":
		err = v.recent(ctx)
	case "scan":
		err = v.scan(ctx, stdin)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, client.Message(err))
		return 1
	}
	return 0
}

type validator struct {
	flow    *client.ValidationFlow
	out     io.Writer
	timeout time.Duration
	now     func() time.Time
}

func (v *validator) withCode(ctx context.Context, args []string, confirm bool) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one code")
	}
	rctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	res, err := v.flow.Manual(rctx, args[0])
	if err != nil {
		return err
	}
	v.print(res)
	if !confirm {
		return nil
	}
	return v.confirm(ctx)
}

func (v *validator) confirm(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	used, err := v.flow.Confirm(cctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(v.out, "Cupom %s utilizado com sucesso.\n", used.DisplayCode)
	return nil
}

func (v *validator) recent(ctx context.Context) error {
	rctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	list, err := v.flow.Recent(rctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(v.out, "Nenhum cupom validado.")
		return nil
	}
	for _, item := range list {
		usedAt := ""
		if item.UsedAt != nil {
			usedAt = item.UsedAt.Local().Format("02/01 15:04")
		}
		fmt.Fprintf(v.out, "%s  %s  %s %s  %s\n", usedAt, item.DisplayCode, item.Value.String(), item.Type, item.Customer.Name)
	}
	return nil
}

// scan reads one payload per line. After a code resolves, the next line
// answers the confirmation; any other payload read meanwhile is dropped.
func (v *validator) scan(ctx context.Context, stdin io.Reader) error {
	lines := bufio.NewScanner(stdin)
	for lines.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(lines.Text())
		if v.flow.Current() != nil {
			switch strings.ToLower(line) {
			case "y", "s", "sim", "yes":
				if err := v.confirm(ctx); err != nil {
					fmt.Fprintln(v.out, client.Message(err))
				}
			case "n", "nao", "não", "no":
				v.flow.Cancel()
				fmt.Fprintln(v.out, "Cancelado.")
			}
			continue
		}

		rctx, cancel := context.WithTimeout(ctx, v.timeout)
		res, err := v.flow.Scan(rctx, line)
		cancel()
		switch {
		case errors.Is(err, client.ErrScanIgnored):
			continue
		case err != nil:
			fmt.Fprintln(v.out, client.Message(err))
			continue
		}
		v.print(res)
		fmt.Fprintln(v.out, "Confirmar uso? [s/n]")
	}
	return lines.Err()
}

func (v *validator) print(res *client.Validation) {
	fmt.Fprintf(v.out, "Código:   %s\n", res.DisplayCode)
	fmt.Fprintf(v.out, "Cliente:  %s <%s>\n", res.Customer.Name, res.Customer.Email)
	fmt.Fprintf(v.out, "Desconto: %s %s\n", res.Value.String(), res.Type)
	if res.Store != nil {
		fmt.Fprintf(v.out, "Loja:     %s\n", res.Store.Name)
	}
	if res.Campaign != nil {
		fmt.Fprintf(v.out, "Campanha: %s\n", res.Campaign.Title)
	}
	for _, rule := range res.Rules {
		fmt.Fprintf(v.out, "Regra %s:  %s\n", rule.Key, rule.Text)
	}
	fmt.Fprintf(v.out, "Expira:   %s\n", countdown.Display(res.Window(v.now()).Remaining(v.now())))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
