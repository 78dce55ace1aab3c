package main

import (
	"github.com/alecthomas/kong"

	fnsdk "github.com/crossplane/function-sdk-go"
	"github.com/crossplane/function-sdk-go/logging"
)

// CLI is the kong-parsed entrypoint. Flags mirror the function-sdk-go
// server bootstrap convention.
type CLI struct {
	Debug bool `help:"Emit debug logs." env:"DEBUG_ENABLED"`

	Network     string `default:"tcp" help:"Network on which to listen for gRPC connections." env:"FUNCTION_NETWORK"`
	Address     string `default:":9443" help:"Address at which to listen for gRPC connections." env:"FUNCTION_ADDRESS"`
	TLSCertsDir string `help:"Directory containing server certs (tls.key, tls.crt) and a CA certificate (ca.crt)." env:"TLS_SERVER_CERTS_DIR"`
	Insecure    bool   `help:"Run without mTLS credentials. If you supply this flag, TLSCertsDir is ignored." env:"FUNCTION_INSECURE"`
}

// Run starts the server.
func (c *CLI) Run() error {
	log, err := logging.NewLogger(logging.Debug(c.Debug))
	if err != nil {
		return err
	}

	fn := NewFunction(log)

	var opts []fnsdk.ServeOption
	if c.Insecure {
		opts = append(opts, fnsdk.Insecure(true))
	} else {
		opts = append(opts, fnsdk.MTLSCertificates(c.TLSCertsDir))
	}
	opts = append(opts, fnsdk.Listen(c.Network, c.Address))

	log.Info("Starting composition-time context resolver", "network", c.Network, "address", c.Address)
	return fnsdk.Serve(fn, opts...)
}

func main() {
	ctx := kong.Parse(&CLI{},
		kong.Name("function-kubecore-context-resolver"),
		kong.Description("A Crossplane composition function that resolves relationship-aware platform context."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
