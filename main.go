package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"
	"github.com/solwatch/solwatch/internal/pretty"
	"github.com/solwatch/solwatch/jsonrpc2"
	ws "github.com/solwatch/solwatch/jsonrpc2/ws/gorilla"
	"github.com/solwatch/solwatch/rpc"
	"github.com/solwatch/solwatch/solana"
	"github.com/solwatch/solwatch/store"
)

// Version of the binary, assigned during build.
var Version string = "dev"

var rpcTimeout = time.Second * 10

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`

	Health struct {
		RPC string `long:"rpc" description:"HTTP RPC endpoint of the Solana node." default:"http://localhost:8899"`
	} `command:"health" description:"Check the node's health."`

	Account struct {
		Args struct {
			Account string `positional-arg-name:"account" description:"Base58 public key of the account."`
		} `positional-args:"yes" required:"yes"`
		RPC     string `long:"rpc" description:"HTTP RPC endpoint of the Solana node." default:"http://localhost:8899"`
		Record  bool   `long:"record" description:"Record the fetched snapshot in the persistent store."`
		DataDir string `long:"datadir" description:"Where the persistent store keeps its data."`
	} `command:"account" description:"Fetch an account's balance and meta-data."`

	Keygen struct {
		Args struct {
			Path string `positional-arg-name:"path" description:"Where to write the keypair file."`
		} `positional-args:"yes"`
	} `command:"keygen" description:"Generate a new keypair file."`

	Transfer struct {
		Args struct {
			Receiver string `positional-arg-name:"receiver" description:"Base58 public key of the receiving account."`
			Amount   string `positional-arg-name:"amount" description:"Amount to send, like \"5000 lamports\" or \"0.5 sol\"."`
		} `positional-args:"yes" required:"yes"`
		Keypair string `long:"keypair" description:"Path to the sender's keypair file."`
		RPC     string `long:"rpc" description:"HTTP RPC endpoint of the Solana node." default:"http://localhost:8899"`
		WS      string `long:"ws" description:"Websocket endpoint of the Solana node." default:"ws://localhost:8900"`
		NoWait  bool   `long:"nowait" description:"Do not wait for the transaction to be confirmed."`
	} `command:"transfer" description:"Transfer funds to an account."`

	CreateAccount struct {
		Args struct {
			Amount string `positional-arg-name:"amount" description:"Funding amount, like \"5000 lamports\" or \"0.5 sol\"."`
		} `positional-args:"yes" required:"yes"`
		Keypair string `long:"keypair" description:"Path to the funding keypair file."`
		Owner   string `long:"owner" description:"Base58 program key that will own the new account." required:"yes"`
		Space   uint64 `long:"space" description:"Data space to allocate, in bytes." default:"0"`
		SaveKey string `long:"savekey" description:"Where to write the new account's keypair file."`
		RPC     string `long:"rpc" description:"HTTP RPC endpoint of the Solana node." default:"http://localhost:8899"`
		WS      string `long:"ws" description:"Websocket endpoint of the Solana node." default:"ws://localhost:8900"`
		NoWait  bool   `long:"nowait" description:"Do not wait for the transaction to be confirmed."`
	} `command:"create-account" description:"Create a new account owned by a program key."`

	Watch struct {
		Args struct {
			Signatures []string `positional-arg-name:"signature" description:"Base58 transaction signatures to watch."`
		} `positional-args:"yes" required:"yes"`
		WS      string `long:"ws" description:"Websocket endpoint of the Solana node." default:"ws://localhost:8900"`
		Store   string `long:"store" description:"Storage driver. (persist|memory)" default:"memory"`
		DataDir string `long:"datadir" description:"Where the persistent store keeps its data."`
	} `command:"watch" description:"Watch signatures until confirmed, recording the results."`
}

// findDataDir returns a valid data dir, will create it if it doesn't
// exist.
func findDataDir(overridePath string) (string, error) {
	path := overridePath
	if path == "" {
		path = xdg.New("solwatch", "watch").DataHome()
	}
	err := os.MkdirAll(path, 0700)
	return path, err
}

// findKeypair loads the keypair at the given path, falling back to the
// standard solana-keygen location.
func findKeypair(overridePath string) (solana.KeyPair, error) {
	path := overridePath
	if path == "" {
		path = filepath.Join(xdg.New("", "solana").ConfigHome(), "id.json")
	}
	keypair, err := solana.LoadKeyPair(path)
	if err != nil {
		return keypair, ErrExplain{err, `Failed to load the keypair file. Generate one with "solwatch keygen" or point at an existing one with --keypair.`}
	}
	return keypair, nil
}

// dialClient returns an engine wired to the HTTP endpoint.
func dialClient(httpEndpoint string) *rpc.Client {
	c := &rpc.Client{}
	c.SetHTTPTransport(&rpc.HTTPTransport{
		Endpoint: httpEndpoint,
		Handler:  c,
	})
	return c
}

// dialPush connects the push channel and starts serving inbound messages
// into the engine. The returned error channel yields the serve loop's exit
// error.
func dialPush(c *rpc.Client, wsEndpoint string) (*rpc.CodecTransport, <-chan error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	codec, err := ws.WebSocketDial(ctx, wsEndpoint)
	cancel()
	if err != nil {
		return nil, nil, ErrExplain{err, "Failed to connect to the node's websocket endpoint. You can override it with the --ws=\"...\" flag."}
	}
	t := &rpc.CodecTransport{Codec: codec}
	c.SetWSTransport(t)
	errChan := make(chan error, 1)
	go func() {
		errChan <- t.Serve(c)
	}()
	return t, errChan, nil
}

// await sends the request and blocks until its callback fires or the
// timeout elapses, returning any error code as an error.
func await(c *rpc.Client, req rpc.Request) error {
	done := make(chan struct{}, 1)
	req.Header().SetSub(rpc.SubFunc(func(rpc.Request) {
		select {
		case done <- struct{}{}:
		default:
		}
	}))
	c.Send(req)
	select {
	case <-done:
	case <-time.After(rpcTimeout):
		return fmt.Errorf("rpc timed out after %s", rpcTimeout)
	}
	if code := req.Header().ErrCode(); code != 0 {
		return RPCError{Code: code}
	}
	return nil
}

// RPCError surfaces a request's resolved error code to the command line.
type RPCError struct {
	Code int
}

func (err RPCError) Error() string {
	return fmt.Sprintf("rpc error code %d", err.Code)
}

func (err RPCError) ErrorCode() int {
	return err.Code
}

func runHealth(options Options) error {
	c := dialClient(options.Health.RPC)
	req := &rpc.GetHealth{}
	if err := await(c, req); err != nil {
		if rpcErr, ok := err.(RPCError); ok && rpcErr.Code == jsonrpc2.ErrCodeNodeUnhealthy {
			fmt.Println("unhealthy")
			os.Exit(1)
		}
		return err
	}
	fmt.Println(req.Status)
	return nil
}

func runAccount(options Options) error {
	key, err := solana.PubKeyFromBase58(options.Account.Args.Account)
	if err != nil {
		return err
	}
	c := dialClient(options.Account.RPC)
	req := &rpc.GetAccountInfo{Account: key}
	if err := await(c, req); err != nil {
		return err
	}
	if !req.Exists {
		return fmt.Errorf("account not found at slot %d: %s", req.Slot, key)
	}
	fmt.Printf("account:    %s\n", key)
	fmt.Printf("slot:       %d\n", req.Slot)
	fmt.Printf("balance:    %s\n", pretty.Lamports(req.Lamports))
	fmt.Printf("owner:      %s\n", req.Owner)
	fmt.Printf("executable: %v\n", req.Executable)
	fmt.Printf("rent epoch: %d\n", req.RentEpoch)
	fmt.Printf("data:       %d bytes\n", len(req.Data))

	if !options.Account.Record {
		return nil
	}
	storeDriver, err := openStore("persist", options.Account.DataDir)
	if err != nil {
		return err
	}
	defer storeDriver.Close()
	return storeDriver.SetAccount(store.AccountSnapshot{
		Key:        key,
		Slot:       req.Slot,
		Lamports:   req.Lamports,
		RentEpoch:  req.RentEpoch,
		Executable: req.Executable,
		Owner:      req.Owner,
		Data:       req.Data,
		UpdatedAt:  time.Now().UTC(),
	})
}

func runKeygen(options Options) error {
	path := options.Keygen.Args.Path
	if path == "" {
		path = filepath.Join(xdg.New("", "solana").ConfigHome(), "id.json")
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return err
		}
	}
	keypair, err := solana.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := keypair.Save(path); err != nil {
		return ErrExplain{err, "Refusing to overwrite an existing keypair file."}
	}
	fmt.Printf("wrote %s\npubkey: %s\n", path, keypair.PubKey())
	return nil
}

func subcommand(cmd string, options Options) error {
	switch cmd {
	case "health":
		return runHealth(options)
	case "account":
		return runAccount(options)
	case "keygen":
		return runKeygen(options)
	case "transfer":
		return runTransfer(options)
	case "create-account":
		return runCreateAccount(options)
	case "watch":
		return runWatch(options)
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(golog.New(logWriter, logLevel))
	if logLevel == log.Debug {
		// Enable logging from subpackages
		rpc.SetLogger(logWriter)
		jsonrpc2.SetLogger(logWriter)
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	cmd := parser.Active.Name
	err = subcommand(cmd, options)
	if err == nil {
		return
	}

	if err == io.EOF {
		exit(3, "Connection closed.\n")
	}

	switch typedErr := err.(type) {
	case net.Error:
		err = ErrExplain{err, `Disconnected from the node unexpectedly. Could be a connectivity issue or the node is down. Try again?`}
	case interface{ ErrorCode() int }:
		switch typedErr.ErrorCode() {
		case jsonrpc2.ErrCodeMethodNotFound:
			err = ErrExplain{err, `Missing a required RPC method. Make sure your Solana node is up to date.`}
		case jsonrpc2.ErrCodeNodeUnhealthy:
			err = ErrExplain{err, `The node is behind or still catching up. Try another node or wait for it to recover.`}
		case jsonrpc2.ErrCodeSendTxPreflightFail:
			err = ErrExplain{err, `The transaction failed preflight checks. Check the sender's balance and the recent block hash.`}
		case rpc.ErrCodeNoTransport:
			err = ErrExplain{err, `The request needs a channel that is not configured. Subscriptions need the --ws="..." endpoint.`}
		default:
			err = ErrExplain{err, fmt.Sprintf(`Unexpected RPC error occurred: %T (code %d). Please open an issue at https://github.com/solwatch/solwatch`, typedErr, typedErr.ErrorCode())}
		}
	case ErrExplain:
		// All good.
	default:
		err = ErrExplain{err, fmt.Sprintf(`Error type %T is missing an explanation. Please open an issue at https://github.com/solwatch/solwatch`, err)}
	}

	if err != nil {
		exit(2, "%s failed: %s\n", cmd, err)
	}
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// ErrExplain annotates an error with an explanation.
type ErrExplain struct {
	Cause       error
	Explanation string
}

func (err ErrExplain) Error() string {
	return fmt.Sprintf("%s\n -> %s", err.Cause, err.Explanation)
}
