package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/solwatch/solwatch/internal/pretty"
	"github.com/solwatch/solwatch/rpc"
	"github.com/solwatch/solwatch/solana"
	"github.com/solwatch/solwatch/store"
	badgerStore "github.com/solwatch/solwatch/store/badger"
	"golang.org/x/sync/errgroup"
)

func openStore(driver string, dataDir string) (store.Store, error) {
	switch driver {
	case "memory":
		return store.MemoryStore(), nil
	case "persist":
		fallthrough
	case "badger":
		dir, err := findDataDir(dataDir)
		if err != nil {
			return nil, err
		}
		opts := badger.DefaultOptions(dir).WithLogger(nil)
		storeDriver, err := badgerStore.Open(opts)
		if err != nil {
			return nil, err
		}
		logger.Infof("Persistent store using badger backend: %s", dir)
		return storeDriver, nil
	default:
		return nil, errors.New("storage driver not implemented")
	}
}

func runWatch(options Options) error {
	sigs := make([]solana.Signature, 0, len(options.Watch.Args.Signatures))
	for _, s := range options.Watch.Args.Signatures {
		sig, err := solana.SignatureFromBase58(s)
		if err != nil {
			return err
		}
		sigs = append(sigs, sig)
	}

	storeDriver, err := openStore(options.Watch.Store, options.Watch.DataDir)
	if err != nil {
		return err
	}
	defer storeDriver.Close()

	c := &rpc.Client{}
	transport, serveErr, err := dialPush(c, options.Watch.WS)
	if err != nil {
		return err
	}
	defer transport.Close()

	var g errgroup.Group
	subs := make([]*rpc.SignatureSubscribe, 0, len(sigs))
	for _, sig := range sigs {
		sig := sig
		sub := &rpc.SignatureSubscribe{Signature: sig}
		events := make(chan struct{}, 2)
		sub.SetSub(rpc.SubFunc(func(rpc.Request) {
			events <- struct{}{}
		}))
		subs = append(subs, sub)

		g.Go(func() error {
			for range events {
				if code := sub.ErrCode(); code != 0 {
					return RPCError{Code: code}
				}
				if !sub.Received() || sub.SubID() == 0 {
					continue
				}
				if !sub.Confirmed() && sub.TxErr == nil {
					// Acknowledged, still waiting on the notification.
					logger.Debugf("Subscribed to %s (subscription id %d)", pretty.Abbrev(sig.String()), sub.SubID())
					continue
				}
				status := store.SignatureStatus{
					Signature: sig,
					Slot:      sub.Slot,
					Confirmed: sub.TxErr == nil,
					TxErr:     string(sub.TxErr),
					UpdatedAt: time.Now().UTC(),
				}
				if err := storeDriver.SetSignature(status); err != nil {
					return err
				}
				if status.Confirmed {
					logger.Infof("Confirmed in slot %d: %s", sub.Slot, sig)
				} else {
					logger.Warningf("Failed in slot %d: %s: %s", sub.Slot, sig, sub.TxErr)
				}
				return nil
			}
			return nil
		})
		c.Send(sub)
	}

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- g.Wait()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	select {
	case err := <-serveErr:
		return ErrExplain{err, "Lost the websocket connection while watching; active subscriptions were dropped."}
	case err := <-watchDone:
		if err != nil {
			return err
		}
		fmt.Printf("recorded %d signature(s)\n", len(sigs))
		return nil
	case <-sigCh:
		logger.Info("Shutting down...")
		for _, sub := range subs {
			sub.RemoveNotify(sub)
		}
		return nil
	}
}
