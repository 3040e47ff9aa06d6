package main

import (
	"fmt"
	"time"

	"github.com/solwatch/solwatch/internal/pretty"
	"github.com/solwatch/solwatch/rpc"
	"github.com/solwatch/solwatch/solana"
)

var confirmTimeout = time.Minute

// waitConfirm subscribes to sig on the push channel and blocks until the
// node confirms it, the transaction fails, or the timeout elapses.
func waitConfirm(c *rpc.Client, sig solana.Signature) error {
	sub := &rpc.SignatureSubscribe{Signature: sig}
	// One event for the subscription ack, one for the notification.
	events := make(chan struct{}, 2)
	sub.SetSub(rpc.SubFunc(func(rpc.Request) {
		events <- struct{}{}
	}))
	c.Send(sub)

	timeout := time.After(confirmTimeout)
	for {
		select {
		case <-events:
			if code := sub.ErrCode(); code != 0 {
				return RPCError{Code: code}
			}
			if sub.TxErr != nil {
				return fmt.Errorf("transaction failed: %s", sub.TxErr)
			}
			if sub.Confirmed() {
				logger.Infof("Confirmed in slot %d: %s", sub.Slot, pretty.Abbrev(sig.String()))
				return nil
			}
		case <-timeout:
			sub.RemoveNotify(sub)
			return fmt.Errorf("timed out waiting for confirmation of %s", sig)
		}
	}
}

// recentBlockHash fetches a fresh block hash to anchor a transaction on.
func recentBlockHash(c *rpc.Client) (solana.Hash, error) {
	req := &rpc.GetRecentBlockHash{}
	if err := await(c, req); err != nil {
		return solana.Hash{}, err
	}
	logger.Debugf("Recent block hash at slot %d: %s (%s per signature)",
		req.Slot, req.BlockHash, pretty.Lamports(req.LamportsPerSig))
	return req.BlockHash, nil
}

func runTransfer(options Options) error {
	receiver, err := solana.PubKeyFromBase58(options.Transfer.Args.Receiver)
	if err != nil {
		return err
	}
	lamports, err := pretty.ParseLamports(options.Transfer.Args.Amount)
	if err != nil {
		return err
	}
	sender, err := findKeypair(options.Transfer.Keypair)
	if err != nil {
		return err
	}

	c := dialClient(options.Transfer.RPC)
	blockhash, err := recentBlockHash(c)
	if err != nil {
		return err
	}

	xfer := &rpc.Transfer{
		BlockHash: blockhash,
		Sender:    sender,
		Receiver:  receiver,
		Lamports:  lamports,
	}
	logger.Infof("Sending %s from %s to %s",
		pretty.Lamports(lamports), pretty.Abbrev(sender.PubKey().String()), pretty.Abbrev(receiver.String()))
	if err := await(c, xfer); err != nil {
		return err
	}
	fmt.Printf("signature: %s\n", xfer.Signature)

	if options.Transfer.NoWait {
		return nil
	}
	_, _, err = dialPush(c, options.Transfer.WS)
	if err != nil {
		return err
	}
	return waitConfirm(c, xfer.Signature)
}

func runCreateAccount(options Options) error {
	owner, err := solana.PubKeyFromBase58(options.CreateAccount.Owner)
	if err != nil {
		return err
	}
	lamports, err := pretty.ParseLamports(options.CreateAccount.Args.Amount)
	if err != nil {
		return err
	}
	sender, err := findKeypair(options.CreateAccount.Keypair)
	if err != nil {
		return err
	}
	account, err := solana.GenerateKeyPair()
	if err != nil {
		return err
	}
	if options.CreateAccount.SaveKey != "" {
		if err := account.Save(options.CreateAccount.SaveKey); err != nil {
			return ErrExplain{err, "Refusing to overwrite an existing keypair file."}
		}
	} else {
		logger.Warningf("New account keypair is not being saved; pass --savekey to keep it.")
	}

	c := dialClient(options.CreateAccount.RPC)
	blockhash, err := recentBlockHash(c)
	if err != nil {
		return err
	}

	create := &rpc.CreateAccount{
		BlockHash: blockhash,
		Sender:    sender,
		Account:   account,
		Owner:     owner,
		Lamports:  lamports,
		Space:     options.CreateAccount.Space,
	}
	logger.Infof("Creating account %s with %s, owned by %s",
		pretty.Abbrev(account.PubKey().String()), pretty.Lamports(lamports), pretty.Abbrev(owner.String()))
	if err := await(c, create); err != nil {
		return err
	}
	fmt.Printf("account:   %s\nsignature: %s\n", account.PubKey(), create.FundSignature)

	if options.CreateAccount.NoWait {
		return nil
	}
	_, _, err = dialPush(c, options.CreateAccount.WS)
	if err != nil {
		return err
	}
	return waitConfirm(c, create.FundSignature)
}
