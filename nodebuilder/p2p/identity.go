package p2p

import (
	"context"
	"crypto/rand"
	"errors"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
)

var (
	keyNamespace = datastore.NewKey("p2p")
	keyName      = datastore.NewKey("identity")
)

// Key provides a networking private key of the node. The key is generated once and persisted.
func Key(ds datastore.Batching) (crypto.PrivKey, error) {
	ctx := context.Background()
	kstore := namespace.Wrap(ds, keyNamespace)

	raw, err := kstore.Get(ctx, keyName)
	switch {
	case err == nil:
		return crypto.UnmarshalPrivateKey(raw)
	case !errors.Is(err, datastore.ErrNotFound):
		return nil, err
	}

	// no key stored yet, so generate a new one
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, err
	}
	raw, err = crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	if err = kstore.Put(ctx, keyName, raw); err != nil {
		return nil, err
	}
	return priv, kstore.Sync(ctx, keyName)
}

func id(key crypto.PrivKey) (peer.ID, error) {
	return peer.IDFromPrivateKey(key)
}
