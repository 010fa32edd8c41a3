package share

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/celestiaorg/nmt/namespace"
)

// NamespaceSize is the size of the namespace prefix of every committed leaf.
const NamespaceSize = 4

// Reserved namespaces. Application ids above MaxAppID are not allowed.
var (
	ParityNamespace      = AppNamespace(math.MaxUint32)
	TailPaddingNamespace = AppNamespace(math.MaxUint32 - 1)
)

// MaxAppID is the largest application id that can own data in a block.
const MaxAppID = math.MaxUint32 - 2

// Namespace prefixes committed leaves. Data cells are namespaced by the id of the application
// owning them, which keeps every application's cells contiguous under each row commitment.
type Namespace []byte

// AppNamespace returns the namespace of the given application.
func AppNamespace(appID uint32) Namespace {
	ns := make(Namespace, NamespaceSize)
	binary.BigEndian.PutUint32(ns, appID)
	return ns
}

// ToNMT converts the Namespace into NMT's namespace.ID.
func (n Namespace) ToNMT() namespace.ID {
	return namespace.ID(n)
}

// IsParity reports whether the namespace marks erasure-coded cells.
func (n Namespace) IsParity() bool {
	return n.Equals(ParityNamespace)
}

// Equals compares two Namespaces.
func (n Namespace) Equals(other Namespace) bool {
	return n.ToNMT().Equal(other.ToNMT())
}

// String stringifies the Namespace.
func (n Namespace) String() string {
	return hex.EncodeToString(n)
}
