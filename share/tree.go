package share

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/celestiaorg/nmt"
	nmt_pb "github.com/celestiaorg/nmt/pb"
)

// NewHasher returns the hash function committed rows are built with.
func NewHasher() hash.Hash {
	return sha256.New()
}

// NewTree returns an empty namespaced merkle tree used to commit to a single row of the extended
// matrix. Parity cells carry the maximum namespace, which the tree ignores when computing
// namespace ranges of inner nodes.
func NewTree() *nmt.NamespacedMerkleTree {
	return nmt.New(NewHasher(), nmt.NamespaceIDSize(NamespaceSize), nmt.IgnoreMaxNamespace(true))
}

// MarshalProof serializes an inclusion proof into its wire format.
func MarshalProof(proof nmt.Proof) ([]byte, error) {
	pb := &nmt_pb.Proof{
		Start:                 int64(proof.Start()),
		End:                   int64(proof.End()),
		Nodes:                 proof.Nodes(),
		LeafHash:              proof.LeafHash(),
		IsMaxNamespaceIgnored: proof.IsMaxNamespaceIDIgnored(),
	}
	return pb.Marshal()
}

// UnmarshalProof deserializes an inclusion proof from its wire format.
func UnmarshalProof(data []byte) (nmt.Proof, error) {
	pb := &nmt_pb.Proof{}
	if err := pb.Unmarshal(data); err != nil {
		return nmt.Proof{}, fmt.Errorf("unmarshaling proof: %w", err)
	}
	return nmt.ProtoToProof(*pb), nil
}
