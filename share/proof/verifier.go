// Package proof verifies cells against the row commitments of a block header.
package proof

import (
	"context"
	"fmt"
	"runtime"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/errgroup"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

var log = logging.Logger("share/proof")

// ErrRejected is returned for a cell that must not be counted towards confidence or used for
// reconstruction.
type ErrRejected struct {
	Position share.Position
	Reason   string
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("cell %s rejected: %s", e.Position, e.Reason)
}

func reject(pos share.Position, format string, args ...any) *ErrRejected {
	return &ErrRejected{Position: pos, Reason: fmt.Sprintf(format, args...)}
}

// Verifier checks a single cell against the header it is claimed to belong to.
type Verifier interface {
	Verify(hdr *header.BlockHeader, cell share.Cell) error
}

// NMTVerifier verifies namespaced merkle inclusion proofs of cells under row commitments.
type NMTVerifier struct{}

// NewVerifier returns the proof verifier, or a verifier that accepts every well-formed cell if
// verification is disabled.
func NewVerifier(disabled bool) Verifier {
	if disabled {
		log.Warn("cell proof verification is DISABLED; confidence is computed over unverified cells")
		return DisabledVerifier{}
	}
	return NMTVerifier{}
}

func (NMTVerifier) Verify(hdr *header.BlockHeader, cell share.Cell) error {
	if err := checkWellFormed(hdr, cell); err != nil {
		return err
	}
	proof, err := share.UnmarshalProof(cell.Proof)
	if err != nil {
		return reject(cell.Position, "malformed proof: %v", err)
	}
	if proof.Start() != int(cell.Position.Col) || proof.End() != int(cell.Position.Col)+1 {
		return reject(cell.Position, "proof covers range [%d, %d)", proof.Start(), proof.End())
	}

	ns := hdr.NamespaceAt(cell.Position)
	root := hdr.Commitments[cell.Position.Row]
	if !proof.VerifyInclusion(share.NewHasher(), ns.ToNMT(), [][]byte{cell.Data}, root) {
		return reject(cell.Position, "inclusion proof does not match row commitment")
	}
	return nil
}

// DisabledVerifier accepts every well-formed cell. Intended for testing against chains without
// usable commitments.
type DisabledVerifier struct{}

func (DisabledVerifier) Verify(hdr *header.BlockHeader, cell share.Cell) error {
	return checkWellFormed(hdr, cell)
}

func checkWellFormed(hdr *header.BlockHeader, cell share.Cell) error {
	if !hdr.Contains(cell.Position) {
		return reject(cell.Position, "outside of %dx%d matrix", hdr.Rows, hdr.Cols)
	}
	if err := cell.Validate(); err != nil {
		return reject(cell.Position, "%v", err)
	}
	return nil
}

// VerifyAll verifies cells in parallel, splitting them into verified and rejected. Relative order
// of the cells is preserved in both outputs.
func VerifyAll(
	ctx context.Context,
	v Verifier,
	hdr *header.BlockHeader,
	cells []share.Cell,
	parallelism int,
) (verified []share.Cell, rejected []*ErrRejected, err error) {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	errs := make([]error, len(cells))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)
	for i, cell := range cells {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			errs[i] = v.Verify(hdr, cell)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	for i, cell := range cells {
		if errs[i] == nil {
			verified = append(verified, cell)
			continue
		}
		rej, ok := errs[i].(*ErrRejected)
		if !ok {
			rej = reject(cell.Position, "%v", errs[i])
		}
		log.Debugw("rejected cell", "block", hdr.Number, "position", cell.Position, "reason", rej.Reason)
		rejected = append(rejected, rej)
	}
	return verified, rejected, nil
}
