package das

import (
	"context"
	"errors"
	"fmt"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/getters"
	"github.com/availproject/avail-light-go/share/proof"
	"github.com/availproject/avail-light-go/share/recovery"
	"github.com/availproject/avail-light-go/store"
)

// Block states persisted after a pass.
const (
	Unavailable        = store.Unavailable
	ConfidenceComputed = store.ConfidenceComputed
	Done               = store.Done
)

// Fetcher retrieves cells of a block, one result per distinct position.
type Fetcher interface {
	Fetch(ctx context.Context, hdr *header.BlockHeader, positions []share.Position) getters.Results
}

// Outcome summarizes a single processing pass over a block.
type Outcome struct {
	Block      uint32
	State      BlockState
	Confidence ConfidenceRecord
	Fetched    int
	Verified   int
	Rejected   int
	AppData    *AppData
	// Shortfall is set when the pass fell short of the target confidence or could not yet
	// recover the application data. Such blocks are worth another pass.
	Shortfall bool
}

// scored reports whether the block went through confidence scoring. Empty blocks do not.
func (o Outcome) scored() bool {
	return o.State == Unavailable || o.Confidence != (ConfidenceRecord{})
}

// Pipeline processes a single block: plan, fetch, verify, score and, in app mode, reconstruct.
type Pipeline struct {
	mode       Mode
	confidence float64

	planner       Planner
	fetcher       Fetcher
	verifier      proof.Verifier
	reconstructor *recovery.Reconstructor
	store         *store.Store
}

// NewPipeline creates a new Pipeline.
func NewPipeline(
	params Parameters,
	fetcher Fetcher,
	verifier proof.Verifier,
	reconstructor *recovery.Reconstructor,
	store *store.Store,
) (*Pipeline, error) {
	mode, err := NewMode(params)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		mode:          mode,
		confidence:    params.Confidence,
		planner:       NewPlanner(mode),
		fetcher:       fetcher,
		verifier:      verifier,
		reconstructor: reconstructor,
		store:         store,
	}, nil
}

// Mode returns the operating mode of the pipeline.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Process runs a pass over the block and persists its outcome. Errors are returned only for
// passes that must be repeated as a whole: malformed headers, cancellation and storage failures.
func (p *Pipeline) Process(ctx context.Context, hdr *header.BlockHeader) (Outcome, error) {
	out := Outcome{Block: hdr.Number}
	if err := hdr.ValidateBasic(); err != nil {
		return out, err
	}
	log.Debugw("received block", "block", hdr.Number, "rows", hdr.Rows, "cols", hdr.Cols)

	if hdr.IsEmpty() {
		out.State = Done
		return out, p.commit(ctx, out, false)
	}

	plan := p.planner.Plan(hdr, p.confidence)
	log.Debugw("planned", "block", hdr.Number, "positions", len(plan.Positions))

	results := p.fetcher.Fetch(ctx, hdr, plan.Positions)
	if err := ctx.Err(); err != nil {
		return out, err
	}
	found := results.Found()
	out.Fetched = len(found)
	if len(found) == 0 {
		log.Warnw("no cells fetched, block is unavailable", "block", hdr.Number, "planned", len(plan.Positions))
		out.State = Unavailable
		out.Confidence = Compute(hdr.Number, 0)
		out.Shortfall = true
		return out, p.commit(ctx, out, true)
	}

	verified, rejected, err := proof.VerifyAll(ctx, p.verifier, hdr, found, 0)
	if err != nil {
		return out, err
	}
	out.Verified, out.Rejected = len(verified), len(rejected)
	if len(rejected) > 0 {
		log.Warnw("rejected cells", "block", hdr.Number, "rejected", len(rejected), "verified", len(verified))
	}

	out.Confidence = Compute(hdr.Number, len(verified))
	out.State = ConfidenceComputed
	out.Shortfall = out.Confidence.Confidence < p.confidence
	log.Debugw("confidence computed", "block", hdr.Number, "confidence", out.Confidence.Confidence)

	if !p.mode.IsAppClient() {
		out.State = Done
		return out, p.commit(ctx, out, true)
	}

	data, err := p.reconstruct(ctx, hdr, results, verified)
	var (
		deferred *recovery.ErrDeferred
		failed   *recovery.ErrFailed
	)
	switch {
	case err == nil:
		out.AppData = data
		out.State = Done
	case errors.As(err, &deferred):
		log.Infow("app data reconstruction deferred", "block", hdr.Number, "rows", deferred.Rows)
		out.Shortfall = true
	case errors.As(err, &failed):
		log.Errorw("app data reconstruction failed", "block", hdr.Number, "app_id", *p.mode.AppID, "err", err)
	default:
		return out, err
	}
	return out, p.commit(ctx, out, true)
}

// reconstruct gathers verified cells of the application rows, fetching only positions not yet
// attempted in this pass, and decodes them. Parity cells are requested only for rows that came
// short of the decoding threshold.
func (p *Pipeline) reconstruct(
	ctx context.Context,
	hdr *header.BlockHeader,
	sampled getters.Results,
	verified []share.Cell,
) (*AppData, error) {
	appID := *p.mode.AppID
	attempted := make(map[share.Position]struct{}, len(sampled))
	for pos := range sampled {
		attempted[pos] = struct{}{}
	}
	cells := append([]share.Cell(nil), verified...)

	fetchMissing := func(positions []share.Position) error {
		missing := make([]share.Position, 0, len(positions))
		for _, pos := range positions {
			if _, ok := attempted[pos]; !ok {
				attempted[pos] = struct{}{}
				missing = append(missing, pos)
			}
		}
		if len(missing) == 0 {
			return nil
		}
		results := p.fetcher.Fetch(ctx, hdr, missing)
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, rejected, err := proof.VerifyAll(ctx, p.verifier, hdr, results.Found(), 0)
		if err != nil {
			return err
		}
		if len(rejected) > 0 {
			log.Warnw("rejected app cells", "block", hdr.Number, "rejected", len(rejected))
		}
		cells = append(cells, ok...)
		return nil
	}

	if err := fetchMissing(PlanApp(hdr, appID)); err != nil {
		return nil, err
	}
	data, err := p.reconstructor.Reconstruct(ctx, hdr, appID, cells)
	var deferred *recovery.ErrDeferred
	if !errors.As(err, &deferred) {
		return data, err
	}

	if err := fetchMissing(PlanRepair(hdr, deferred.Rows)); err != nil {
		return nil, err
	}
	return p.reconstructor.Reconstruct(ctx, hdr, appID, cells)
}

func (p *Pipeline) commit(ctx context.Context, out Outcome, scored bool) error {
	c := store.Commit{
		Block:   out.Block,
		State:   out.State,
		AppData: out.AppData,
	}
	if scored {
		rec := out.Confidence
		c.Confidence = &rec
	}
	if err := p.store.Commit(ctx, c); err != nil {
		return fmt.Errorf("persisting block %d: %w", out.Block, err)
	}
	return nil
}
