package das

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode reports what the client does with every block.
type Mode struct {
	// AppID is set in app mode, where the client recovers the data of the application.
	AppID *uint32
	// Partition is set in fat-client mode, where the client fetches a whole fraction of every
	// block instead of random cells.
	Partition *Partition
}

// NewMode derives the operating mode from the configuration.
func NewMode(params Parameters) (Mode, error) {
	var m Mode
	if params.AppID != 0 {
		id := params.AppID
		m.AppID = &id
	}
	if params.Partition != "" {
		p, err := ParsePartition(params.Partition)
		if err != nil {
			return Mode{}, err
		}
		m.Partition = &p
	}
	return m, nil
}

// IsAppClient reports whether the client recovers application data.
func (m Mode) IsAppClient() bool {
	return m.AppID != nil
}

func (m Mode) String() string {
	switch {
	case m.IsAppClient():
		return fmt.Sprintf("AppClient(%d)", *m.AppID)
	case m.Partition != nil:
		return fmt.Sprintf("LightClient(partition %s)", m.Partition)
	default:
		return "LightClient"
	}
}

// MarshalJSON encodes the mode as "LightClient" or {"AppClient": id}.
func (m Mode) MarshalJSON() ([]byte, error) {
	if m.IsAppClient() {
		return json.Marshal(map[string]uint32{"AppClient": *m.AppID})
	}
	return json.Marshal("LightClient")
}

var errInvalidPartition = errors.New("partition must be formatted as k/n with 0 < k <= n")

// Partition selects the k-th of n equal fractions of the extended matrix.
type Partition struct {
	Number   uint8
	Fraction uint8
}

// ParsePartition parses a partition formatted as "k/n".
func ParsePartition(s string) (Partition, error) {
	num, frac, ok := strings.Cut(s, "/")
	if !ok {
		return Partition{}, errInvalidPartition
	}
	k, err := strconv.ParseUint(strings.TrimSpace(num), 10, 8)
	if err != nil {
		return Partition{}, fmt.Errorf("%w: %w", errInvalidPartition, err)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(frac), 10, 8)
	if err != nil {
		return Partition{}, fmt.Errorf("%w: %w", errInvalidPartition, err)
	}
	if k == 0 || n == 0 || k > n {
		return Partition{}, errInvalidPartition
	}
	return Partition{Number: uint8(k), Fraction: uint8(n)}, nil
}

// Range returns the half-open range of row-major cell indexes the partition covers in a matrix of
// total cells. Ranges of all partitions of a fraction are disjoint and cover the matrix.
func (p Partition) Range(total int) (start, end int) {
	start = total * int(p.Number-1) / int(p.Fraction)
	end = total * int(p.Number) / int(p.Fraction)
	return start, end
}

func (p Partition) String() string {
	return fmt.Sprintf("%d/%d", p.Number, p.Fraction)
}
