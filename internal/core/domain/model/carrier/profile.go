package carrier

import (
	"errors"
	"slices"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrProfileIsNotConstructed = errors.New("Profile must be created via NewProfile constructor")

const (
	MinScore = 0
	MaxScore = 100
)

// Scores are the carrier's performance ratings, each between MinScore and MaxScore.
type Scores struct {
	Reliability   int
	Communication int
	OnTime        int
}

func (s Scores) Validate() error {
	check := func(name string, v int) error {
		if v < MinScore || v > MaxScore {
			return errs.NewValueIsOutOfRangeError(name, v, MinScore, MaxScore)
		}
		return nil
	}
	return errors.Join(
		check("reliability", s.Reliability),
		check("communication", s.Communication),
		check("onTime", s.OnTime),
	)
}

// Profile is the read-only view of a carrier used by eligibility checks.
type Profile struct {
	carrierID    kernel.UUID
	scores       Scores
	serviceZones []string
	truckTypes   []string
	fleetSize    int
	verified     bool
	guard        guard.ConstructorGuard
}

func NewProfile(
	carrierID kernel.UUID,
	scores Scores,
	serviceZones, truckTypes []string,
	fleetSize int,
	verified bool,
) (*Profile, error) {
	if err := errors.Join(carrierID.Validate(), scores.Validate()); err != nil {
		return nil, err
	}
	if fleetSize < 0 {
		return nil, errs.NewValueIsOutOfRangeError("fleetSize", fleetSize, 0, "unbounded")
	}
	return &Profile{
		carrierID:    carrierID,
		scores:       scores,
		serviceZones: normalize(serviceZones),
		truckTypes:   normalize(truckTypes),
		fleetSize:    fleetSize,
		verified:     verified,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (p *Profile) Validate() error {
	if p == nil {
		return ErrProfileIsNotConstructed
	}
	return p.guard.Validate(ErrProfileIsNotConstructed)
}

func (p *Profile) CarrierID() kernel.UUID { return p.carrierID }
func (p *Profile) Scores() Scores         { return p.scores }
func (p *Profile) ServiceZones() []string { return slices.Clone(p.serviceZones) }
func (p *Profile) TruckTypes() []string   { return slices.Clone(p.truckTypes) }
func (p *Profile) FleetSize() int         { return p.fleetSize }
func (p *Profile) IsVerified() bool       { return p.verified }

// ServesZone matches case-insensitively. A carrier without declared zones
// serves none.
func (p *Profile) ServesZone(zone string) bool {
	return slices.Contains(p.serviceZones, strings.ToLower(strings.TrimSpace(zone)))
}

func (p *Profile) OperatesTruckType(truckType string) bool {
	return slices.Contains(p.truckTypes, strings.ToLower(strings.TrimSpace(truckType)))
}

func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
