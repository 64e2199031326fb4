package services

import (
	"fmt"

	"freight/internal/core/domain/model/carrier"
	"freight/internal/core/domain/model/load"
	"freight/internal/pkg/errs"
)

// PolicyMode controls how a soft eligibility check is applied.
type PolicyMode string

const (
	PolicyOff      PolicyMode = "off"
	PolicyAdvisory PolicyMode = "advisory"
	PolicyEnforced PolicyMode = "enforced"
)

func (m PolicyMode) Validate() error {
	switch m {
	case PolicyOff, PolicyAdvisory, PolicyEnforced:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("policyMode", fmt.Errorf("%q is not a policy mode", string(m)))
	}
}

// EligibilityPolicy names the soft checks and how strictly each is applied.
// Enforced failures block bidding; advisory failures only produce warnings.
type EligibilityPolicy struct {
	RequireVerified  PolicyMode
	MinReliability   PolicyMode
	ReliabilityFloor int
	ServiceZones     PolicyMode
	TruckType        PolicyMode
}

// DefaultEligibilityPolicy runs every soft check in advisory mode with a zero
// reliability floor.
func DefaultEligibilityPolicy() EligibilityPolicy {
	return EligibilityPolicy{
		RequireVerified:  PolicyAdvisory,
		MinReliability:   PolicyAdvisory,
		ReliabilityFloor: 0,
		ServiceZones:     PolicyAdvisory,
		TruckType:        PolicyAdvisory,
	}
}

func (p EligibilityPolicy) Validate() error {
	if p.ReliabilityFloor < carrier.MinScore || p.ReliabilityFloor > carrier.MaxScore {
		return errs.NewValueIsOutOfRangeError("reliabilityFloor", p.ReliabilityFloor, carrier.MinScore, carrier.MaxScore)
	}
	for _, m := range []PolicyMode{p.RequireVerified, p.MinReliability, p.ServiceZones, p.TruckType} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EligibilityResult is the verdict for one carrier against one load.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`
}

// EligibilityFilter decides whether a carrier may see and bid on a load.
//
// Hard rules come first: the load must be biddable, must not belong to another
// carrier, and the posting mode must admit the carrier. The soft checks follow
// and are governed by the policy. A carrier that already holds the load in an
// execution-phase state is always eligible, so it keeps seeing its own work.
//
// Example:
//
//	filter := NewEligibilityFilter(DefaultEligibilityPolicy())
//	res := filter.Check(profile, l)
//	if !res.Eligible {
//	    return fmt.Errorf("carrier cannot bid: %v", res.Reasons)
//	}
type EligibilityFilter struct {
	policy EligibilityPolicy
}

func NewEligibilityFilter(policy EligibilityPolicy) EligibilityFilter {
	return EligibilityFilter{policy: policy}
}

func (f EligibilityFilter) Policy() EligibilityPolicy {
	return f.policy
}

// Check evaluates the rules in order and collects every failure rather than
// stopping at the first one.
func (f EligibilityFilter) Check(profile *carrier.Profile, l *load.Load) EligibilityResult {
	res := EligibilityResult{Reasons: []string{}, Warnings: []string{}}
	carrierID := profile.CarrierID()

	if l.IsAssignedTo(carrierID) && l.Status().IsExecutionPhase() {
		res.Eligible = true
		return res
	}

	if !l.Status().IsBiddable() {
		res.Reasons = append(res.Reasons, fmt.Sprintf("load is %s, not open for bidding", l.Status()))
	}
	if l.AssignedCarrierID() != nil && !l.IsAssignedTo(carrierID) && l.Status().IsExecutionPhase() {
		res.Reasons = append(res.Reasons, "load is assigned to another carrier")
	}

	switch l.PostingMode() {
	case load.PostingInvite:
		if !l.IsInvited(carrierID) {
			res.Reasons = append(res.Reasons, "carrier is not invited to this load")
		}
	case load.PostingAssign:
		if !l.IsAssignedTo(carrierID) {
			res.Reasons = append(res.Reasons, "load is reserved for another carrier")
		}
	case load.PostingOpen:
	}

	lane := l.Lane()
	f.soft(&res, f.policy.RequireVerified, profile.IsVerified(), "carrier is not verified")
	f.soft(&res, f.policy.MinReliability, profile.Scores().Reliability >= f.policy.ReliabilityFloor,
		fmt.Sprintf("reliability %d is below %d", profile.Scores().Reliability, f.policy.ReliabilityFloor))
	f.soft(&res, f.policy.ServiceZones, profile.ServesZone(lane.OriginZone),
		fmt.Sprintf("carrier does not serve zone %s", lane.OriginZone))
	f.soft(&res, f.policy.TruckType, lane.TruckType == "" || profile.OperatesTruckType(lane.TruckType),
		fmt.Sprintf("carrier does not operate truck type %s", lane.TruckType))

	res.Eligible = len(res.Reasons) == 0
	return res
}

func (f EligibilityFilter) soft(res *EligibilityResult, mode PolicyMode, passed bool, message string) {
	if passed {
		return
	}
	switch mode {
	case PolicyEnforced:
		res.Reasons = append(res.Reasons, message)
	case PolicyAdvisory:
		res.Warnings = append(res.Warnings, message)
	case PolicyOff:
	}
}
