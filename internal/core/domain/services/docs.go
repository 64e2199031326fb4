// Package services holds the pure domain services of the brokerage engine:
// rules that read more than one aggregate and own no state.
//
// The package includes:
//   - EligibilityFilter: decides whether a carrier may bid on a load
//   - ComplianceChecker: evaluates a carrier's document set
//   - VisibilityProjector: redacts loads per actor role
//   - CodeGenerator: mints pickup codes and invoice numbers
//
// None of the services touch storage. Callers load the aggregates, ask the
// service, and persist whatever they decide to change.
package services
