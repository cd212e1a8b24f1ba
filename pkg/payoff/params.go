// Package payoff turns uniform sample points into discounted Asian
// option payoffs via a geometric-Brownian-motion path construction.
package payoff

import (
	"fmt"

	"github.com/lowdisc/qmcpricer/pkg/validation"
)

// AssetPathParams describes the simulated asset and its monitoring grid.
// Times are year fractions, strictly increasing and positive.
type AssetPathParams struct {
	InitPrice float64
	Rate      float64
	Vol       float64
	Times     []float64
}

// Validate rejects parameter combinations before any sampling begins.
func (p AssetPathParams) Validate() error {
	if err := validation.ValidateAssetParams(p.InitPrice, p.Vol); err != nil {
		return err
	}
	return validation.ValidateMonitoringTimes(p.Times)
}

// Maturity returns the last monitoring time.
func (p AssetPathParams) Maturity() float64 {
	return p.Times[len(p.Times)-1]
}

// MeanKind selects the averaging applied to monitored prices.
type MeanKind string

const (
	MeanArithmetic MeanKind = "arithmetic"
	MeanGeometric  MeanKind = "geometric"
)

// OptionKind selects the payoff direction.
type OptionKind string

const (
	OptionCall OptionKind = "call"
	OptionPut  OptionKind = "put"
)

// PayoffParams describes the option written on the averaged price.
type PayoffParams struct {
	Mean   MeanKind
	Kind   OptionKind
	Strike float64
}

// Validate rejects malformed payoff parameters.
func (p PayoffParams) Validate() error {
	switch p.Mean {
	case MeanArithmetic, MeanGeometric:
	default:
		return fmt.Errorf("unknown mean kind %q (want arithmetic or geometric)", p.Mean)
	}
	switch p.Kind {
	case OptionCall, OptionPut:
	default:
		return fmt.Errorf("unknown option kind %q (want call or put)", p.Kind)
	}
	return validation.ValidateStrike(p.Strike)
}

// Construction selects how uniform coordinates are mapped onto a
// Brownian path.
type Construction string

const (
	// Sequential builds the path increment by increment.
	Sequential Construction = "sequential"

	// PrincipalComponent concentrates the path's variance into the first
	// few coordinates, reducing the effective dimension seen by
	// low-discrepancy sequences.
	PrincipalComponent Construction = "pca"
)

// ParseConstruction converts a configuration string into a Construction.
func ParseConstruction(s string) (Construction, error) {
	switch Construction(s) {
	case Sequential, PrincipalComponent:
		return Construction(s), nil
	case "":
		return Sequential, nil
	}
	return "", fmt.Errorf("unknown path construction %q (want sequential or pca)", s)
}
