package protocol

import (
	"github.com/shopspring/decimal"

	"github.com/0ji3/a2a-supply-chain-project/core/currency"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Scheme is the charging policy of a request, fixed at creation.
//
//   - SchemeExact: flat fee; the provider is expected to charge exactly
//     the base amount.
//   - SchemeUpto: base fee plus a usage-proportional surcharge, capped
//     at the request's cap amount.
//   - SchemeDeferred: flat fee. Settlement is billed immediately; true
//     end-of-session batching is not implemented.
type Scheme string

const (
	SchemeExact    Scheme = "exact"
	SchemeUpto     Scheme = "upto"
	SchemeDeferred Scheme = "deferred"
)

// Schemes lists every known scheme
func Schemes() []Scheme {
	return []Scheme{SchemeExact, SchemeUpto, SchemeDeferred}
}

// String returns the wire tag
func (s Scheme) String() string {
	return string(s)
}

// Validate checks that the scheme is a known variant
func (s Scheme) Validate() error {
	switch s {
	case SchemeExact, SchemeUpto, SchemeDeferred:
		return nil
	default:
		return errors.Newf(errors.TypeInput, "unknown payment scheme: %q", string(s))
	}
}

// ParseScheme parses a wire tag into a Scheme
func ParseScheme(tag string) (Scheme, error) {
	s := Scheme(tag)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// ActualCost computes the display-unit amount a provider may charge for
// the given usage under this scheme.
//
// EXACT and DEFERRED charge the flat base cost. UPTO charges the base
// cost plus ratePer1000 for every 1000 usage units consumed.
func (s Scheme) ActualCost(baseCost, ratePer1000 decimal.Decimal, usageUnits int64) (decimal.Decimal, error) {
	switch s {
	case SchemeExact, SchemeDeferred:
		return baseCost, nil
	case SchemeUpto:
		surcharge := decimal.NewFromInt(usageUnits).
			Div(decimal.NewFromInt(1000)).
			Mul(ratePer1000)
		return baseCost.Add(surcharge), nil
	default:
		return decimal.Zero, errors.Newf(errors.TypeInput, "unknown payment scheme: %q", string(s))
	}
}

// checkResponse validates a response amount against the request under
// this scheme. A warning string is returned for accepted-but-suspicious
// amounts; a non-nil error rejects the response before any transaction
// is created.
func (s Scheme) checkResponse(req *Request, resp *Response) (warning string, err error) {
	switch s {
	case SchemeExact:
		// Flat fee. The provider's stated amount is accepted even on
		// mismatch; callers wanting hard enforcement opt into strict
		// mode on the client.
		if resp.ActualAmount.Cmp(req.BaseAmount) != 0 {
			warning = "exact scheme amount mismatch: expected " +
				currency.ToDecimal(req.BaseAmount).String() + " " + currency.Symbol +
				", got " + currency.ToDecimal(resp.ActualAmount).String() + " " + currency.Symbol
		}
		return warning, nil

	case SchemeUpto:
		if req.CapAmount != nil && resp.ActualAmount.Cmp(req.CapAmount) > 0 {
			return "", errors.AmountExceeded(
				"amount exceeds maximum: " +
					currency.ToDecimal(resp.ActualAmount).String() + " " + currency.Symbol +
					" > " + currency.ToDecimal(req.CapAmount).String() + " " + currency.Symbol)
		}
		return "", nil

	case SchemeDeferred:
		// Flat fee billed immediately; no cap applies.
		return "", nil

	default:
		return "", errors.Newf(errors.TypeInput, "unknown payment scheme: %q", string(s))
	}
}
