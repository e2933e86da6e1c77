package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the encoding to change without collisions.
const (
	DomainPlan  = "precompute/plan/v1"
	DomainModel = "precompute/model/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
// The NUL separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanID computes the content-addressed identity of a plan.
// Plans that differ only in order-by get distinct IDs.
func PlanID(p *QueryPlan) (string, error) {
	if p == nil {
		return "", fmt.Errorf("PlanID: nil plan")
	}
	canonical, err := MarshalCanonical(p.ToIR())
	if err != nil {
		return "", fmt.Errorf("PlanID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// MustPlanID is PlanID for plans known to be well formed.
// Plans only hold strings, so encoding cannot fail for a non-nil plan.
func MustPlanID(p *QueryPlan) string {
	id, err := PlanID(p)
	if err != nil {
		panic(err)
	}
	return id
}

// ModelHash fingerprints a model's classes and fields, in model order.
func ModelHash(m *Model) (string, error) {
	classes := make(IRArray, len(m.Classes))
	for i, c := range m.Classes {
		extends := make(IRArray, len(c.Extends))
		for j, e := range c.Extends {
			extends[j] = IRString(e)
		}
		fields := make(IRArray, len(c.Fields))
		for j, f := range c.Fields {
			fields[j] = IRObject{
				"name": IRString(f.Name),
				"kind": IRString(string(f.Kind)),
				"type": IRString(f.Type),
			}
		}
		classes[i] = IRObject{
			"name":    IRString(c.Name),
			"extends": extends,
			"fields":  fields,
		}
	}

	canonical, err := MarshalCanonical(IRObject{
		"name":    IRString(m.Name),
		"classes": classes,
	})
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}
