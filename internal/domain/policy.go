// Package domain defines the data model of a valuation job: policies,
// assumption tables, economic scenario parameters, and the results a
// run produces. Types here are immutable for the lifetime of a job.
package domain

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Gender selects the mortality table column for a policy.
type Gender uint8

const (
	Male Gender = iota
	Female
)

// ProductTag selects the cashflow pattern applied in the projection kernel.
type ProductTag uint8

const (
	Term ProductTag = iota
	WholeLife
	Endowment
	Annuity
)

// UnderwritingClass is carried on the record but does not itself alter the
// kernel's cashflow formulas; it exists for downstream reporting and for
// mortality-multiplier policies applied upstream of a job.
type UnderwritingClass uint8

const (
	Standard UnderwritingClass = iota
	Preferred
	Smoker
	Substandard
)

// PolicyRecordSize is the fixed, 16-byte-aligned width of one binary policy
// record: id, age, gender, product, underwriting, sum assured, premium,
// term, followed by reserved and padding bytes.
const PolicyRecordSize = 32

// Policy is one fixed-width, immutable portfolio record.
type Policy struct {
	ID            uint32
	Age           uint8
	Gender        Gender
	Product       ProductTag
	Underwriting  UnderwritingClass
	SumAssured    float32
	Premium       float32
	Term          uint16
}

// Validate checks the bounds a policy record must satisfy before it can
// enter a projection.
func (p Policy) Validate() error {
	if p.Age > 120 {
		return fmt.Errorf("policy %d: age %d out of range [0,120]", p.ID, p.Age)
	}
	if p.Gender != Male && p.Gender != Female {
		return fmt.Errorf("policy %d: invalid gender %d", p.ID, p.Gender)
	}
	if p.Product > Annuity {
		return fmt.Errorf("policy %d: invalid product tag %d", p.ID, p.Product)
	}
	if p.Underwriting > Substandard {
		return fmt.Errorf("policy %d: invalid underwriting class %d", p.ID, p.Underwriting)
	}
	if p.Term < 1 || p.Term > 50 {
		return fmt.Errorf("policy %d: term %d out of range [1,50]", p.ID, p.Term)
	}
	if p.SumAssured < 0 || math.IsNaN(float64(p.SumAssured)) || math.IsInf(float64(p.SumAssured), 0) {
		return fmt.Errorf("policy %d: invalid sum assured %v", p.ID, p.SumAssured)
	}
	if p.Premium < 0 || math.IsNaN(float64(p.Premium)) || math.IsInf(float64(p.Premium), 0) {
		return fmt.Errorf("policy %d: invalid premium %v", p.ID, p.Premium)
	}
	return nil
}

// EncodeBinary writes the packed, little-endian 32-byte record.
func (p Policy) EncodeBinary(dst []byte) error {
	if len(dst) < PolicyRecordSize {
		return fmt.Errorf("policy record buffer too small: need %d, got %d", PolicyRecordSize, len(dst))
	}
	binary.LittleEndian.PutUint32(dst[0:4], p.ID)
	dst[4] = byte(p.Age)
	dst[5] = byte(p.Gender)
	dst[6] = byte(p.Product)
	dst[7] = byte(p.Underwriting)
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(p.SumAssured))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(p.Premium))
	binary.LittleEndian.PutUint16(dst[16:18], p.Term)
	binary.LittleEndian.PutUint16(dst[18:20], 0) // reserved
	for i := 20; i < 32; i += 4 {
		binary.LittleEndian.PutUint32(dst[i:i+4], 0) // padding
	}
	return nil
}

// DecodePolicyBinary reads one packed 32-byte record.
func DecodePolicyBinary(src []byte) (Policy, error) {
	if len(src) < PolicyRecordSize {
		return Policy{}, fmt.Errorf("policy record buffer too small: need %d, got %d", PolicyRecordSize, len(src))
	}
	p := Policy{
		ID:           binary.LittleEndian.Uint32(src[0:4]),
		Age:          src[4],
		Gender:       Gender(src[5]),
		Product:      ProductTag(src[6]),
		Underwriting: UnderwritingClass(src[7]),
		SumAssured:   math.Float32frombits(binary.LittleEndian.Uint32(src[8:12])),
		Premium:      math.Float32frombits(binary.LittleEndian.Uint32(src[12:16])),
		Term:         binary.LittleEndian.Uint16(src[16:18]),
	}
	return p, nil
}
