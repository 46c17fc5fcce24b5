package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rpgo/valuation-engine/internal/domain"
)

// LoadPolicies dispatches to the binary or CSV loader based on file
// extension, guaranteeing both variants produce identical in-memory state
//.
func LoadPolicies(path string) ([]domain.Policy, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadPoliciesCSV(path)
	default:
		return loadPoliciesBinary(path)
	}
}

func loadPoliciesBinary(path string) ([]domain.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	if len(data)%domain.PolicyRecordSize != 0 {
		return nil, fmt.Errorf("policy file %s size %d is not a multiple of record size %d", path, len(data), domain.PolicyRecordSize)
	}

	count := len(data) / domain.PolicyRecordSize
	policies := make([]domain.Policy, count)
	for i := 0; i < count; i++ {
		p, err := domain.DecodePolicyBinary(data[i*domain.PolicyRecordSize:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode policy record %d: %w", i, err)
		}
		policies[i] = p
	}
	return policies, nil
}

// policyCSVColumns is the required field order: policy_id, age, gender,
// product, underwriting, sum_assured, premium, term.
var policyCSVColumns = []string{
	"policy_id", "age", "gender", "product", "underwriting", "sum_assured", "premium", "term",
}

func loadPoliciesCSV(path string) ([]domain.Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy CSV %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read policy CSV header: %w", err)
	}
	idx, err := columnIndex(header, policyCSVColumns)
	if err != nil {
		return nil, fmt.Errorf("policy CSV %s: %w", path, err)
	}

	var policies []domain.Policy
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read policy CSV record: %w", err)
		}

		policyID, err := strconv.ParseUint(rec[idx["policy_id"]], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid policy_id %q: %w", rec[idx["policy_id"]], err)
		}
		age, err := strconv.ParseUint(rec[idx["age"]], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid age %q: %w", rec[idx["age"]], err)
		}
		gender, err := parseGender(rec[idx["gender"]])
		if err != nil {
			return nil, err
		}
		product, err := parseProduct(rec[idx["product"]])
		if err != nil {
			return nil, err
		}
		underwriting, err := parseUnderwriting(rec[idx["underwriting"]])
		if err != nil {
			return nil, err
		}
		sumAssured, err := strconv.ParseFloat(rec[idx["sum_assured"]], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid sum_assured %q: %w", rec[idx["sum_assured"]], err)
		}
		premium, err := strconv.ParseFloat(rec[idx["premium"]], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid premium %q: %w", rec[idx["premium"]], err)
		}
		term, err := strconv.ParseUint(rec[idx["term"]], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid term %q: %w", rec[idx["term"]], err)
		}

		policies = append(policies, domain.Policy{
			ID:           uint32(policyID),
			Age:          uint8(age),
			Gender:       gender,
			Product:      product,
			Underwriting: underwriting,
			SumAssured:   float32(sumAssured),
			Premium:      float32(premium),
			Term:         uint16(term),
		})
	}
	return policies, nil
}

func columnIndex(header, want []string) (map[string]int, error) {
	idx := make(map[string]int, len(want))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("missing required column %q", w)
		}
	}
	return idx, nil
}

func parseGender(s string) (domain.Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "male", "m":
		return domain.Male, nil
	case "1", "female", "f":
		return domain.Female, nil
	default:
		return 0, fmt.Errorf("invalid gender %q", s)
	}
}

func parseProduct(s string) (domain.ProductTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "term":
		return domain.Term, nil
	case "1", "whole", "whole-life", "whole_life":
		return domain.WholeLife, nil
	case "2", "endow", "endowment":
		return domain.Endowment, nil
	case "3", "annuity":
		return domain.Annuity, nil
	default:
		return 0, fmt.Errorf("invalid product %q", s)
	}
}

func parseUnderwriting(s string) (domain.UnderwritingClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "std", "standard":
		return domain.Standard, nil
	case "1", "preferred":
		return domain.Preferred, nil
	case "2", "smoker":
		return domain.Smoker, nil
	case "3", "substandard":
		return domain.Substandard, nil
	default:
		return 0, fmt.Errorf("invalid underwriting class %q", s)
	}
}

// DumpPoliciesCSV writes policies back out in the same column order, used
// by the binary-to-CSV round-trip test.
func DumpPoliciesCSV(path string, policies []domain.Policy) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create policy CSV %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(policyCSVColumns); err != nil {
		return err
	}
	for _, p := range policies {
		rec := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			strconv.FormatUint(uint64(p.Age), 10),
			strconv.FormatUint(uint64(p.Gender), 10),
			strconv.FormatUint(uint64(p.Product), 10),
			strconv.FormatUint(uint64(p.Underwriting), 10),
			strconv.FormatFloat(float64(p.SumAssured), 'f', -1, 32),
			strconv.FormatFloat(float64(p.Premium), 'f', -1, 32),
			strconv.FormatUint(uint64(p.Term), 10),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// DumpPoliciesBinary writes policies back out in the packed binary layout,
// used by the CSV-to-binary round-trip test.
func DumpPoliciesBinary(path string, policies []domain.Policy) error {
	buf := make([]byte, len(policies)*domain.PolicyRecordSize)
	for i, p := range policies {
		if err := p.EncodeBinary(buf[i*domain.PolicyRecordSize:]); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf, 0o644)
}
