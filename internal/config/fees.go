package config

import (
	"fmt"
	"os"

	"github.com/nikolayk812/grocery-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// feesFile mirrors the YAML fee policy. Absent keys keep the default policy values;
// deliveryTiers replaces the default tiers as a whole.
type feesFile struct {
	Currency       *string        `yaml:"currency"`
	DeliveryTiers  []deliveryTier `yaml:"deliveryTiers"`
	ServiceFeeRate *string        `yaml:"serviceFeeRate"`
	MinServiceFee  *string        `yaml:"minServiceFee"`
}

type deliveryTier struct {
	MinSubtotal string `yaml:"minSubtotal"`
	Fee         string `yaml:"fee"`
}

// LoadFeePolicy returns the default policy when path is empty.
func LoadFeePolicy(path string) (domain.FeePolicy, error) {
	policy := domain.DefaultFeePolicy()
	if path == "" {
		return policy, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.FeePolicy{}, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	var ff feesFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil {
		return domain.FeePolicy{}, fmt.Errorf("yaml.Decode: %w", err)
	}

	if ff.Currency != nil {
		unit, err := currency.ParseISO(*ff.Currency)
		if err != nil {
			return domain.FeePolicy{}, fmt.Errorf("currency[%s] is not valid: %w", *ff.Currency, err)
		}
		policy.Currency = unit
	}

	if len(ff.DeliveryTiers) > 0 {
		tiers := make([]domain.DeliveryTier, 0, len(ff.DeliveryTiers))
		for i, t := range ff.DeliveryTiers {
			minSubtotal, err := decimal.NewFromString(t.MinSubtotal)
			if err != nil {
				return domain.FeePolicy{}, fmt.Errorf("deliveryTiers[%d].minSubtotal: %w", i, err)
			}
			fee, err := decimal.NewFromString(t.Fee)
			if err != nil {
				return domain.FeePolicy{}, fmt.Errorf("deliveryTiers[%d].fee: %w", i, err)
			}
			tiers = append(tiers, domain.DeliveryTier{MinSubtotal: minSubtotal, Fee: fee})
		}
		domain.SortTiers(tiers)
		policy.DeliveryTiers = tiers
	}

	if ff.ServiceFeeRate != nil {
		if policy.ServiceFeeRate, err = decimal.NewFromString(*ff.ServiceFeeRate); err != nil {
			return domain.FeePolicy{}, fmt.Errorf("serviceFeeRate: %w", err)
		}
	}
	if ff.MinServiceFee != nil {
		if policy.MinServiceFee, err = decimal.NewFromString(*ff.MinServiceFee); err != nil {
			return domain.FeePolicy{}, fmt.Errorf("minServiceFee: %w", err)
		}
	}

	if err := policy.Validate(); err != nil {
		return domain.FeePolicy{}, fmt.Errorf("policy.Validate: %w", err)
	}

	return policy, nil
}
