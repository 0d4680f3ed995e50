package commons

import (
	"fmt"
	"os"

	"frontdash/internal/domain"

	"go.yaml.in/yaml/v3"
)

type seedFile struct {
	Orders []domain.Order `yaml:"orders"`
}

// LoadSeedOrders reads demo orders from a YAML file, most recent first.
func LoadSeedOrders(path string) ([]domain.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	return seed.Orders, nil
}
