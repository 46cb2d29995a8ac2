package models

import (
	"fmt"

	"github.com/marshallshelly/cultivar/pkg/registry"
	"github.com/marshallshelly/cultivar/pkg/schema"
)

func init() {
	schema.RegisterTableName("Grower", "growers")
	schema.RegisterTableName("Strain", "strains")
	schema.RegisterTableName("Batch", "batches")
	schema.RegisterTableName("Terpenes", "terpenes")
	schema.RegisterTableName("BatchResponse", "batch_responses")
}

// RegisterAll registers every persisted model.
func RegisterAll() error {
	models := []interface{}{
		Grower{},
		Strain{},
		Batch{},
		Terpenes{},
	}

	for _, model := range models {
		if err := registry.Register(model); err != nil {
			return err
		}
	}

	return nil
}

// Tables returns the persisted tables ordered so that referenced tables come
// first. Views such as BatchResponse are excluded.
func Tables() ([]*schema.TableMetadata, error) {
	if err := RegisterAll(); err != nil {
		return nil, fmt.Errorf("failed to register models: %w", err)
	}
	ordered, err := registry.Ordered()
	if err != nil {
		return nil, err
	}

	persisted := make([]*schema.TableMetadata, 0, len(ordered))
	for _, table := range ordered {
		if table.PrimaryKey != nil {
			persisted = append(persisted, table)
		}
	}
	return persisted, nil
}
