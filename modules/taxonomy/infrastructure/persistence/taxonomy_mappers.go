package persistence

import (
	"github.com/greenweave/greenweave/modules/taxonomy/domain/taxonomy"
	"github.com/greenweave/greenweave/modules/taxonomy/infrastructure/persistence/models"
	"github.com/greenweave/greenweave/pkg/mapping"
)

func toDomainEntry(row *models.Entry) *taxonomy.Entry {
	return &taxonomy.Entry{
		Code:        row.Code,
		Name:        row.Name,
		Description: mapping.SQLNullStringToValue(row.Description),
	}
}

func toDomainIndicator(row *models.Indicator) *taxonomy.Indicator {
	return &taxonomy.Indicator{
		Code:        row.Code,
		Name:        row.Name,
		Unit:        mapping.SQLNullStringToValue(row.Unit),
		Kind:        taxonomy.IndicatorKind(row.Kind),
		Axis:        taxonomy.Axis(row.Axis),
		Aggregation: taxonomy.Aggregation(row.Aggregation),
		Frequency:   taxonomy.Frequency(row.Frequency),
	}
}
