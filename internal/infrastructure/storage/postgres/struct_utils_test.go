package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleettrack/internal/core/entity"
	"fleettrack/internal/core/id"
)

type mockCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "org_id", "deletion_mark", "version", "code", "name"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	orgID := id.New()
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				OrgID:        orgID,
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "B123XYZ",
		Name: "DAF XF",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, orgID, m["org_id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "B123XYZ", m["code"])
	assert.Equal(t, "DAF XF", m["name"])
}
