package persistence

import (
	"testing"

	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                    "DESC",
		"asc":                 "ASC",
		"  ASC ":              "ASC",
		"desc":                "DESC",
		"ASC; DROP TABLE x--": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	t.Run("contract columns", func(t *testing.T) {
		assert.Equal(t, "contract_value", ValidateSortField("contract_value", ContractSortFields, "created_at"))
		assert.Equal(t, "signed_date", ValidateSortField(" signed_date ", ContractSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("customer_code", ContractSortFields, "created_at"))
	})

	t.Run("customer columns", func(t *testing.T) {
		assert.Equal(t, "customer_code", ValidateSortField("customer_code", CustomerSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("contract_no", CustomerSortFields, "created_at"))
		assert.Equal(t, "created_at", ValidateSortField("", CustomerSortFields, "created_at"))
	})

	t.Run("rejects expressions", func(t *testing.T) {
		assert.Equal(t, "created_at", ValidateSortField("name; DELETE FROM contracts", CustomerSortFields, "created_at"))
	})
}

func TestOrderAndPage(t *testing.T) {
	db := setupTestDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []models.ContractModel
		return orderAndPage(tx.Model(&models.ContractModel{}), shared.Filter{
			OrderBy:  "contract_value",
			OrderDir: "asc",
			Page:     3,
			PageSize: 20,
		}, ContractSortFields, "contracts").Find(&rows)
	})
	assert.Contains(t, sql, "ORDER BY contracts.contract_value ASC,contracts.id")
	assert.Contains(t, sql, "LIMIT 20 OFFSET 40")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []models.CustomerModel
		return orderAndPage(tx.Model(&models.CustomerModel{}), shared.Filter{OrderBy: "password"}, CustomerSortFields, "").Find(&rows)
	})
	assert.Contains(t, sql, "ORDER BY created_at DESC,id")
	assert.NotContains(t, sql, "LIMIT")
}
