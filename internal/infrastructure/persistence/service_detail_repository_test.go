package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ipshield/backend/internal/domain/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormServiceDetailRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormServiceDetailRepository(db)
	ctx := context.Background()
	contractID := uuid.New()

	t.Run("empty contract loads empty details", func(t *testing.T) {
		details, err := repo.Load(ctx, contractID)
		require.NoError(t, err)
		assert.Empty(t, details.Trademarks)
		assert.Empty(t, details.Copyrights)
		assert.Nil(t, details.BusinessRegistration)
	})

	t.Run("trademarks keep their order", func(t *testing.T) {
		require.NoError(t, repo.Replace(ctx, contractID, &contract.ServiceDetails{
			Trademarks: []contract.TrademarkService{
				{Applicant: "Công ty Sao Mai", TrademarkName: "SAO MAI", Classification: "30"},
				{Applicant: "Công ty Sao Mai", TrademarkName: "SAO MAI GOLD", Classification: "30, 43"},
			},
		}))

		details, err := repo.Load(ctx, contractID)
		require.NoError(t, err)
		require.Len(t, details.Trademarks, 2)
		assert.Equal(t, "SAO MAI", details.Trademarks[0].TrademarkName)
		assert.Equal(t, "SAO MAI GOLD", details.Trademarks[1].TrademarkName)
		assert.Equal(t, contractID, details.Trademarks[1].ContractID)
		assert.NotEqual(t, uuid.Nil, details.Trademarks[0].ID)
	})

	t.Run("replace keeps ids and certificate keys it is given", func(t *testing.T) {
		details, err := repo.Load(ctx, contractID)
		require.NoError(t, err)
		keepID := details.Trademarks[1].ID
		details.Trademarks = details.Trademarks[1:]
		details.Trademarks[0].CertificateKey = "contracts/x/certificate.pdf"

		require.NoError(t, repo.Replace(ctx, contractID, details))

		reloaded, err := repo.Load(ctx, contractID)
		require.NoError(t, err)
		require.Len(t, reloaded.Trademarks, 1)
		assert.Equal(t, keepID, reloaded.Trademarks[0].ID)
		assert.Equal(t, "contracts/x/certificate.pdf", reloaded.Trademarks[0].CertificateKey)
		assert.Equal(t, []string{"contracts/x/certificate.pdf"}, reloaded.CertificateKeys())
	})

	t.Run("one-to-one details", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, repo.Replace(ctx, other, &contract.ServiceDetails{
			BusinessRegistration: &contract.BusinessRegistrationService{CompanyName: "Công ty TNHH Ánh Dương", TaxCode: "0312345678"},
		}))
		require.NoError(t, repo.Replace(ctx, other, &contract.ServiceDetails{
			BusinessRegistration: &contract.BusinessRegistrationService{CompanyName: "Công ty CP Ánh Dương", TaxCode: "0312345678"},
		}))

		details, err := repo.Load(ctx, other)
		require.NoError(t, err)
		require.NotNil(t, details.BusinessRegistration)
		assert.Equal(t, "Công ty CP Ánh Dương", details.BusinessRegistration.CompanyName)
		assert.Nil(t, details.Investment)
		assert.Nil(t, details.Other)

		require.NoError(t, repo.Replace(ctx, other, nil))
		cleared, err := repo.Load(ctx, other)
		require.NoError(t, err)
		assert.Nil(t, cleared.BusinessRegistration)
	})
}
