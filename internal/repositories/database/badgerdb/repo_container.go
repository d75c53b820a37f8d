package badgerdb

import (
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	"github.com/dgraph-io/badger/v3"
)

func NewRepositoryProvider(db *badger.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CurrencyRepo:     newBadgerCurrencyRepository(db),
		ExchangeRateRepo: newBadgerExchangeRateRepository(db),
		ProviderRepo:     newBadgerProviderRepository(db),
	}
}
