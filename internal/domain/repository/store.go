package repository

import "context"

// Store is the single transactional ledger store. Repositories obtained from the tx
// handle passed to fn commit or roll back together.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Airlines() AirlineRepository
	Flights() FlightRepository
	Policies() PolicyRepository
	Oracles() OracleRepository
	Credits() CreditRepository
	Settings() SettingsRepository
}
