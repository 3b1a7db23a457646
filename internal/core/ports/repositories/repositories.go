package repositories

// RepositoryProvider bundles the persistence gateway implementations handed
// to the service container. Both storage backends (jsonfile, pgsql) satisfy
// the same facades.
type RepositoryProvider struct {
	UserRepo      UserRepositoryFacade
	PortfolioRepo PortfolioRepositoryFacade
	RatesRepo     RatesRepositoryFacade
}
