package factories

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/faldi95/supplynet/internal/models"
	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type LocationResolver interface {
	Resolve(ctx context.Context, name string) models.Location
}

type CustomerFactory struct {
	rng      *rand.Rand
	fake     faker.Faker
	cities   []string
	resolver LocationResolver
	logger   *zap.SugaredLogger

	// Progress is advanced once per customer when set.
	Progress *progressbar.ProgressBar
}

func NewCustomerFactory(seed int64, cities []string, resolver LocationResolver, logger *zap.SugaredLogger) *CustomerFactory {
	return &CustomerFactory{
		rng:      rand.New(rand.NewSource(seed)),
		fake:     faker.NewWithSeed(rand.NewSource(seed)),
		cities:   cities,
		resolver: resolver,
		logger:   logger,
	}
}

// SampleCities draws n home cities. Up to len(cities) they are distinct; past that
// the draw is with replacement and repeated is true.
func (cf *CustomerFactory) SampleCities(n int) (sampled []string, repeated bool) {
	if n <= 0 || len(cf.cities) == 0 {
		return nil, false
	}

	sampled = make([]string, n)
	if n <= len(cf.cities) {
		perm := cf.rng.Perm(len(cf.cities))
		for i := 0; i < n; i++ {
			sampled[i] = cf.cities[perm[i]]
		}
		return sampled, false
	}

	for i := 0; i < n; i++ {
		sampled[i] = cf.cities[cf.rng.Intn(len(cf.cities))]
	}
	return sampled, true
}

func (cf *CustomerFactory) randomDemand() int {
	return models.MinDemand + cf.rng.Intn(models.MaxDemand-models.MinDemand+1)
}

func CustomerID(index int) string {
	return fmt.Sprintf("%s%d", models.CustomerIDPrefix, index)
}

// CreateCustomers generates n customers and geocodes their home cities. Customers
// whose city cannot be resolved are dropped, so fewer than n may be returned.
func (cf *CustomerFactory) CreateCustomers(ctx context.Context, n int) []models.Customer {
	cities, repeated := cf.SampleCities(n)
	if repeated {
		cf.logger.Warnf("More customers (%d) than unique cities (%d) requested, cities will repeat", n, len(cf.cities))
	}

	customers := make([]models.Customer, 0, len(cities))
	for i, city := range cities {
		customer := models.Customer{
			ID:     CustomerID(i + 1),
			Name:   cf.fake.Person().Name(),
			City:   city,
			Demand: cf.randomDemand(),
		}

		if cf.Progress != nil {
			cf.logger.Debugf("Geocoding customer %d/%d in %s", i+1, len(cities), city)
		} else {
			cf.logger.Infof("Geocoding customer %d/%d in %s", i+1, len(cities), city)
		}

		customer.Location = cf.resolver.Resolve(ctx, city)
		if cf.Progress != nil {
			_ = cf.Progress.Add(1)
		}
		if !customer.Location.Resolved() {
			cf.logger.Warnf("Skipping customer %s in %s (no coordinates)", customer.ID, city)
			continue
		}
		customers = append(customers, customer)
	}

	return customers
}
