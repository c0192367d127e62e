package repositories

import "errors"

// ErrProductNotOwned is returned when a seller mutates a product belonging to
// another seller.
var ErrProductNotOwned = errors.New("repositories: product not owned by seller")
