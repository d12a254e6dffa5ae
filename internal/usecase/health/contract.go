package health

import "context"

// Pinger checks cache availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks availability of a storage or provider component.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
