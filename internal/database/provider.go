package database

import (
	"context"
	"fmt"
)

var (
	postgresCatalogStore      func() CatalogStore
	postgresAdStore           func() AdStore
	postgresVersionStore      func() VersionStore
	postgresReviewStore       func() ReviewStore
	postgresNotificationStore func() NotificationStore
	postgresInitialized       bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(
	catalog func() CatalogStore,
	ads func() AdStore,
	versions func() VersionStore,
) {
	postgresCatalogStore = catalog
	postgresAdStore = ads
	postgresVersionStore = versions
	postgresInitialized = true
}

// RegisterCatalogStore replaces the CatalogStore constructor.
func RegisterCatalogStore(store func() CatalogStore) {
	postgresCatalogStore = store
}

// RegisterAdStore replaces the AdStore constructor.
func RegisterAdStore(store func() AdStore) {
	postgresAdStore = store
}

// RegisterVersionStore replaces the VersionStore constructor.
func RegisterVersionStore(store func() VersionStore) {
	postgresVersionStore = store
}

// RegisterReviewStore registers the ReviewStore constructor.
func RegisterReviewStore(store func() ReviewStore) {
	postgresReviewStore = store
}

// RegisterNotificationStore registers the NotificationStore constructor.
func RegisterNotificationStore(store func() NotificationStore) {
	postgresNotificationStore = store
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	return postgresInitialized
}

// ResetForTesting clears every registered constructor.
func ResetForTesting() {
	postgresCatalogStore = nil
	postgresAdStore = nil
	postgresVersionStore = nil
	postgresReviewStore = nil
	postgresNotificationStore = nil
	postgresInitialized = false
}

func errNotInitialized() error {
	return fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
}

// GetCatalogStore returns a CatalogStore from the PostgreSQL backend
func GetCatalogStore(ctx context.Context) (CatalogStore, error) {
	if !postgresInitialized {
		return nil, errNotInitialized()
	}
	if postgresCatalogStore == nil {
		return nil, fmt.Errorf("PostgreSQL catalog store not registered")
	}
	return postgresCatalogStore(), nil
}

// GetAdStore returns an AdStore from the PostgreSQL backend
func GetAdStore(ctx context.Context) (AdStore, error) {
	if !postgresInitialized {
		return nil, errNotInitialized()
	}
	if postgresAdStore == nil {
		return nil, fmt.Errorf("PostgreSQL ad store not registered")
	}
	return postgresAdStore(), nil
}

// GetVersionStore returns a VersionStore from the PostgreSQL backend
func GetVersionStore(ctx context.Context) (VersionStore, error) {
	if !postgresInitialized {
		return nil, errNotInitialized()
	}
	if postgresVersionStore == nil {
		return nil, fmt.Errorf("PostgreSQL version store not registered")
	}
	return postgresVersionStore(), nil
}

// GetReviewStore returns a ReviewStore from the PostgreSQL backend
func GetReviewStore(ctx context.Context) (ReviewStore, error) {
	if !postgresInitialized {
		return nil, errNotInitialized()
	}
	if postgresReviewStore == nil {
		return nil, fmt.Errorf("PostgreSQL review store not registered")
	}
	return postgresReviewStore(), nil
}

// GetNotificationStore returns a NotificationStore from the PostgreSQL backend
func GetNotificationStore(ctx context.Context) (NotificationStore, error) {
	if !postgresInitialized {
		return nil, errNotInitialized()
	}
	if postgresNotificationStore == nil {
		return nil, fmt.Errorf("PostgreSQL notification store not registered")
	}
	return postgresNotificationStore(), nil
}
