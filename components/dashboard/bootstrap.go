package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAreas ensures the dashboard areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return fmt.Errorf("dashboard: register area %s: %w", area.Code, err)
		}
	}
	return nil
}

// RegisterDefinitions registers the built-in widget definitions with the
// store and, when given, the registry.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, def := range DefaultWidgetDefinitions() {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return fmt.Errorf("dashboard: register definition %s: %w", def.Code, err)
		}
		if registry == nil {
			continue
		}
		if _, ok := registry.Definition(def.Code); ok {
			continue
		}
		if err := registry.RegisterDefinition(def); err != nil {
			return fmt.Errorf("dashboard: register definition in registry %s: %w", def.Code, err)
		}
	}
	return nil
}

// SeedLayout creates the starter widget assignments. Every seed is
// attempted; failures are joined.
func SeedLayout(ctx context.Context, service *Service) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	var seedErr error
	for _, req := range DefaultSeedWidgets() {
		if err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	return seedErr
}

// Bootstrap registers areas and definitions then seeds the default layout.
func Bootstrap(ctx context.Context, store WidgetStore, registry ProviderRegistry, service *Service) error {
	if err := RegisterAreas(ctx, store); err != nil {
		return err
	}
	if err := RegisterDefinitions(ctx, store, registry); err != nil {
		return err
	}
	return SeedLayout(ctx, service)
}
