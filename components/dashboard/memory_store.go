package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// MemoryWidgetStore is a process-local WidgetStore.
type MemoryWidgetStore struct {
	mu           sync.Mutex
	areas        map[string]WidgetAreaDefinition
	definitions  map[string]WidgetDefinition
	instances    map[string]WidgetInstance
	assignments  map[string][]string
	nextInstance int
}

// NewMemoryWidgetStore builds an empty store.
func NewMemoryWidgetStore() *MemoryWidgetStore {
	return &MemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]WidgetInstance{},
		assignments: map[string][]string{},
	}
}

// EnsureArea stores def and reports whether it was new.
func (s *MemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition stores def and reports whether it was new.
func (s *MemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance stores a new widget instance with a sequential id.
func (s *MemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.definitions) > 0 {
		if _, ok := s.definitions[input.DefinitionID]; !ok {
			return WidgetInstance{}, fmt.Errorf("dashboard: widget definition %s not registered", input.DefinitionID)
		}
	}
	s.nextInstance++
	id := fmt.Sprintf("inst-%d", s.nextInstance)
	instance := WidgetInstance{
		ID:            id,
		DefinitionID:  input.DefinitionID,
		Configuration: input.Configuration,
		Metadata:      input.Metadata,
	}
	s.instances[id] = instance
	return instance, nil
}

// AssignInstance places an instance in an area, at Position when given.
func (s *MemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[input.InstanceID]; !ok {
		return fmt.Errorf("dashboard: widget instance %s not found", input.InstanceID)
	}
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		idx := *input.Position
		order = append(order[:idx], append([]string{input.InstanceID}, order[idx:]...)...)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	return nil
}

// ResolveArea returns the instances assigned to an area in order.
func (s *MemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		if inst, ok := s.instances[id]; ok {
			widgets = append(widgets, inst)
		}
	}
	return ResolvedArea{
		AreaCode: input.AreaCode,
		Widgets:  widgets,
	}, nil
}
