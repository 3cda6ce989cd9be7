package saved

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"adcalc/internal/modules/calculator"
)

// Key prefixes keep named saves and the autosave slot apart in one store.
const (
	namedPrefix = "named:"
	autosaveKey = "autosave"
)

// Service stores named calculator input sets plus one autosave slot. Names
// are free-form and case-sensitive; inputs are serialized as JSON.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates a saved-inputs service
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "saved").Logger(),
	}
}

// SaveNamed stores inputs under a name, overwriting any previous save.
func (s *Service) SaveNamed(name string, inputs calculator.Inputs) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("save name must not be empty")
	}

	value, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("failed to encode inputs: %w", err)
	}
	if err := s.store.Set(namedPrefix+name, value); err != nil {
		return err
	}

	s.log.Debug().Str("name", name).Msg("Inputs saved")
	return nil
}

// LoadNamed returns the inputs saved under a name.
func (s *Service) LoadNamed(name string) (calculator.Inputs, error) {
	return s.load(namedPrefix + name)
}

// List returns all save names, sorted.
func (s *Service) List() ([]string, error) {
	keys, err := s.store.Keys()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, key := range keys {
		if strings.HasPrefix(key, namedPrefix) {
			names = append(names, strings.TrimPrefix(key, namedPrefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteNamed removes a named save.
func (s *Service) DeleteNamed(name string) error {
	return s.store.Delete(namedPrefix + name)
}

// Autosave writes the single autosave slot.
func (s *Service) Autosave(inputs calculator.Inputs) error {
	value, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("failed to encode inputs: %w", err)
	}
	return s.store.Set(autosaveKey, value)
}

// LoadAutosave returns the autosave slot, ErrNotFound when nothing has been
// autosaved yet.
func (s *Service) LoadAutosave() (calculator.Inputs, error) {
	return s.load(autosaveKey)
}

func (s *Service) load(key string) (calculator.Inputs, error) {
	value, err := s.store.Get(key)
	if err != nil {
		return calculator.Inputs{}, err
	}

	var inputs calculator.Inputs
	if err := json.Unmarshal(value, &inputs); err != nil {
		return calculator.Inputs{}, fmt.Errorf("failed to decode saved inputs: %w", err)
	}
	return inputs, nil
}
