package wizard

import "sync"

// ValidatorRegistry lets sections that gate wizard progression publish a
// validator the step orchestrator can invoke, without the sections knowing
// about each other. Register returns an unregister handle; a slot that was
// never registered (or already unregistered) counts as valid.
type ValidatorRegistry struct {
	mu         sync.Mutex
	order      []string
	validators map[string]func() bool
}

func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{validators: make(map[string]func() bool)}
}

func (r *ValidatorRegistry) Register(section string, fn func() bool) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.validators[section]; !exists {
		r.order = append(r.order, section)
	}
	r.validators[section] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.validators, section)
	}
}

// ValidateAll runs registered validators in registration order and
// short-circuits on the first failure, reporting the failing section.
func (r *ValidatorRegistry) ValidateAll() (ok bool, failedSection string) {
	r.mu.Lock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	fns := make(map[string]func() bool, len(r.validators))
	for k, v := range r.validators {
		fns[k] = v
	}
	r.mu.Unlock()

	for _, name := range names {
		fn, exists := fns[name]
		if !exists || fn == nil {
			continue
		}
		if !fn() {
			return false, name
		}
	}
	return true, ""
}
