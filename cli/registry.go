package cli

import (
	"errors"
	"sync"

	"github.com/alecthomas/kong"
	apperrors "github.com/goliatone/go-errors"
)

const (
	ErrCodeNilCommand         = "NIL_COMMAND"
	ErrCodeAlreadyInitialized = "REGISTRY_ALREADY_INITIALIZED"
	ErrCodeNotInitialized     = "REGISTRY_NOT_INITIALIZED"
)

// Registry collects commands and turns them into kong options once.
type Registry struct {
	mu          sync.RWMutex
	commands    []Command
	initialized bool
	options     []kong.Option
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(cmds ...Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return apperrors.New("cannot register commands after registry has been initialized", apperrors.CategoryConflict).
			WithTextCode(ErrCodeAlreadyInitialized)
	}
	for _, cmd := range cmds {
		if cmd == nil {
			return apperrors.New("command cannot be nil", apperrors.CategoryBadInput).
				WithTextCode(ErrCodeNilCommand)
		}
	}
	r.commands = append(r.commands, cmds...)
	return nil
}

// Initialize builds the command tree. Every placement error is reported;
// the registry is sealed either way.
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return apperrors.New("registry already initialized", apperrors.CategoryConflict).
			WithTextCode(ErrCodeAlreadyInitialized)
	}
	r.initialized = true

	root := newNode("")
	var errs error
	for _, cmd := range r.commands {
		if err := root.insert(cmd.CLIOptions(), cmd.CLIHandler()); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return errs
	}

	opts, err := kongOptions(root)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryBadInput, "failed to build cli model").
			WithTextCode(ErrCodeBadHandler)
	}
	r.options = opts
	return nil
}

func (r *Registry) Options() ([]kong.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized {
		return nil, apperrors.New("registry not initialized", apperrors.CategoryConflict).
			WithTextCode(ErrCodeNotInitialized)
	}
	options := make([]kong.Option, len(r.options))
	copy(options, r.options)
	return options, nil
}
