package judicial

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Provider defines the interface for all source-specific judiciary implementations
type Provider interface {
	// GetNormalizedCase fetches the current external state of a case by its
	// filing number (radicado) and returns it as a normalized snapshot.
	// Errors are opaque: network, rate-limit and not-found all mean "this
	// check failed" to the caller.
	GetNormalizedCase(ctx context.Context, radicado string) (*CaseSnapshot, error)
}

// CaseSnapshot normalizes the external state of a case across sources
type CaseSnapshot struct {
	Status  string
	Office  string // Despacho handling the case
	Parties []SnapshotParty
	Acts    []SnapshotAct
}

// SnapshotParty is a procedural subject as reported by the source
type SnapshotParty struct {
	Role     string
	Name     string
	Document string
}

// SnapshotAct normalizes procedural acts (actuaciones) across sources
type SnapshotAct struct {
	ExternalKey string // Stable id in the external system; may be empty
	Date        time.Time
	Type        string
	Annotation  string
	Description string
	DocumentURL string
	InitialDate *time.Time
	FinalDate   *time.Time
}

// BaseService provides common functionality like HTTP client
type BaseService struct {
	client *http.Client
}

// NewBaseService creates a configured base service
func NewBaseService() BaseService {
	return BaseService{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// providers allows tests (and future sources) to override the default wiring
var providers = map[string]Provider{}

// RegisterProvider registers a provider for a source name. Passing nil removes
// a previous registration.
func RegisterProvider(source string, p Provider) {
	if p == nil {
		delete(providers, source)
		return
	}
	providers[source] = p
}

// GetProvider returns the implementation for the given source name
func GetProvider(source string) (Provider, error) {
	if p, ok := providers[source]; ok {
		return p, nil
	}
	switch source {
	case "ramajud":
		return NewRamaJudicialService(), nil
	case "tyba":
		return NewTybaService(), nil
	default:
		return nil, fmt.Errorf("judicial provider not implemented for source: %s", source)
	}
}
