package judicial

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

var TybaBaseURL = "https://procesojudicial.ramajudicial.gov.co/procesoTyba/api"

// TybaService implements Provider for the Tyba portal, which covers offices
// not yet migrated to the unified Rama Judicial portal
type TybaService struct {
	BaseService
}

// NewTybaService creates a new instance
func NewTybaService() *TybaService {
	return &TybaService{
		BaseService: NewBaseService(),
	}
}

type tybaProcessResponse struct {
	CodProceso   string          `json:"codProceso"`
	Despacho     string          `json:"despacho"`
	EstadoActual string          `json:"estadoActual"`
	Sujetos      []tybaSubject   `json:"sujetos"`
	Actuaciones  []tybaActuation `json:"actuaciones"`
}

type tybaSubject struct {
	TipoSujeto     string `json:"tipoSujeto"`
	NombreCompleto string `json:"nombreCompleto"`
	NumDocumento   string `json:"numDocumento"`
}

type tybaActuation struct {
	ConsActuacion      int64          `json:"consActuacion"`
	TipoActuacion      string         `json:"tipoActuacion"`
	Anotacion          string         `json:"anotacion"`
	FechaActuacion     *ColombianTime `json:"fechaActuacion"`
	FechaInicioTermino *ColombianTime `json:"fechaInicioTermino"`
	FechaFinTermino    *ColombianTime `json:"fechaFinTermino"`
}

// GetNormalizedCase implements Provider
func (s *TybaService) GetNormalizedCase(ctx context.Context, radicado string) (*CaseSnapshot, error) {
	reqURL := fmt.Sprintf("%s/consulta-procesos/proceso?numRadicacion=%s", TybaBaseURL, radicado)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var procResp tybaProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&procResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	snapshot := &CaseSnapshot{
		Status: procResp.EstadoActual,
		Office: procResp.Despacho,
	}

	for _, subject := range procResp.Sujetos {
		role := "OTRO"
		label := strings.ToLower(subject.TipoSujeto)
		switch {
		case strings.Contains(label, "demandante"), strings.Contains(label, "accionante"):
			role = "DEMANDANTE"
		case strings.Contains(label, "demandado"), strings.Contains(label, "accionado"):
			role = "DEMANDADO"
		}
		snapshot.Parties = append(snapshot.Parties, SnapshotParty{
			Role:     role,
			Name:     subject.NombreCompleto,
			Document: subject.NumDocumento,
		})
	}

	for _, act := range procResp.Actuaciones {
		genAct := SnapshotAct{
			ExternalKey: fmt.Sprintf("%d", act.ConsActuacion),
			Type:        act.TipoActuacion,
			Annotation:  act.Anotacion,
		}
		if act.FechaActuacion != nil {
			genAct.Date = act.FechaActuacion.Time
		}
		if act.FechaInicioTermino != nil {
			t := act.FechaInicioTermino.Time
			genAct.InitialDate = &t
		}
		if act.FechaFinTermino != nil {
			t := act.FechaFinTermino.Time
			genAct.FinalDate = &t
		}
		snapshot.Acts = append(snapshot.Acts, genAct)
	}

	return snapshot, nil
}
