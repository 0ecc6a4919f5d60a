package judicial

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var RamaJudicialBaseURL = "https://consultaprocesos.ramajudicial.gov.co:448/api/v2"

// RamaJudicialService implements Provider for the Rama Judicial portal
type RamaJudicialService struct {
	BaseService
}

// NewRamaJudicialService creates a new instance
func NewRamaJudicialService() *RamaJudicialService {
	return &RamaJudicialService{
		BaseService: NewBaseService(),
	}
}

// ColombianTime handles dates without timezone
type ColombianTime struct {
	time.Time
}

func (ct *ColombianTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	s = s[1 : len(s)-1] // Remove quotes

	// Portal dates come without zone: 2006-01-02T15:04:05
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err == nil {
		ct.Time = t
		return nil
	}

	// Try standard RFC3339 just in case
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		ct.Time = t
		return nil
	}

	return err
}

// === Rama Judicial Internal Structs ===

type rjSearchResponse struct {
	Procesos []rjProcessSummary `json:"procesos"`
}

type rjProcessSummary struct {
	IDProceso            int64          `json:"idProceso"`
	EsPrivado            bool           `json:"esPrivado"`
	FechaProceso         *ColombianTime `json:"fechaProceso"`
	FechaUltimaActuacion *ColombianTime `json:"fechaUltimaActuacion"`
	Despacho             string         `json:"despacho"`
	Departamento         string         `json:"departamento"`
	SujetosProcesales    string         `json:"sujetosProcesales"`
	Estado               string         `json:"estado"`
}

type rjProcessAction struct {
	IDRegActuacion int64          `json:"idRegActuacion"`
	Actuacion      string         `json:"actuacion"`
	Anotacion      string         `json:"anotacion"`
	FechaActuacion *ColombianTime `json:"fechaActuacion"`
	FechaInicial   *ColombianTime `json:"fechaInicial"`
	FechaFinal     *ColombianTime `json:"fechaFinal"`
	ConDocumentos  bool           `json:"conDocumentos"`
}

// GetNormalizedCase implements Provider
func (s *RamaJudicialService) GetNormalizedCase(ctx context.Context, radicado string) (*CaseSnapshot, error) {
	summary, err := s.searchByRadicado(ctx, radicado)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("radicado not found: %s", radicado)
	}

	actions, err := s.fetchActions(ctx, summary.IDProceso)
	if err != nil {
		return nil, err
	}

	snapshot := &CaseSnapshot{
		Status:  summary.Estado,
		Office:  summary.Despacho,
		Parties: parseSujetosProcesales(summary.SujetosProcesales),
	}

	for _, act := range actions {
		genAct := SnapshotAct{
			ExternalKey: fmt.Sprintf("%d", act.IDRegActuacion),
			Type:        act.Actuacion,
			Annotation:  act.Anotacion,
		}
		if act.FechaActuacion != nil {
			genAct.Date = act.FechaActuacion.Time
		}
		if act.FechaInicial != nil {
			t := act.FechaInicial.Time
			genAct.InitialDate = &t
		}
		if act.FechaFinal != nil {
			t := act.FechaFinal.Time
			genAct.FinalDate = &t
		}
		if act.ConDocumentos {
			genAct.DocumentURL = fmt.Sprintf("%s/Proceso/DocumentosActuacion/%d", RamaJudicialBaseURL, act.IDRegActuacion)
		}
		snapshot.Acts = append(snapshot.Acts, genAct)
	}

	return snapshot, nil
}

func (s *RamaJudicialService) searchByRadicado(ctx context.Context, radicado string) (*rjProcessSummary, error) {
	params := url.Values{}
	params.Add("numero", radicado)
	params.Add("SoloActivos", "false")
	params.Add("pagina", "1")

	reqURL := fmt.Sprintf("%s/Procesos/Consulta/NumeroRadicacion?%s", RamaJudicialBaseURL, params.Encode())

	var searchResp rjSearchResponse
	if err := s.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}

	if len(searchResp.Procesos) == 0 {
		return nil, nil // No process found
	}

	return &searchResp.Procesos[0], nil
}

func (s *RamaJudicialService) fetchActions(ctx context.Context, processID int64) ([]rjProcessAction, error) {
	// Only fetch page 1 to catch the latest updates.
	reqURL := fmt.Sprintf("%s/Proceso/Actuaciones/%d?pagina=1", RamaJudicialBaseURL, processID)

	var actionsResp struct {
		Actuaciones []rjProcessAction `json:"actuaciones"`
		Pagina      struct {
			TotalPaginas int `json:"totalPaginas"`
		} `json:"paginacion"`
	}

	if err := s.getJSON(ctx, reqURL, &actionsResp); err != nil {
		return nil, err
	}

	return actionsResp.Actuaciones, nil
}

func (s *RamaJudicialService) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseSujetosProcesales splits the portal's single-line subject string
// ("Demandante: Juan Perez | Demandado: Empresa SA") into normalized parties
func parseSujetosProcesales(sujetos string) []SnapshotParty {
	var parties []SnapshotParty
	for _, segment := range strings.Split(sujetos, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		role := "OTRO"
		name := segment
		if idx := strings.Index(segment, ":"); idx > 0 {
			label := strings.ToLower(strings.TrimSpace(segment[:idx]))
			name = strings.TrimSpace(segment[idx+1:])
			switch {
			case strings.Contains(label, "demandante"), strings.Contains(label, "accionante"):
				role = "DEMANDANTE"
			case strings.Contains(label, "demandado"), strings.Contains(label, "accionado"):
				role = "DEMANDADO"
			}
		}
		if name == "" {
			continue
		}
		parties = append(parties, SnapshotParty{Role: role, Name: name})
	}
	return parties
}
