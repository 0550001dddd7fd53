package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

func TestNewToolset(t *testing.T) {
	t.Parallel()

	ts, err := NewToolset("")
	if err != nil {
		t.Fatalf("NewToolset() error = %v", err)
	}
	if ts.Name != ToolsetAssistant {
		t.Fatalf("NewToolset(\"\").Name = %q, want %q", ts.Name, ToolsetAssistant)
	}

	ts, err = NewToolset("Clinic")
	if err != nil {
		t.Fatalf("NewToolset() error = %v", err)
	}
	if ts.Name != ToolsetClinic {
		t.Fatalf("NewToolset(\"Clinic\").Name = %q, want %q", ts.Name, ToolsetClinic)
	}

	if _, err := NewToolset("bakery"); !errors.Is(err, ErrUnknownToolset) {
		t.Fatalf("NewToolset() error = %v, want ErrUnknownToolset", err)
	}
}

func TestAssistantRouting(t *testing.T) {
	t.Parallel()

	ts, err := Assistant()
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	r, err := ts.Router()
	if err != nil {
		t.Fatalf("Router() error = %v", err)
	}

	tests := map[string]string{
		"Qual a previsão para São Paulo?": ToolWeatherForecast,
		"qual temperatura em barueri?":    ToolWeatherForecast,
		"Converta 200 USD para BRL":       ToolCurrencyConverter,
		"Quero buscar receitas de bolo":   ToolGeneralLookup,
		"Me mostra o catálogo":            ToolShowCatalog,
		"Oi, o que posso fazer aqui?":     "",
		"O que eu posso fazer aqui?":      "",
	}
	for text, want := range tests {
		got := r.Route(text)
		if want == "" {
			if got.Route != contractx.RouteCatalog {
				t.Fatalf("Route(%q) = %+v, want catalog", text, got)
			}
			continue
		}
		if got.Route != contractx.RouteTool || got.Tool != want {
			t.Fatalf("Route(%q) = %+v, want tool %s", text, got, want)
		}
	}
}

func TestCatalogListsCapabilities(t *testing.T) {
	t.Parallel()

	ts, err := Assistant()
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	for _, want := range []string{"previsão do tempo", "conversão de moeda", "buscar informações gerais"} {
		if !strings.Contains(ts.Catalog, want) {
			t.Fatalf("Catalog missing %q: %q", want, ts.Catalog)
		}
	}

	got, err := ts.Registry.Invoke(context.Background(), ToolShowCatalog, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != ts.Catalog {
		t.Fatalf("show_catalog = %q, want %q", got, ts.Catalog)
	}
}

func TestClinicStubs(t *testing.T) {
	t.Parallel()

	ts, err := Clinic()
	if err != nil {
		t.Fatalf("Clinic() error = %v", err)
	}

	tests := []struct {
		tool string
		args string
		want string
	}{
		{ToolScheduleSession, `{"nome":"Fabiano","data":"10/04/2025"}`, "Sessão agendada para Fabiano em 10/04/2025."},
		{ToolCancelSession, `{"nome":"Roberta","data":"dia 13"}`, "Sessão de Roberta em dia 13 cancelada."},
		{ToolRecordPayment, `{"nome":"Paulo","valor":200}`, "Pagamento de Paulo registrado no valor de R$ 200."},
		{ToolRecordPayment, `{"nome":"Geraldo"}`, "Pagamento de Geraldo registrado."},
	}
	for _, tt := range tests {
		got, err := ts.Registry.Invoke(context.Background(), tt.tool, []byte(tt.args))
		if err != nil {
			t.Fatalf("Invoke(%s) error = %v", tt.tool, err)
		}
		if got != tt.want {
			t.Fatalf("Invoke(%s) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}
