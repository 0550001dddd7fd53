package tool

import (
	"fmt"
	"strings"

	routerx "github.com/tanpawarit/Chative-Flavia-Agent/agent/router"
)

const (
	ToolsetAssistant = "assistant"
	ToolsetClinic    = "clinic"
)

const (
	assistantCatalog = "Você pode pedir por:\n- previsão do tempo\n- conversão de moeda\n- buscar informações gerais."
	clinicCatalog    = "Você pode pedir por:\n- agendar uma sessão\n- cancelar uma sessão\n- registrar um pagamento."
)

// Toolset bundles the tools, routing rules and catalog text of one assistant.
type Toolset struct {
	Name     string
	Catalog  string
	Registry *Registry
	Rules    []routerx.Rule
}

func (ts Toolset) Router() (*routerx.KeywordRouter, error) {
	return routerx.New(ts.Rules...)
}

func NewToolset(name string) (Toolset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ToolsetAssistant:
		return Assistant()
	case ToolsetClinic:
		return Clinic()
	default:
		return Toolset{}, fmt.Errorf("%w: %s", ErrUnknownToolset, name)
	}
}

func Assistant() (Toolset, error) {
	registry, err := NewRegistry(
		MustStub(ToolWeatherForecast, "Retorna a previsão do tempo para uma cidade.", weatherForecast),
		MustStub(ToolCurrencyConverter, "Converte um valor entre duas moedas.", currencyConverter),
		MustStub(ToolGeneralLookup, "Busca informações gerais sobre um assunto.", generalLookup),
		MustStub(ToolShowCatalog, "Lista o que o assistente sabe fazer.", showCatalog(assistantCatalog)),
	)
	if err != nil {
		return Toolset{}, err
	}

	var rules []routerx.Rule
	rules = append(rules, routerx.Keywords(ToolWeatherForecast, "previsão", "Previsão", "temperatura", "Temperatura")...)
	rules = append(rules, routerx.Keywords(ToolCurrencyConverter, "converter", "Converter", "converta", "Converta", "conversão", "Conversão")...)
	rules = append(rules, routerx.Keywords(ToolGeneralLookup, "buscar", "Buscar")...)
	rules = append(rules, routerx.Keywords(ToolShowCatalog, "catálogo")...)

	return Toolset{
		Name:     ToolsetAssistant,
		Catalog:  assistantCatalog,
		Registry: registry,
		Rules:    rules,
	}, nil
}

func Clinic() (Toolset, error) {
	registry, err := NewRegistry(
		MustStub(ToolScheduleSession, "Agenda uma sessão para um paciente em uma data.", scheduleSession),
		MustStub(ToolCancelSession, "Cancela a sessão de um paciente em uma data.", cancelSession),
		MustStub(ToolRecordPayment, "Registra o pagamento de um paciente.", recordPayment),
		MustStub(ToolShowCatalog, "Lista as tarefas administrativas disponíveis.", showCatalog(clinicCatalog)),
	)
	if err != nil {
		return Toolset{}, err
	}

	var rules []routerx.Rule
	rules = append(rules, routerx.Keywords(ToolScheduleSession, "agendar", "Agendar")...)
	rules = append(rules, routerx.Keywords(ToolCancelSession, "cancelar", "Cancelar")...)
	rules = append(rules, routerx.Keywords(ToolRecordPayment, "pagamento", "pagou")...)
	rules = append(rules, routerx.Keywords(ToolShowCatalog, "catálogo")...)

	return Toolset{
		Name:     ToolsetClinic,
		Catalog:  clinicCatalog,
		Registry: registry,
		Rules:    rules,
	}, nil
}
