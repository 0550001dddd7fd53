package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	ToolWeatherForecast   = "weather_forecast"
	ToolCurrencyConverter = "currency_converter"
	ToolGeneralLookup     = "general_lookup"
	ToolShowCatalog       = "show_catalog"

	ToolScheduleSession = "agendar_sessao"
	ToolCancelSession   = "cancelar_sessao"
	ToolRecordPayment   = "registrar_pagamento"
)

type WeatherInput struct {
	Cidade string `json:"cidade" jsonschema:"nome da cidade para a previsão do tempo"`
}

type CurrencyInput struct {
	Valor        float64 `json:"valor" jsonschema:"valor a ser convertido"`
	MoedaOrigem  string  `json:"moeda_origem,omitempty" jsonschema:"código ISO da moeda de origem"`
	MoedaDestino string  `json:"moeda_destino,omitempty" jsonschema:"código ISO da moeda de destino"`
}

type LookupInput struct {
	Consulta string `json:"consulta" jsonschema:"texto da busca"`
}

type CatalogInput struct {
	Categoria string `json:"categoria,omitempty" jsonschema:"categoria opcional do catálogo"`
}

type SessionInput struct {
	Nome string `json:"nome" jsonschema:"nome do paciente"`
	Data string `json:"data,omitempty" jsonschema:"data da sessão"`
}

type PaymentInput struct {
	Nome  string  `json:"nome" jsonschema:"nome do paciente"`
	Data  string  `json:"data,omitempty" jsonschema:"data do pagamento"`
	Valor float64 `json:"valor,omitempty" jsonschema:"valor pago em reais"`
}

func weatherForecast(_ context.Context, in WeatherInput) string {
	return fmt.Sprintf("A previsão para %s é: Sol com nuvens e 25°C.", orDefault(in.Cidade, "sua cidade"))
}

func currencyConverter(_ context.Context, in CurrencyInput) string {
	from := orDefault(strings.ToUpper(in.MoedaOrigem), "USD")
	to := orDefault(strings.ToUpper(in.MoedaDestino), "BRL")
	return fmt.Sprintf("Conversão simulada de: %s %s para %s. Resultado: R$ 520,00.", formatAmount(in.Valor), from, to)
}

func generalLookup(_ context.Context, in LookupInput) string {
	return fmt.Sprintf("Busca simulada por %q: nenhuma fonte externa foi consultada.", orDefault(in.Consulta, "sua pergunta"))
}

func showCatalog(catalog string) func(context.Context, CatalogInput) string {
	return func(context.Context, CatalogInput) string {
		return catalog
	}
}

func scheduleSession(_ context.Context, in SessionInput) string {
	return fmt.Sprintf("Sessão agendada para %s em %s.", orDefault(in.Nome, "o paciente"), orDefault(in.Data, "data a confirmar"))
}

func cancelSession(_ context.Context, in SessionInput) string {
	return fmt.Sprintf("Sessão de %s em %s cancelada.", orDefault(in.Nome, "o paciente"), orDefault(in.Data, "data a confirmar"))
}

func recordPayment(_ context.Context, in PaymentInput) string {
	msg := fmt.Sprintf("Pagamento de %s registrado", orDefault(in.Nome, "o paciente"))
	if in.Valor > 0 {
		msg += " no valor de R$ " + formatAmount(in.Valor)
	}
	if in.Data != "" {
		msg += " em " + in.Data
	}
	return msg + "."
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
