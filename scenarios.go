package main

import (
	toolx "github.com/tanpawarit/Chative-Flavia-Agent/agent/tool"
)

// scenario is one scripted conversation, played on its own session.
type scenario struct {
	Name   string
	Inputs []string
}

var assistantScenarios = []scenario{
	{
		Name: "flavia",
		Inputs: []string{
			"Oi, o que posso fazer aqui?",
			"Qual a previsão para São Paulo?",
			"Converta 200 USD para BRL",
		},
	},
	{
		Name: "roteador",
		Inputs: []string{
			"Quero saber a previsão do tempo para hoje",
			"O que eu posso fazer aqui?",
			"buscar o clima em Marte",
		},
	},
	{
		Name: "agente",
		Inputs: []string{
			"qual temperatura em barueri?",
			"e em São Roque?",
		},
	},
}

var clinicScenarios = []scenario{
	{
		Name: "agenda",
		Inputs: []string{
			"Gostaria de agendar uma sessão para o Fabiano no dia 10/04/2025",
			"Quero cancelar a sessão da Roberta no dia 13.",
		},
	},
	{
		Name: "financeiro",
		Inputs: []string{
			"Registre o pagamento do Paulo no valor de R$ 200",
			"Geraldo pagou o que devia",
		},
	},
	{
		Name: "conversa",
		Inputs: []string{
			"Olá, meu nome é Fabiano, me cumprimente!",
			"Qual a média de 10, 20 e 30?",
		},
	},
}

func scenariosFor(toolset string) []scenario {
	if toolset == toolx.ToolsetClinic {
		return clinicScenarios
	}
	return assistantScenarios
}
