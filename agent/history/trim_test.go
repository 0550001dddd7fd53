package history

import (
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

func sys(s string) contractx.Message  { return contractx.SystemMessage(s) }
func user(s string) contractx.Message { return contractx.UserMessage(s) }
func ai(s string) contractx.Message   { return contractx.AssistantMessage(s) }

func contents(msgs []contractx.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

func TestTrim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       []contractx.Message
		maxTurns int
		want     []string
	}{
		{
			name:     "empty",
			in:       nil,
			maxTurns: 4,
			want:     []string{},
		},
		{
			name:     "shorter than window",
			in:       []contractx.Message{user("u1"), ai("a1")},
			maxTurns: 4,
			want:     []string{"u1", "a1"},
		},
		{
			name:     "system kept and window extended back to user",
			in:       []contractx.Message{sys("s"), user("u1"), ai("a1"), user("u2"), ai("a2"), user("u3")},
			maxTurns: 2,
			want:     []string{"s", "u2", "a2", "u3"},
		},
		{
			name:     "cut already on user",
			in:       []contractx.Message{user("u1"), ai("a1"), user("u2"), ai("a2")},
			maxTurns: 2,
			want:     []string{"u2", "a2"},
		},
		{
			name: "bob conversation with four message budget",
			in: []contractx.Message{
				sys("s"),
				user("Olá, eu sou Bob"), ai("Olá Bob, como está?"),
				user("Estou com fome."), ai("O que gosta de comer?"),
				user("Pizza"), ai("De que tipo?"),
				user("Todas"), ai("Além de pizza, do que você gosta?"),
				user("De dançar"), ai("Que tipo de música?"),
				user("Deixa pra lá. Qual é o meu nome?"),
			},
			maxTurns: 4,
			want: []string{
				"s",
				"Todas", "Além de pizza, do que você gosta?",
				"De dançar", "Que tipo de música?",
				"Deixa pra lá. Qual é o meu nome?",
			},
		},
		{
			name:     "no user before cut shrinks forward",
			in:       []contractx.Message{ai("a0"), ai("a1"), user("u1"), ai("a2")},
			maxTurns: 3,
			want:     []string{"u1", "a2"},
		},
		{
			name:     "no user at all",
			in:       []contractx.Message{sys("s"), ai("a0"), ai("a1"), ai("a2")},
			maxTurns: 2,
			want:     []string{"s", "a1", "a2"},
		},
		{
			name:     "non positive disables trimming",
			in:       []contractx.Message{user("u1"), ai("a1"), user("u2")},
			maxTurns: 0,
			want:     []string{"u1", "a1", "u2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := contents(Trim(tt.in, tt.maxTurns))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Trim() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimIsIdempotent(t *testing.T) {
	t.Parallel()

	histories := [][]contractx.Message{
		{sys("s"), user("u1"), ai("a1"), user("u2"), ai("a2"), user("u3")},
		{user("u1"), ai("a1"), user("u2"), ai("a2"), user("u3"), ai("a3")},
		{ai("a0"), ai("a1"), user("u1"), ai("a2"), ai("a3")},
		{sys("s"), ai("a0"), ai("a1")},
	}

	for _, h := range histories {
		for k := 0; k <= len(h)+1; k++ {
			once := Trim(h, k)
			twice := Trim(once, k)
			if !reflect.DeepEqual(contents(once), contents(twice)) {
				t.Fatalf("Trim not idempotent for k=%d: %v vs %v", k, contents(once), contents(twice))
			}
		}
	}
}

func TestTrimNeverDropsSystemMessage(t *testing.T) {
	t.Parallel()

	in := []contractx.Message{sys("s"), user("u1"), ai("a1"), user("u2"), ai("a2"), user("u3")}
	for k := 1; k <= 6; k++ {
		got := Trim(in, k)
		if len(got) == 0 || got[0].Role != contractx.RoleSystem {
			t.Fatalf("k=%d: system message dropped: %v", k, contents(got))
		}
		if last := got[len(got)-1]; last.Content != "u3" {
			t.Fatalf("k=%d: last message = %q, want u3", k, last.Content)
		}
	}
}

func TestTrimDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	in := []contractx.Message{user("u1"), ai("a1")}
	out := Trim(in, 10)
	out[0].Content = "changed"
	if in[0].Content != "u1" {
		t.Fatal("Trim result aliases its input")
	}
}
