package ollama

import (
	"strings"
	"testing"

	api "github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
)

func listResponseWith(names ...string) *api.ListResponse {
	resp := &api.ListResponse{}
	for _, name := range names {
		resp.Models = append(resp.Models, api.ListModelResponse{Name: name})
	}
	return resp
}

func TestCleanResponseEmpty(t *testing.T) {
	assert.Equal(t, "", CleanResponse(""))
}

func TestCleanResponsePlainTextUnchanged(t *testing.T) {
	text := "Озеро Балхаш находится в хорошем состоянии."
	assert.Equal(t, text, CleanResponse(text))
}

func TestCleanResponseStripsThinkBlock(t *testing.T) {
	raw := "<think>\nLet me reason about reservoirs here.\n</think>\n\nОтвет: состояние хорошее."
	assert.Equal(t, "Ответ: состояние хорошее.", CleanResponse(raw))
}

func TestCleanResponseStripsCaseInsensitiveTags(t *testing.T) {
	raw := "<THINK>internal notes</THINK>Ответ готов."
	assert.Equal(t, "Ответ готов.", CleanResponse(raw))
}

func TestCleanResponseStripsUnpairedThinkTag(t *testing.T) {
	// Some models emit a closing tag without ever opening one.
	raw := "</think>\nНастоящий ответ."
	assert.Equal(t, "Настоящий ответ.", CleanResponse(raw))
}

func TestCleanResponseStripsBracketedThinking(t *testing.T) {
	raw := "[thinking]step one, step two[/thinking]Ответ: вода пресная."
	assert.Equal(t, "Ответ: вода пресная.", CleanResponse(raw))
}

func TestCleanResponseStripsBoldThinkingParagraph(t *testing.T) {
	raw := "**Thinking**: the user asks about a canal.\n\nКанал Иртыш-Караганда работает в штатном режиме."
	assert.Equal(t, "Канал Иртыш-Караганда работает в штатном режиме.", CleanResponse(raw))
}

func TestCleanResponseStripsBoldThinkingAtEnd(t *testing.T) {
	raw := "Ответ дан выше.\n\n**Thinking** trailing reasoning with no terminator"
	assert.Equal(t, "Ответ дан выше.", CleanResponse(raw))
}

func TestCleanResponseCollapsesNewlineRuns(t *testing.T) {
	raw := "Первый абзац.\n\n\n\n\nВторой абзац."
	assert.Equal(t, "Первый абзац.\n\nВторой абзац.", CleanResponse(raw))
}

func TestCleanResponseTrimsWhitespace(t *testing.T) {
	raw := "   \n\t Ответ по объекту. \n  "
	assert.Equal(t, "Ответ по объекту.", CleanResponse(raw))
}

func TestCleanResponseIdempotent(t *testing.T) {
	inputs := []string{
		"<think>reasoning</think>Ответ.",
		"Первый.\n\n\n\nВторой.",
		"**Thinking**: notes\n\nОтвет.",
		"Просто текст без артефактов.",
	}
	for _, raw := range inputs {
		once := CleanResponse(raw)
		assert.Equal(t, once, CleanResponse(once), "cleaning should be idempotent for %q", raw)
	}
}

func TestCleanResponseNeverLeavesTripleNewlines(t *testing.T) {
	raw := "А.\n\n\nБ.\n\n\n\n\n\nВ.<think>x</think>\n\n\nГ."
	cleaned := CleanResponse(raw)
	assert.NotContains(t, cleaned, "\n\n\n")
	assert.True(t, strings.HasPrefix(cleaned, "А."))
	assert.True(t, strings.HasSuffix(cleaned, "Г."))
}

func TestModelListed(t *testing.T) {
	resp := listResponseWith("qwen3:4b", "nomic-embed-text:latest")

	assert.True(t, modelListed(resp, "qwen3:4b"))
	assert.True(t, modelListed(resp, "QWEN3:4B"))
	// A bare model name matches any tag of that model.
	assert.True(t, modelListed(resp, "nomic-embed-text"))
	assert.False(t, modelListed(resp, "llama3"))
}
