package analyze

import "fmt"

// truncationMarker is appended when a prompt is cut to fit a provider limit.
const truncationMarker = "\n\n[Transcrição truncada devido ao tamanho]"

// buildPrompt assembles the generation prompt. The response contract is
// stated three times because smaller models routinely ignore it once.
func buildPrompt(transcript, filenameHint string) string {
	filename := ""
	if filenameHint != "" {
		filename = "\nNome do arquivo original: " + filenameHint
	}

	return fmt.Sprintf(`
INSTRUÇÃO CRÍTICA: Responda APENAS com um JSON válido. Não adicione texto antes, depois ou explicações.

Baseado na transcrição de vídeo abaixo, crie conteúdo para YouTube:
%s

TRANSCRIÇÃO:
"%s"

RESPONDA SOMENTE COM ESTE JSON (copie a estrutura exata):
{
  "title": "Título chamativo e otimizado para YouTube (máximo 100 caracteres)",
  "description": "Descrição detalhada e envolvente com call-to-action (200-500 palavras)",
  "summary": "Resumo conciso em 1-2 frases sobre o conteúdo principal",
  "tags": ["palavra1", "palavra2", "palavra3", "palavra4", "palavra5"]
}

REGRAS OBRIGATÓRIAS:
1. Use EXATAMENTE essas chaves: "title", "description", "summary", "tags"
2. TODOS os 4 campos são OBRIGATÓRIOS - não deixe nenhum vazio
3. "summary" deve ser uma frase concisa sobre o tema principal
4. "tags" deve ter exatamente 5 palavras-chave relevantes
5. Conteúdo em português brasileiro
6. Retorne APENAS o JSON, sem marcações ou qualquer outro texto

EXEMPLO DO FORMATO ESPERADO:
{
  "title": "exemplo",
  "description": "exemplo longo",
  "summary": "exemplo resumo",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}`, filename, transcript)
}

// limitPrompt truncates oversized prompts and appends a visible marker so
// the model knows the transcript is incomplete.
func limitPrompt(prompt string, maxLength int) string {
	runes := []rune(prompt)
	if len(runes) <= maxLength {
		return prompt
	}
	return string(runes[:maxLength]) + truncationMarker
}
