package boundary

import (
	"errors"
	"fmt"
)

// ErrNotWired is returned by every Unimplemented stand-in. Callers must
// not assume partial results alongside it.
var ErrNotWired = errors.New("boundary: external collaborator not wired")

// TokenType classifies a token triplet.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdentifier
	TokenKeyword
	TokenNumber
	TokenOperator
	TokenDelimiter
	TokenString
	TokenComment
)

func (t TokenType) String() string {
	names := []string{
		"EOF", "IDENTIFIER", "KEYWORD", "NUMBER",
		"OPERATOR", "DELIMITER", "STRING", "COMMENT",
	}
	if int(t) >= 0 && int(t) < len(names) {
		return names[t]
	}
	return "UNKNOWN"
}

// Token is one tokenizer output triplet plus the text extracted from the
// source it was produced from.
type Token struct {
	Type   TokenType // what it is
	Memory uint32    // byte offset into the source
	Value  uint32    // length in bytes
	Text   string    // extracted text
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, mem=%d, val=%d, text=%q)", t.Type, t.Memory, t.Value, t.Text)
}

// ExtractText resolves a token's text against its source. A zero length
// reads one byte; an offset at or beyond the source length maps to the
// end-of-input sentinel.
func ExtractText(source string, memory, value uint32) string {
	offset := int(memory)
	length := int(value)
	if length == 0 {
		length = 1
	}
	if offset >= len(source) {
		return "<EOF>"
	}
	end := offset + length
	if end > len(source) {
		end = len(source)
	}
	return source[offset:end]
}

// Tokenizer is the opaque lexer boundary. Implementations return the
// ordered token stream for the source or an error; on error callers must
// not assume partial results.
type Tokenizer interface {
	Tokenize(source string) ([]Token, error)
}

// UnimplementedTokenizer fails loudly on every call.
type UnimplementedTokenizer struct{}

// Tokenize always fails with ErrNotWired.
func (UnimplementedTokenizer) Tokenize(string) ([]Token, error) {
	return nil, fmt.Errorf("tokenize: %w", ErrNotWired)
}

// TokenStats summarises a token stream.
type TokenStats struct {
	TotalTokens      int
	TypeDistribution map[TokenType]int
	MemoryRange      [2]uint32
	AverageLength    float64
}

// AnalyzeTokens computes stream statistics for a token slice.
func AnalyzeTokens(tokens []Token) TokenStats {
	stats := TokenStats{
		TotalTokens:      len(tokens),
		TypeDistribution: make(map[TokenType]int),
	}
	if len(tokens) == 0 {
		return stats
	}

	var totalLength uint32
	minMem := tokens[0].Memory
	maxMem := tokens[0].Memory
	for _, token := range tokens {
		stats.TypeDistribution[token.Type]++
		totalLength += token.Value
		if token.Memory < minMem {
			minMem = token.Memory
		}
		if token.Memory > maxMem {
			maxMem = token.Memory
		}
	}

	stats.MemoryRange = [2]uint32{minMem, maxMem}
	stats.AverageLength = float64(totalLength) / float64(len(tokens))
	return stats
}
