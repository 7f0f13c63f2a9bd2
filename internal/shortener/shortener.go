package shortener

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Base62 character set (0-9, A-Z, a-z)
const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// nanoidAlphabet leaves out '-' and '_' so identifiers stay easy to copy
const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Supported identifier strategies
const (
	StrategyBase62 = "base62"
	StrategyUUID   = "uuid"
	StrategyNanoID = "nanoid"
)

// Length bounds for generated identifiers
const (
	MinLength = 4
	MaxLength = 32
)

// Generator produces candidate identifiers. Candidates are not checked for uniqueness.
type Generator interface {
	Generate() (string, error)
}

// NewGenerator returns the generator for strategy
func NewGenerator(strategy string, length int) (Generator, error) {
	switch strings.ToLower(strategy) {
	case StrategyBase62, "":
		return NewCodeGenerator(length), nil
	case StrategyUUID:
		return UUIDGenerator{}, nil
	case StrategyNanoID:
		return NewNanoIDGenerator(length), nil
	default:
		return nil, fmt.Errorf("unknown identifier strategy %q", strategy)
	}
}

// CodeGenerator draws base62 codes from crypto/rand
type CodeGenerator struct {
	length int
}

// NewCodeGenerator creates a base62 generator.
// 8 characters give 62^8 (about 2.2e14) possible codes.
func NewCodeGenerator(length int) *CodeGenerator {
	return &CodeGenerator{length: clampLength(length)}
}

// Generate creates a random base62 code
func (g *CodeGenerator) Generate() (string, error) {
	result := make([]byte, g.length)
	max := big.NewInt(int64(len(base62Chars)))

	for i := range result {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		result[i] = base62Chars[num.Int64()]
	}

	return string(result), nil
}

// UUIDGenerator uses the first group of a random UUID: 8 lowercase hex characters
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	first, _, _ := strings.Cut(id.String(), "-")
	return first, nil
}

// NanoIDGenerator draws alphanumeric nanoids
type NanoIDGenerator struct {
	length int
}

// NewNanoIDGenerator creates a nanoid generator with the given length
func NewNanoIDGenerator(length int) *NanoIDGenerator {
	return &NanoIDGenerator{length: clampLength(length)}
}

func (g *NanoIDGenerator) Generate() (string, error) {
	id, err := gonanoid.Generate(nanoidAlphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// CollisionProbability approximates the chance that n random codes over
// alphabetSize^length contain a duplicate (birthday bound n^2 / 2N), capped at 1.
func CollisionProbability(alphabetSize, length, n int) float64 {
	if n <= 0 {
		return 0
	}

	total := 1.0
	for i := 0; i < length; i++ {
		total *= float64(alphabetSize)
	}

	p := float64(n) * float64(n) / (2 * total)
	if p > 1 {
		return 1
	}
	return p
}

// StrategyCollisionProbability is CollisionProbability over the code space of strategy
// at the given configured length.
func StrategyCollisionProbability(strategy string, length, n int) float64 {
	switch strings.ToLower(strategy) {
	case StrategyUUID:
		return CollisionProbability(16, 8, n)
	case StrategyNanoID:
		return CollisionProbability(len(nanoidAlphabet), clampLength(length), n)
	default:
		return CollisionProbability(len(base62Chars), clampLength(length), n)
	}
}

func clampLength(length int) int {
	if length < MinLength {
		return MinLength
	}
	if length > MaxLength {
		return MaxLength
	}
	return length
}
