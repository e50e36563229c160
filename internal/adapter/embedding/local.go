package embedding

import (
	"bufio"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"strconv"
	"strings"

	"semdex/internal/adapter/analyzer"
	"semdex/internal/adapter/cache"
	"semdex/internal/domain"
)

// LocalProvider embeds text with an in-process word-vector model:
// each token is looked up in a pretrained embedding table (with a
// deterministic hashed projection for out-of-vocabulary tokens), the
// token vectors are mean-pooled, and the result is L2-normalized.
//
// The table is loaded from disk exactly once per process, lazily on
// first use. That first call pays the full model-load latency; all
// later calls reuse the loaded table.
type LocalProvider struct {
	id        string
	dim       int
	modelPath string
	tokenizer *analyzer.Tokenizer
	loader    *cache.ProviderCache
}

// wordModel is the loaded embedding table.
type wordModel struct {
	dim     int
	vectors map[string][]float32
}

// NewLocalProvider creates a local provider with the given native
// dimensionality. modelPath points at a text embedding table
// ("token v1 ... vN" per line); when empty, every token falls back to
// the hashed projection, which keeps the provider total and
// deterministic without any file on disk.
func NewLocalProvider(id string, dim int, modelPath string, loader *cache.ProviderCache) *LocalProvider {
	return &LocalProvider{
		id:        id,
		dim:       dim,
		modelPath: modelPath,
		tokenizer: analyzer.NewTokenizer(false),
		loader:    loader,
	}
}

// Embed generates a mean-pooled, L2-normalized embedding for text.
// The same text always yields a bit-identical vector.
func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := p.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: text produced no tokens", domain.ErrInvalidArgument)
	}

	handle, err := p.loader.GetOrInit(ctx, p.id, p.loadModel)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: model load failed: %v", domain.ErrProviderUnavailable, err)
	}
	model := handle.(*wordModel)

	acc := make([]float64, p.dim)
	for _, token := range tokens {
		vec := model.vector(token)
		for i, v := range vec {
			acc[i] += float64(v)
		}
	}

	// Mean pooling
	n := float64(len(tokens))
	var norm float64
	for i := range acc {
		acc[i] /= n
		norm += acc[i] * acc[i]
	}

	// L2 normalization
	norm = math.Sqrt(norm)
	result := make([]float32, p.dim)
	for i, v := range acc {
		if norm > 0 {
			v /= norm
		}
		result[i] = float32(v)
	}

	return result, nil
}

// Descriptor returns static metadata about this provider.
func (p *LocalProvider) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:        p.id,
		NativeDim: p.dim,
		Pooling:   "mean",
		Normalize: true,
	}
}

// loadModel reads the embedding table from disk. Runs at most once
// per process via the provider cache.
func (p *LocalProvider) loadModel() (any, error) {
	model := &wordModel{dim: p.dim, vectors: make(map[string][]float32)}
	if p.modelPath == "" {
		return model, nil
	}

	f, err := os.Open(p.modelPath)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != p.dim+1 {
			continue // skip header or malformed rows
		}
		vec := make([]float32, p.dim)
		ok := true
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				ok = false
				break
			}
			vec[i] = float32(v)
		}
		if ok {
			model.vectors[strings.ToLower(fields[0])] = vec
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	return model, nil
}

// vector returns the embedding for a token, falling back to a
// deterministic hashed projection for out-of-vocabulary tokens.
func (m *wordModel) vector(token string) []float32 {
	if v, ok := m.vectors[token]; ok {
		return v
	}
	return hashedProjection(token, m.dim)
}

// hashedProjection derives a pseudo-random but deterministic vector
// from the token itself, so unknown tokens still contribute a stable
// signal instead of being dropped.
func hashedProjection(token string, dim int) []float32 {
	h := fnv.New64a()
	h.Write([]byte(token))
	state := h.Sum64()

	vec := make([]float32, dim)
	for i := range vec {
		state += 0x9e3779b97f4a7c15
		z := state
		z ^= z >> 30
		z *= 0xbf58476d1ce4e5b9
		z ^= z >> 27
		z *= 0x94d049bb133111eb
		z ^= z >> 31
		vec[i] = float32(int64(z)) / float32(math.MaxInt64)
	}
	return vec
}
