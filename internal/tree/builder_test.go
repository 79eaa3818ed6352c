package tree

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor/internal/domain"
)

// stubStrategy wraps a clustering function and counts invocations.
type stubStrategy struct {
	calls int
	fn    func(nodes []*Node) ([][]*Node, error)
}

func (s *stubStrategy) Cluster(nodes []*Node) ([][]*Node, error) {
	s.calls++
	return s.fn(nodes)
}

func allInOne(nodes []*Node) ([][]*Node, error) {
	return [][]*Node{nodes}, nil
}

func allSingletons(nodes []*Node) ([][]*Node, error) {
	groups := make([][]*Node, len(nodes))
	for i, n := range nodes {
		groups[i] = []*Node{n}
	}
	return groups, nil
}

// stubChat returns a fixed summary and records the texts it was asked to
// summarize.
type stubChat struct {
	summary string
	err     error
	calls   []string
}

func (s *stubChat) Chat(messages []domain.ChatMessage) (domain.ChatMessage, error) {
	if len(messages) > 0 {
		s.calls = append(s.calls, messages[len(messages)-1].Content)
	}
	if s.err != nil {
		return domain.ChatMessage{}, s.err
	}
	return domain.ChatMessage{Role: "assistant", Content: s.summary}, nil
}

// stubEmbedder returns a fixed vector for any text.
type stubEmbedder struct {
	vector []float64
	err    error
}

func (s *stubEmbedder) Name() string                 { return "stub" }
func (s *stubEmbedder) Prepare(corpus []string) error { return nil }
func (s *stubEmbedder) Dimension() int               { return len(s.vector) }
func (s *stubEmbedder) Embed(text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

// seqIDs hands out deterministic ids for tests.
type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("summary-%d", s.n)
}

func leafCandidates(n int) []domain.Candidate {
	out := make([]domain.Candidate, n)
	for i := range out {
		out[i] = domain.Candidate{
			ID:        fmt.Sprintf("c%d", i),
			Content:   fmt.Sprintf("content %d", i),
			Embedding: []float64{float64(i), 1, 0},
		}
	}
	return out
}

func TestBuildEmpty(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	b := NewBuilder(strategy, &stubChat{summary: "s"}, &stubEmbedder{vector: []float64{1, 0, 0}}, &seqIDs{})

	forest, err := b.Build(nil)
	require.NoError(t, err)
	assert.Zero(t, forest.Len())
	assert.Empty(t, forest.Roots())
	assert.Zero(t, strategy.calls, "clustering must not run for an empty candidate set")
}

func TestBuildSingleCandidate(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	chat := &stubChat{summary: "s"}
	b := NewBuilder(strategy, chat, &stubEmbedder{vector: []float64{1, 0, 0}}, &seqIDs{})

	forest, err := b.Build(leafCandidates(1))
	require.NoError(t, err)
	require.Equal(t, 1, forest.Len())
	roots := forest.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "c0", roots[0].ID)
	assert.True(t, roots[0].IsLeaf())
	assert.Zero(t, strategy.calls, "clustering must not run for a single candidate")
	assert.Empty(t, chat.calls, "no summaries for a single candidate")
}

func TestBuildSinglePassTree(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	chat := &stubChat{summary: "  combined summary  "}
	b := NewBuilder(strategy, chat, &stubEmbedder{vector: []float64{0.5, 0.5, 0}}, &seqIDs{})

	forest, err := b.Build(leafCandidates(4))
	require.NoError(t, err)

	roots := forest.Roots()
	require.Len(t, roots, 1)
	root := roots[0]
	assert.Equal(t, "summary-1", root.ID)
	assert.Equal(t, 1, root.Level)
	assert.Equal(t, "combined summary", root.Content, "summary content is trimmed")
	assert.False(t, root.IsLeaf())
	require.Len(t, root.Children, 4)

	for _, childID := range root.Children {
		child := forest.Node(childID)
		require.NotNil(t, child)
		assert.Equal(t, root.ID, child.Parent)
		assert.Equal(t, 0, child.Level)
		assert.True(t, child.IsLeaf())
	}

	// 4 leaves + 1 summary node.
	assert.Equal(t, 5, forest.Len())
	assert.Len(t, forest.Flatten(), 5)

	// The summarized text joins the children's contents with blank lines.
	require.Len(t, chat.calls, 1)
	assert.Contains(t, chat.calls[0], "content 0\n\ncontent 1")
}

func TestBuildMultiLevel(t *testing.T) {
	// First pass: two pairs; second pass: one group of the two summaries.
	strategy := &stubStrategy{fn: func(nodes []*Node) ([][]*Node, error) {
		if len(nodes) == 4 {
			return [][]*Node{{nodes[0], nodes[1]}, {nodes[2], nodes[3]}}, nil
		}
		return allInOne(nodes)
	}}
	chat := &stubChat{summary: "s"}
	b := NewBuilder(strategy, chat, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	forest, err := b.Build(leafCandidates(4))
	require.NoError(t, err)

	roots := forest.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, 2, roots[0].Level)
	assert.Equal(t, 2, strategy.calls)
	assert.Len(t, chat.calls, 3, "two pair summaries plus one top summary")
	assert.Equal(t, 7, forest.Len())
}

func TestBuildPromotesSingletons(t *testing.T) {
	// One pair merges, one node promotes unchanged.
	strategy := &stubStrategy{fn: func(nodes []*Node) ([][]*Node, error) {
		if len(nodes) == 3 {
			return [][]*Node{{nodes[0], nodes[1]}, {nodes[2]}}, nil
		}
		return allInOne(nodes)
	}}
	b := NewBuilder(strategy, &stubChat{summary: "s"}, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	forest, err := b.Build(leafCandidates(3))
	require.NoError(t, err)

	roots := forest.Roots()
	require.Len(t, roots, 1)
	root := roots[0]
	assert.Equal(t, 2, root.Level)
	// The promoted leaf sits directly under the top summary alongside the
	// level-1 pair summary.
	require.Len(t, root.Children, 2)
	promoted := forest.Node(root.Children[1])
	require.NotNil(t, promoted)
	assert.Equal(t, "c2", promoted.ID)
	assert.True(t, promoted.IsLeaf())
}

func TestBuildStopsWhenOnlySingletons(t *testing.T) {
	strategy := &stubStrategy{fn: allSingletons}
	chat := &stubChat{summary: "s"}
	b := NewBuilder(strategy, chat, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	forest, err := b.Build(leafCandidates(4))
	require.NoError(t, err)
	assert.Equal(t, 1, strategy.calls, "a stalled pass ends the build")
	assert.Empty(t, chat.calls)
	// All four leaves become roots of the final forest.
	assert.Len(t, forest.Roots(), 4)
	assert.Equal(t, 4, forest.Len())
}

func TestBuildSummarizerFailureAborts(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	b := NewBuilder(strategy, &stubChat{err: errors.New("llm down")}, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	_, err := b.Build(leafCandidates(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm down")
}

func TestBuildEmbedderFailureAborts(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	b := NewBuilder(strategy, &stubChat{summary: "s"}, &stubEmbedder{err: errors.New("embed down")}, &seqIDs{})

	_, err := b.Build(leafCandidates(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed down")
}

func TestFlattenIsPreOrder(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	b := NewBuilder(strategy, &stubChat{summary: "s"}, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	forest, err := b.Build(leafCandidates(3))
	require.NoError(t, err)

	var order []string
	for _, n := range forest.Flatten() {
		order = append(order, n.ID)
	}
	assert.Equal(t, []string{"summary-1", "c0", "c1", "c2"}, order)
}

func TestFlattenDeepChain(t *testing.T) {
	// Pair off the first two nodes each pass so the tree grows one level
	// per pass; a recursive flatten would be fine here, but the iterative
	// one must cope with arbitrary depth.
	strategy := &stubStrategy{fn: func(nodes []*Node) ([][]*Node, error) {
		groups := [][]*Node{{nodes[0], nodes[1]}}
		for _, n := range nodes[2:] {
			groups = append(groups, []*Node{n})
		}
		return groups, nil
	}}
	b := NewBuilder(strategy, &stubChat{summary: "s"}, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	const leaves = 64
	forest, err := b.Build(leafCandidates(leaves))
	require.NoError(t, err)

	flat := forest.Flatten()
	assert.Len(t, flat, forest.Len())
	ids := map[string]bool{}
	for _, n := range flat {
		require.False(t, ids[n.ID], "duplicate node %s in flatten", n.ID)
		ids[n.ID] = true
	}
}

func TestSummaryInstructionPrecedesContent(t *testing.T) {
	strategy := &stubStrategy{fn: allInOne}
	chat := &stubChat{summary: "s"}
	b := NewBuilder(strategy, chat, &stubEmbedder{vector: []float64{1, 1, 1}}, &seqIDs{})

	_, err := b.Build(leafCandidates(2))
	require.NoError(t, err)
	require.Len(t, chat.calls, 1)
	assert.True(t, strings.HasPrefix(chat.calls[0], summaryInstruction))
}
