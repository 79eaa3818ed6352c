package tree

import (
	"fmt"
	"log/slog"
	"strings"

	"raptor/internal/domain"
)

// ClusterStrategy partitions a set of same-level nodes into ordered,
// non-empty groups. Every input node appears in exactly one group.
type ClusterStrategy interface {
	Cluster(nodes []*Node) ([][]*Node, error)
}

const summaryInstruction = "Write a concise summary of the following text. " +
	"Capture the shared themes and the key details. Reply with the summary only."

// Builder constructs an abstraction tree over a flat candidate set by
// repeatedly clustering the current level and summarizing each multi-node
// cluster into a new parent node.
type Builder struct {
	strategy ClusterStrategy
	chat     domain.ChatModel
	embedder domain.Embedder
	ids      IDSource
}

// NewBuilder wires a builder from its collaborators. A nil id source falls
// back to random UUIDs.
func NewBuilder(strategy ClusterStrategy, chat domain.ChatModel, embedder domain.Embedder, ids IDSource) *Builder {
	if ids == nil {
		ids = UUIDSource{}
	}
	return &Builder{strategy: strategy, chat: chat, embedder: embedder, ids: ids}
}

// Build turns candidates into a forest. With zero or one candidate the
// clustering strategy is never invoked. Summarizer or embedder failures
// abort the build; there is no partial-tree fallback.
//
// If a clustering pass yields only singleton groups while more than one node
// remains, the pass cannot shrink the level; the build stops there and the
// current level becomes the forest.
func (b *Builder) Build(candidates []domain.Candidate) (*Forest, error) {
	forest := NewForest()
	current := make([]*Node, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		n := &Node{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: c.Embedding,
			Level:     0,
			Candidate: c,
		}
		forest.Add(n)
		current = append(current, n)
	}

	for len(current) > 1 {
		groups, err := b.strategy.Cluster(current)
		if err != nil {
			return nil, fmt.Errorf("cluster level %d: %w", current[0].Level, err)
		}
		next := make([]*Node, 0, len(groups))
		grew := false
		for _, group := range groups {
			if len(group) == 1 {
				next = append(next, group[0])
				continue
			}
			summary, err := b.synthesize(forest, group)
			if err != nil {
				return nil, err
			}
			next = append(next, summary)
			grew = true
		}
		if !grew {
			slog.Warn("tree: clustering produced only singletons, stopping build",
				"level", current[0].Level, "nodes", len(current))
			break
		}
		current = next
	}

	roots := make([]string, len(current))
	for i, n := range current {
		roots[i] = n.ID
	}
	forest.SetRoots(roots)
	return forest, nil
}

// synthesize creates a summary node over a cluster of two or more same-level
// nodes and rewires the children's parent references to it.
func (b *Builder) synthesize(forest *Forest, group []*Node) (*Node, error) {
	parts := make([]string, len(group))
	for i, n := range group {
		parts[i] = n.Content
	}
	joined := strings.TrimSpace(strings.Join(parts, "\n\n"))

	resp, err := b.chat.Chat([]domain.ChatMessage{
		{Role: "user", Content: summaryInstruction + "\n\n" + joined},
	})
	if err != nil {
		return nil, fmt.Errorf("summarize cluster of %d nodes: %w", len(group), err)
	}
	content := strings.TrimSpace(resp.Content)

	embedding, err := b.embedder.Embed(content)
	if err != nil {
		return nil, fmt.Errorf("embed cluster summary: %w", err)
	}

	node := &Node{
		ID:        b.ids.NewID(),
		Content:   content,
		Embedding: embedding,
		Level:     group[0].Level + 1,
		Children:  make([]string, len(group)),
	}
	for i, child := range group {
		node.Children[i] = child.ID
		child.Parent = node.ID
	}
	forest.Add(node)
	return node, nil
}
