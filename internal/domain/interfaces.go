package domain

// Candidate is a pre-embedded content chunk returned by the candidate source.
type Candidate struct {
	ID        string
	Content   string
	Embedding []float64
	Metadata  map[string]string
}

// ResultRecord is a single ranked retrieval hit. A record either maps back to
// an original candidate or was synthesized from a cluster summary, in which
// case Synthesized is true and Level records its height in the tree.
type ResultRecord struct {
	ID          string
	Content     string
	Embedding   []float64
	Score       float64
	Level       int
	Synthesized bool
	Metadata    map[string]string
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// ChatMessage is a single role-tagged message exchanged with a chat model.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatModel generates text from a sequence of role-tagged messages.
// The tree builder uses it to produce abstractive cluster summaries.
type ChatModel interface {
	Chat(messages []ChatMessage) (ChatMessage, error)
}

// CandidateSource returns pre-ranked candidates for a query embedding.
type CandidateSource interface {
	SimilaritySearch(queryEmbedding []float64) ([]Candidate, error)
}

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief extractive summary of the provided text.
// Used for the post-ingest corpus summary, not for tree construction.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// RetrievalService defines the operations exposed by the application core.
type RetrievalService interface {
	IngestDocuments(paths []string) (summary string, err error)
	Retrieve(query string) ([]ResultRecord, error)
}
