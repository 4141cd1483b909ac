package embedding

// ONNXOptions configures the local ONNX embedder.
type ONNXOptions struct {
	ModelPath string
	// VocabPath is the WordPiece vocab.txt; when empty a hash tokenizer is used.
	VocabPath string
	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string
	Dimensions  int
	MaxTokens   int
	CacheSize   int
}
