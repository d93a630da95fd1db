// Package driven holds the interfaces the core calls out through.
//
// Building a knowledge base uses SourceLoader and PageFetcher to read,
// NormaliserRegistry and Normaliser to extract text, Splitter to chunk,
// EmbeddingService to vectorise and VectorIndex to store. Answering adds
// LLMService and PromptStore, with Reranker as an optional second pass.
// Settings come through ConfigStore; ratings go to FeedbackStore.
//
// A nil Reranker means candidates are cut to the final count unchanged.
// A nil FeedbackStore means ratings are refused.
//
// This package imports domain and nothing else from internal/.
package driven
