// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - LLMService: Chat/completion backend (Groq, OpenAI, Anthropic, Ollama)
//   - EmbeddingService: Turns text into fixed-dimension vectors
//   - Chunker: Splits document text into bounded spans
//   - MemoryRepository: Durable storage for memory chunks (SQLite, in-memory)
//   - PromptStore: User-editable prompt templates
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Connectivity probes for configured providers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
