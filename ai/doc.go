// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the text embedding service used by motif.
//
// Song titles and free-text queries are mapped into a shared vector space so
// that a query can be answered by nearest-neighbor lookup over title
// embeddings. The rest of the module depends only on the interfaces defined
// here.
//
//   - Embedder: generates vector embeddings from text
//   - AIProvider: owns an Embedder and its lifecycle
//
// # Implementations
//
// The openai subpackage talks to any OpenAI-compatible embeddings endpoint
// (OpenAI, Ollama, LocalAI, vLLM). The mock subpackage provides deterministic
// embeddings for tests.
//
// # Configuration
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("all-minilm"),
//	)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package ai
