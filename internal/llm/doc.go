// Package llm provides language model clients for field extraction. It
// supports OpenAI, Anthropic, Gemini and Ollama behind one Client interface,
// and wraps them in an Extractor that adds rate limiting, response caching and
// failure absorption.
package llm
