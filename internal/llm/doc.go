// Package llm provides chat completion access for the engine.
//
// The client wraps langchaingo's OpenAI-compatible model client, so any
// endpoint speaking that protocol (OpenAI, OpenRouter, a local gateway)
// works unchanged. Two models are held: the primary tool-calling model used
// for answer generation, and a lightweight model used for the cheap
// auxiliary calls (intent classification, query rewriting, summarization,
// refusals).
package llm
